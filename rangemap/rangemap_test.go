package rangemap

import "testing"

type span struct {
	base, end uint64
	tag       string
}

func (s span) Bounds() (uint64, uint64) { return s.base, s.end }

func newFixture() *RangeMap[span] {
	r := New[span]()
	r.Append(span{0x1000, 0x2000, "a"})
	r.Append(span{0x4000, 0x5000, "b"})
	return r
}

func TestFindContains(t *testing.T) {
	r := newFixture()
	if v, ok := r.FindContains(0x1800); !ok || v.tag != "a" {
		t.Fatalf("expected a, got %v ok=%v", v, ok)
	}
	if v, ok := r.FindContains(0x1fff); !ok || v.tag != "a" {
		t.Fatalf("expected a at end-1, got %v ok=%v", v, ok)
	}
	if _, ok := r.FindContains(0x2000); ok {
		t.Fatalf("0x2000 is exclusive end, should not be contained")
	}
	if _, ok := r.FindContains(0x3000); ok {
		t.Fatalf("0x3000 lies in the gap, should not be contained")
	}
	if _, ok := r.FindContains(0x6000); ok {
		t.Fatalf("0x6000 lies past the last entry, should not be contained")
	}
}

func TestFindContainsOrFollows(t *testing.T) {
	r := newFixture()
	if v, ok := r.FindContainsOrFollows(0x1800); !ok || v.tag != "a" {
		t.Fatalf("expected a, got %v ok=%v", v, ok)
	}
	if v, ok := r.FindContainsOrFollows(0x3000); !ok || v.tag != "b" {
		t.Fatalf("expected following entry b, got %v ok=%v", v, ok)
	}
	if _, ok := r.FindContainsOrFollows(0x6000); ok {
		t.Fatalf("past the last entry, should have no follower")
	}
}

func TestSortAndBack(t *testing.T) {
	r := New[span]()
	r.Append(span{0x4000, 0x5000, "b"})
	r.Append(span{0x1000, 0x2000, "a"})
	r.Sort()
	if r.At(0).tag != "a" || r.At(1).tag != "b" {
		t.Fatalf("expected sorted order a,b; got %v,%v", r.At(0).tag, r.At(1).tag)
	}
	back, ok := r.Back()
	if !ok || back.tag != "b" {
		t.Fatalf("expected back to be b after sort, got %v ok=%v", back, ok)
	}
	r.SetBack(span{0x4000, 0x6000, "b-extended"})
	back, _ = r.Back()
	if back.end != 0x6000 {
		t.Fatalf("SetBack did not take effect: %v", back)
	}
}

func TestEmpty(t *testing.T) {
	r := New[span]()
	if _, ok := r.Back(); ok {
		t.Fatalf("empty RangeMap should have no Back()")
	}
	if _, ok := r.FindContains(0); ok {
		t.Fatalf("empty RangeMap should contain nothing")
	}
	if _, ok := r.FindContainsOrFollows(0); ok {
		t.Fatalf("empty RangeMap should follow nothing")
	}
}
