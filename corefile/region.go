package corefile

// RegionInfo describes one answer to a region-info query: either a real
// permission record, or a synthetic unmapped gap.
type RegionInfo struct {
	Base, End                      uint64
	Readable, Writable, Executable bool
}

// GetRegionInfo answers a region-info query against the permission index.
// When addr falls inside a recorded permission entry, that entry's flags
// are returned as-is. When addr falls in a gap before the next entry, a
// synthetic no-access region is returned spanning [addr, nextEntry.base) —
// this lets a caller iterate memory regions by repeatedly querying the End
// of the previously returned region. Past the last entry, ErrInvalidRegionAddress.
func (s *Session) GetRegionInfo(addr uint64) (RegionInfo, error) {
	entry, ok := s.permissions.FindContainsOrFollows(addr)
	if !ok {
		return RegionInfo{}, ErrInvalidRegionAddress
	}
	if entry.VM.Base <= addr && addr < entry.VM.end() {
		return RegionInfo{
			Base:       entry.VM.Base,
			End:        entry.VM.end(),
			Readable:   entry.Perm.Readable,
			Writable:   entry.Perm.Writable,
			Executable: entry.Perm.Executable,
		}, nil
	}
	return RegionInfo{Base: addr, End: entry.VM.Base}, nil
}
