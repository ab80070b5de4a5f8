package corefile

import "sync"

var initOnce sync.Once

// registered records whether Initialize has run; exposed for tests only.
var registered bool

// Initialize is the plugin-registration hook a host debugger's plugin
// manager calls once per process lifetime. The "register once" guarantee
// here is an explicit sync.Once, not a static-constructor side effect.
// Calling it more than once has no additional effect.
func Initialize() {
	initOnce.Do(func() {
		registered = true
	})
}

// IsInitialized reports whether Initialize has run. It exists for tests
// that need to observe the one-shot guard; production code has no reason to
// call it.
func IsInitialized() bool {
	return registered
}
