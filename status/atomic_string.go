package status

import (
	"sync/atomic"
)

// MaxStringLen is the maximum length for atomic strings
const MaxStringLen = 32

// AtomicString provides atomic string access with fixed max length
// Zero value is ready to use (represents empty string)
type AtomicString struct {
	ptr atomic.Pointer[string]
}

// Store sets the string value, truncating to MaxStringLen
func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		val = val[:MaxStringLen]
	}
	s.ptr.Store(&val)
}

// Load returns the current string value
func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}

// Swap stores val and returns the previous value
// Used to detect transitions without a separate read
func (s *AtomicString) Swap(val string) string {
	if len(val) > MaxStringLen {
		val = val[:MaxStringLen]
	}
	if p := s.ptr.Swap(&val); p != nil {
		return *p
	}
	return ""
}
