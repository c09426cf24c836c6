package idl

import "fmt"

// AssertionError signals a broken internal invariant: the parser produced a
// shape the model cannot hold. It is raised with panic, never returned, and
// is not meant to be recovered by callers.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	return "internal assertion failed: " + e.Message
}

func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(&AssertionError{Message: fmt.Sprintf(format, args...)})
	}
}
