package reactor

import (
	"errors"
	"fmt"
)

var (
	ErrNilStream     = errors.New("nil stream")
	ErrNilAction     = errors.New("nil action")
	ErrStaleStream   = errors.New("stream was unregistered")
	ErrReentrantPlay = errors.New("reactor is already playing")
)

// AssertionError is returned by Play when a scripted check fails.
type AssertionError struct {
	// Position of the failing action within the Play pass, starting at 1.
	Seq      int
	StreamID uint32
	Err      error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed at action %d on stream %d: %v", e.Seq, e.StreamID, e.Err)
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// IsAssertion reports whether err carries a failed scripted check.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
