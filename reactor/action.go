package reactor

import (
	"bytes"
	"fmt"

	"eventstream-toolkit/stream"
)

// Control tells the reactor whether to keep going after an action.
type Control int

const (
	Continue Control = iota
	// Stop ends the Play pass once the target callback has fired.
	Stop
)

func (c Control) String() string {
	switch c {
	case Continue:
		return "continue"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("Control(%d)", int(c))
	}
}

// Action is one scripted step applied to a stream before its read callback
// fires. A non-nil error is treated as a failed assertion.
type Action interface {
	Apply(s *stream.Stream) (Control, error)
}

type ActionFunc func(s *stream.Stream) (Control, error)

func (f ActionFunc) Apply(s *stream.Stream) (Control, error) {
	return f(s)
}

// Arrive appends b to the stream's read buffer.
func Arrive(b []byte) Action {
	data := make([]byte, len(b))
	copy(data, b)
	return ActionFunc(func(s *stream.Stream) (Control, error) {
		s.ReadHandle(func(buf *bytes.Buffer) {
			buf.Write(data)
		})
		return Continue, nil
	})
}

// EndOfInput signals that no more inbound data will arrive.
func EndOfInput() Action {
	return ActionFunc(func(s *stream.Stream) (Control, error) {
		s.CloseRead()
		return Continue, nil
	})
}

// Check runs fn against the stream without mutating it.
func Check(fn func(s *stream.Stream) error) Action {
	return ActionFunc(func(s *stream.Stream) (Control, error) {
		return Continue, fn(s)
	})
}

// ExpectWritten checks that the stream has written exactly want so far.
func ExpectWritten(want []byte) Action {
	return Check(func(s *stream.Stream) error {
		if got := s.Written(); !bytes.Equal(got, want) {
			return fmt.Errorf("written %q, expected %q", got, want)
		}
		return nil
	})
}

// Halt wraps a so that the Play pass stops after it.
func Halt(a Action) Action {
	return ActionFunc(func(s *stream.Stream) (Control, error) {
		if _, err := a.Apply(s); err != nil {
			return Stop, err
		}
		return Stop, nil
	})
}
