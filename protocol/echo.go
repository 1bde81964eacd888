package protocol

import (
	"fmt"
	"io"

	"eventstream-toolkit/frame"
	"eventstream-toolkit/stream"

	"github.com/sirupsen/logrus"
)

const (
	defaultMaxFrameSize = 65535
	minMaxFrameSize     = 1
)

type EchoConfig struct {
	// Frames announcing a larger body are rejected.
	MaxFrameSize int
}

func DefaultEchoConfig() EchoConfig {
	return EchoConfig{
		MaxFrameSize: defaultMaxFrameSize,
	}
}

// Echo sends back every length-prefixed frame it receives.
type Echo struct {
	maxFrameSize uint
	frames       int
	err          error
}

func NewEcho(s *stream.Stream, cfg EchoConfig) *Echo {
	if cfg.MaxFrameSize < minMaxFrameSize {
		cfg.MaxFrameSize = minMaxFrameSize
	}
	e := &Echo{maxFrameSize: uint(cfg.MaxFrameSize)}
	s.SetRead(e.onRead)
	return e
}

func (e *Echo) Frames() int {
	return e.frames
}

func (e *Echo) Err() error {
	return e.err
}

func (e *Echo) onRead(h stream.Handle) {
	buf := h.PeekRead()
	consumed := 0
	for consumed < len(buf) {
		rest := buf[consumed:]
		length, _, err := frame.ParseVarInt(rest)
		if err == frame.ErrIncomplete {
			break
		}
		if length > e.maxFrameSize {
			e.fail(h, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length))
			consumed = len(buf)
			break
		}
		body, n, err := frame.Decode(rest)
		if err == frame.ErrIncomplete {
			break
		}
		out, err := frame.Encode(body)
		if err != nil {
			e.fail(h, err)
			consumed = len(buf)
			break
		}
		h.PushWrite(out)
		consumed += n
		e.frames++
	}
	h.Consume(consumed)
	if h.EOF() && consumed < len(buf) {
		e.fail(h, fmt.Errorf("partial frame: %w", io.ErrUnexpectedEOF))
		h.DrainRead()
	}
}

func (e *Echo) fail(h stream.Handle, err error) {
	log.WithFields(logrus.Fields{
		"stream":   h.ID(),
		"protocol": "echo",
	}).Warn(err)
	e.err = err
}
