package protocol

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"eventstream-toolkit/stream"

	"github.com/sirupsen/logrus"
)

var (
	pingRequest  = []byte("ping?")
	pingResponse = []byte("pong!")
)

// Ping answers every "ping?" on a stream with "pong!".
// A request split across several arrivals is answered once it is complete.
// Anything else is dropped and recorded as an error.
type Ping struct {
	requests int
	err      error
}

func NewPing(s *stream.Stream) *Ping {
	p := &Ping{}
	s.SetRead(p.onRead)
	return p
}

// Requests returns how many requests were answered.
func (p *Ping) Requests() int {
	return p.requests
}

// Err returns the last protocol error, if any.
func (p *Ping) Err() error {
	return p.err
}

func (p *Ping) onRead(h stream.Handle) {
	buf := h.PeekRead()
	consumed := 0
	for consumed < len(buf) {
		rest := buf[consumed:]
		if bytes.HasPrefix(rest, pingRequest) {
			h.PushWrite(pingResponse)
			consumed += len(pingRequest)
			p.requests++
			continue
		}
		if bytes.HasPrefix(pingRequest, rest) {
			break
		}
		err := ErrUnexpectedRequest
		if !utf8.Valid(rest) {
			err = ErrInvalidText
		}
		p.fail(h, fmt.Errorf("%w: %d bytes", err, len(rest)))
		consumed = len(buf)
	}
	h.Consume(consumed)
	if h.EOF() && consumed < len(buf) {
		p.fail(h, fmt.Errorf("partial request: %w", io.ErrUnexpectedEOF))
		h.DrainRead()
	}
}

func (p *Ping) fail(h stream.Handle, err error) {
	log.WithFields(logrus.Fields{
		"stream":   h.ID(),
		"protocol": "ping",
	}).Warn(err)
	p.err = err
}
