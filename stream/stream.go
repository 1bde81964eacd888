package stream

import (
	"bytes"
	"errors"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var ErrReentrantFire = errors.New("read callback is already firing")

// ReadFunc is invoked with the stream's capability surface whenever inbound
// data is signalled.
type ReadFunc func(h Handle)

// Handle is the narrow view of a stream handed to its read callback.
type Handle interface {
	ID() uint32
	PushWrite(b []byte)
	PeekRead() []byte
	Consume(n int) []byte
	DrainRead() []byte
	ReadHandle(fn func(buf *bytes.Buffer))
	EOF() bool
}

type Stream struct {
	id     uint32
	sink   *Sink
	readFn ReadFunc
	firing bool
	eof    bool
}

var _ Handle = (*Stream)(nil)

var lastID uint32

func New(cfg Config) *Stream {
	cfg = sanitizeConfig(cfg)
	return &Stream{
		id:   atomic.AddUint32(&lastID, 1),
		sink: newSink(cfg.InitialBufferSize),
	}
}

func (s *Stream) ID() uint32 {
	return s.id
}

func (s *Stream) PushWrite(b []byte) {
	s.sink.AppendWrite(b)
}

// SetRead installs fn as the only read callback, replacing any previous one.
// A nil fn removes the callback.
func (s *Stream) SetRead(fn ReadFunc) {
	if s.readFn != nil && fn != nil {
		log.WithField("stream", s.id).Debug("Replacing read callback")
	}
	s.readFn = fn
}

func (s *Stream) HasCallback() bool {
	return s.readFn != nil
}

func (s *Stream) ReadHandle(fn func(buf *bytes.Buffer)) {
	s.sink.MutateRead(fn)
}

func (s *Stream) PeekRead() []byte {
	return s.sink.PeekRead()
}

// Consume removes up to n bytes from the front of the read buffer and
// returns them.
func (s *Stream) Consume(n int) []byte {
	var out []byte
	s.sink.MutateRead(func(buf *bytes.Buffer) {
		p := buf.Next(n)
		out = make([]byte, len(p))
		copy(out, p)
	})
	return out
}

func (s *Stream) DrainRead() []byte {
	return s.sink.DrainRead()
}

func (s *Stream) ReadLen() int {
	return s.sink.ReadLen()
}

func (s *Stream) Written() []byte {
	return s.sink.Written()
}

// CloseRead marks the end of inbound data. Writes are still accepted.
func (s *Stream) CloseRead() {
	s.eof = true
}

func (s *Stream) EOF() bool {
	return s.eof
}

// FireRead invokes the read callback, if any, and reports whether it ran.
func (s *Stream) FireRead() (bool, error) {
	if s.readFn == nil {
		return false, nil
	}
	if s.firing {
		return false, ErrReentrantFire
	}
	s.firing = true
	defer func() {
		s.firing = false
	}()
	log.WithFields(logrus.Fields{
		"stream":   s.id,
		"readable": s.sink.ReadLen(),
	}).Debug("Firing read callback")
	s.readFn(s)
	return true, nil
}
