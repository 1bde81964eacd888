package stream

import (
	"bytes"
	"errors"
)

// ErrReadBorrowed is the panic value raised when the read buffer is accessed
// while another borrow of it is still in progress.
var ErrReadBorrowed = errors.New("read buffer already borrowed")

// Sink holds the two independent byte buffers of a stream.
// The write buffer is append-only. The read buffer is only reachable through
// scoped borrows, one at a time.
type Sink struct {
	write    bytes.Buffer
	read     bytes.Buffer
	borrowed bool
}

func newSink(size int) *Sink {
	s := &Sink{}
	s.write.Grow(size)
	s.read.Grow(size)
	return s
}

func (s *Sink) AppendWrite(b []byte) {
	s.write.Write(b)
}

// MutateRead lends the read buffer to fn for the duration of the call.
// fn must not keep the buffer after it returns.
func (s *Sink) MutateRead(fn func(buf *bytes.Buffer)) {
	s.borrow()
	defer s.release()
	fn(&s.read)
}

func (s *Sink) DrainRead() []byte {
	var out []byte
	s.MutateRead(func(buf *bytes.Buffer) {
		out = make([]byte, buf.Len())
		copy(out, buf.Bytes())
		buf.Reset()
	})
	return out
}

func (s *Sink) PeekRead() []byte {
	var out []byte
	s.MutateRead(func(buf *bytes.Buffer) {
		out = make([]byte, buf.Len())
		copy(out, buf.Bytes())
	})
	return out
}

func (s *Sink) ReadLen() int {
	if s.borrowed {
		panic(ErrReadBorrowed)
	}
	return s.read.Len()
}

// Written returns a copy of everything appended to the write buffer.
func (s *Sink) Written() []byte {
	out := make([]byte, s.write.Len())
	copy(out, s.write.Bytes())
	return out
}

func (s *Sink) borrow() {
	if s.borrowed {
		panic(ErrReadBorrowed)
	}
	s.borrowed = true
}

func (s *Sink) release() {
	s.borrowed = false
}
