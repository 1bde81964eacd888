package stream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSink(t *testing.T) {
	t.Run("append write", func(t *testing.T) {
		require := require.New(t)
		s := newSink(minBufferSize)
		s.AppendWrite([]byte("pong!"))
		s.AppendWrite([]byte("pong!"))
		require.Equal([]byte("pong!pong!"), s.Written())
		require.Equal(0, s.ReadLen())
	})

	t.Run("drain is idempotent", func(t *testing.T) {
		require := require.New(t)
		s := newSink(minBufferSize)
		s.MutateRead(func(buf *bytes.Buffer) {
			buf.WriteString("ping?")
		})
		require.Equal([]byte("ping?"), s.PeekRead())
		require.Equal([]byte("ping?"), s.DrainRead())
		require.Empty(s.DrainRead())
	})

	t.Run("buffers are independent", func(t *testing.T) {
		require := require.New(t)
		s := newSink(minBufferSize)
		s.AppendWrite([]byte("out"))
		s.MutateRead(func(buf *bytes.Buffer) {
			buf.WriteString("in")
		})
		written := s.Written()
		written[0] = 'X'
		require.Equal([]byte("out"), s.Written())
		require.Equal([]byte("in"), s.DrainRead())
		require.Equal([]byte("out"), s.Written())
	})

	t.Run("overlapping borrow panics", func(t *testing.T) {
		require := require.New(t)
		s := newSink(minBufferSize)
		require.PanicsWithValue(ErrReadBorrowed, func() {
			s.MutateRead(func(buf *bytes.Buffer) {
				s.DrainRead()
			})
		})
		// The guard is released even after a panic.
		require.NotPanics(func() {
			s.MutateRead(func(buf *bytes.Buffer) {})
		})
	})
}
