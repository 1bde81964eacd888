package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"eventstream-toolkit/frame"
	"eventstream-toolkit/reactor"
	"eventstream-toolkit/stream"

	"github.com/stretchr/testify/require"
)

func TestEcho(t *testing.T) {
	encode := func(t *testing.T, body string) []byte {
		b, err := frame.Encode([]byte(body))
		require.Nil(t, err)
		return b
	}

	t.Run("frames across arrivals", func(t *testing.T) {
		require := require.New(t)
		s := stream.New(stream.DefaultConfig())
		e := NewEcho(s, DefaultEchoConfig())
		r := reactor.New()

		first := encode(t, "hello")
		second := encode(t, "world")
		wire := append(append([]byte{}, first...), second...)
		require.Nil(r.Schedule(s, reactor.Arrive(wire[:3])))
		require.Nil(r.Schedule(s, reactor.ExpectWritten(nil)))
		require.Nil(r.Schedule(s, reactor.Arrive(wire[3:len(first)+2])))
		require.Nil(r.Schedule(s, reactor.ExpectWritten(first)))
		require.Nil(r.Schedule(s, reactor.Arrive(wire[len(first)+2:])))
		require.Nil(r.Play())

		require.Equal(wire, s.Written())
		require.Equal(2, e.Frames())
		require.Nil(e.Err())
		require.Equal(0, s.ReadLen())
	})

	t.Run("frame too large", func(t *testing.T) {
		require := require.New(t)
		s := stream.New(stream.DefaultConfig())
		e := NewEcho(s, EchoConfig{MaxFrameSize: 4})
		r := reactor.New()
		require.Nil(r.Schedule(s, reactor.Arrive(encode(t, "hi"))))
		require.Nil(r.Schedule(s, reactor.Arrive(encode(t, "too long"))))
		require.Nil(r.Play())
		require.Equal(encode(t, "hi"), s.Written())
		require.True(errors.Is(e.Err(), ErrFrameTooLarge))
		require.Equal(0, s.ReadLen())
	})

	t.Run("partial frame at end of input", func(t *testing.T) {
		require := require.New(t)
		s := stream.New(stream.DefaultConfig())
		e := NewEcho(s, DefaultEchoConfig())
		r := reactor.New()
		require.Nil(r.Schedule(s, reactor.Arrive(encode(t, "hello")[:4])))
		require.Nil(r.Schedule(s, reactor.EndOfInput()))
		require.Nil(r.Play())
		require.Empty(s.Written())
		require.True(errors.Is(e.Err(), io.ErrUnexpectedEOF))
	})

	t.Run("binary payload", func(t *testing.T) {
		require := require.New(t)
		s := stream.New(stream.DefaultConfig())
		NewEcho(s, DefaultEchoConfig())
		r := reactor.New()
		body := bytes.Repeat([]byte{0x00, 0xff}, 200)
		wire, err := frame.Encode(body)
		require.Nil(err)
		require.Nil(r.Schedule(s, reactor.Arrive(wire)))
		require.Nil(r.Play())
		actual, err := frame.ReadRaw(bytes.NewReader(s.Written()))
		require.Nil(err)
		require.Equal(body, actual)
	})
}
