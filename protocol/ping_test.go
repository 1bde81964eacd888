package protocol

import (
	"errors"
	"io"
	"testing"

	"eventstream-toolkit/reactor"
	"eventstream-toolkit/stream"

	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	setup := func() (*reactor.Reactor, *stream.Stream, *Ping) {
		s := stream.New(stream.DefaultConfig())
		return reactor.New(), s, NewPing(s)
	}

	t.Run("one pong per ping", func(t *testing.T) {
		require := require.New(t)
		r, s, p := setup()
		require.Nil(r.Schedule(s, reactor.Arrive([]byte("ping?"))))
		require.Nil(r.Schedule(s, reactor.Arrive([]byte("ping?"))))
		require.Nil(r.Play())
		require.Equal([]byte("pong!pong!"), s.Written())
		require.Equal(2, p.Requests())
		require.Nil(p.Err())
	})

	t.Run("split and batched requests", func(t *testing.T) {
		require := require.New(t)
		r, s, p := setup()
		require.Nil(r.Schedule(s, reactor.Arrive([]byte("pi"))))
		require.Nil(r.Schedule(s, reactor.ExpectWritten(nil)))
		require.Nil(r.Schedule(s, reactor.Arrive([]byte("ng?ping?p"))))
		require.Nil(r.Play())
		require.Equal([]byte("pong!pong!"), s.Written())
		require.Equal([]byte("p"), s.PeekRead())
		require.Nil(p.Err())
	})

	t.Run("invalid text", func(t *testing.T) {
		require := require.New(t)
		r, s, p := setup()
		require.Nil(r.Schedule(s, reactor.Arrive([]byte{0xff, 0xfe, 0xfd})))
		require.Nil(r.Play())
		require.Empty(s.Written())
		require.True(errors.Is(p.Err(), ErrInvalidText))
		require.Equal(0, s.ReadLen())
	})

	t.Run("unexpected request", func(t *testing.T) {
		require := require.New(t)
		r, s, p := setup()
		require.Nil(r.Schedule(s, reactor.Arrive([]byte("ping?hello"))))
		require.Nil(r.Play())
		require.Equal([]byte("pong!"), s.Written())
		require.True(errors.Is(p.Err(), ErrUnexpectedRequest))
		require.Equal(0, s.ReadLen())
	})

	t.Run("partial request at end of input", func(t *testing.T) {
		require := require.New(t)
		r, s, p := setup()
		require.Nil(r.Schedule(s, reactor.Arrive([]byte("ping"))))
		require.Nil(r.Schedule(s, reactor.EndOfInput()))
		require.Nil(r.Play())
		require.Empty(s.Written())
		require.True(errors.Is(p.Err(), io.ErrUnexpectedEOF))
		require.Equal(0, s.ReadLen())
	})
}
