package frame

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRaw(t *testing.T) {
	require := require.New(t)
	buf := &bytes.Buffer{}
	expected := []byte("This is the expected content")

	require.Nil(WriteRaw(buf, expected))
	actual, err := ReadRaw(buf)
	require.Nil(err)
	require.Equal(expected, actual)
}

func TestDecode(t *testing.T) {
	body := []byte("This is the expected content")
	encoded, err := Encode(body)
	require.Nil(t, err)

	t.Run("complete with trailer", func(t *testing.T) {
		require := require.New(t)
		b := append(append([]byte{}, encoded...), 0x01, 0x02)
		actual, n, err := Decode(b)
		require.Nil(err)
		require.Equal(body, actual)
		require.Equal(len(encoded), n)
	})

	t.Run("every truncation is incomplete", func(t *testing.T) {
		require := require.New(t)
		for i := 0; i < len(encoded); i++ {
			_, _, err := Decode(encoded[:i])
			require.Equal(ErrIncomplete, err)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		require := require.New(t)
		b, err := Encode(nil)
		require.Nil(err)
		actual, n, err := Decode(b)
		require.Nil(err)
		require.Empty(actual)
		require.Equal(1, n)
	})
}
