package frame

import (
	"errors"
	"io"
)

// ErrIncomplete means more bytes are needed before a value can be decoded.
var ErrIncomplete = errors.New("incomplete frame")

// Encode prefixes body with its varint length.
func Encode(body []byte) ([]byte, error) {
	buf, err := AppendVarInt(make([]byte, 0, len(body)+8), uint(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}

// Decode reads one frame from the front of b and returns its body along with
// the number of bytes the whole frame occupies in b.
// The body aliases b.
func Decode(b []byte) ([]byte, int, error) {
	length, n, err := ParseVarInt(b)
	if err != nil {
		return nil, 0, err
	}
	if uint(len(b)-n) < length {
		return nil, 0, ErrIncomplete
	}
	end := n + int(length)
	return b[n:end], end, nil
}

func ReadRaw(r io.Reader) ([]byte, error) {
	length, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func WriteRaw(w io.Writer, buf []byte) error {
	b, err := Encode(buf)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
