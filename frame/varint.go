package frame

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const (
	flagUint6 uint8 = iota
	flagUint14
	flagUint30
	flagUint62
)

const (
	maxUint6  = math.MaxUint8 / 4
	maxUint14 = math.MaxUint16 / 4
	maxUint30 = math.MaxUint32 / 4
	maxUint62 = math.MaxUint64 / 4
)

var ErrVarIntTooLarge = errors.New("value too large to encode into varint")

// AppendVarInt appends the varint encoding of v to dst.
// The two high bits of the first byte carry the encoded length.
func AppendVarInt(dst []byte, v uint) ([]byte, error) {
	buf := make([]byte, 8)
	var flag uint8
	switch {
	case v > maxUint62:
		return dst, ErrVarIntTooLarge
	case v > maxUint30:
		binary.BigEndian.PutUint64(buf, uint64(v))
		flag = flagUint62
	case v > maxUint14:
		binary.BigEndian.PutUint32(buf, uint32(v))
		buf = buf[:4]
		flag = flagUint30
	case v > maxUint6:
		binary.BigEndian.PutUint16(buf, uint16(v))
		buf = buf[:2]
		flag = flagUint14
	default:
		buf[0] = byte(v)
		buf = buf[:1]
		flag = flagUint6
	}
	buf[0] = ((flag & 0x03) << 6) | (buf[0] & 0x3F)
	return append(dst, buf...), nil
}

// VarIntLen returns the encoded length announced by the first byte.
func VarIntLen(first byte) int {
	return 1 << ((first >> 6) & 0x03)
}

// ParseVarInt decodes a varint from the front of b.
// It returns ErrIncomplete when b is shorter than the announced length.
func ParseVarInt(b []byte) (uint, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrIncomplete
	}
	n := VarIntLen(b[0])
	if len(b) < n {
		return 0, 0, ErrIncomplete
	}
	buf := make([]byte, n)
	copy(buf, b[:n])
	buf[0] &= 0x3F
	switch n {
	case 8:
		return uint(binary.BigEndian.Uint64(buf)), n, nil
	case 4:
		return uint(binary.BigEndian.Uint32(buf)), n, nil
	case 2:
		return uint(binary.BigEndian.Uint16(buf)), n, nil
	default:
		return uint(buf[0]), n, nil
	}
}

func WriteVarInt(w io.Writer, v uint) error {
	buf, err := AppendVarInt(nil, v)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func ReadVarInt(r io.Reader) (uint, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf[:1]); err != nil {
		return 0, err
	}
	n := VarIntLen(buf[0])
	if _, err := io.ReadFull(r, buf[1:n]); err != nil {
		return 0, err
	}
	v, _, err := ParseVarInt(buf[:n])
	return v, err
}
