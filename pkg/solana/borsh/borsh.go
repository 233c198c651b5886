// Package borsh reads and writes the borsh layouts used by on-chain program
// state: little-endian integers, 32 byte keys, u8 options and u32 length
// prefixed strings and vectors.
package borsh

import (
	"crypto/ed25519"
	"encoding/binary"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

var (
	ErrInvalidBool      = errors.New("invalid bool value")
	ErrInvalidOption    = errors.New("invalid option flag")
	ErrInvalidString    = errors.New("invalid utf-8 string")
	ErrLengthOutOfRange = errors.New("length exceeds remaining data")
	ErrTrailingData     = errors.New("unexpected trailing data")
)

func WriteKey(enc *bin.Encoder, key ed25519.PublicKey) error {
	padded := make([]byte, ed25519.PublicKeySize)
	copy(padded, key)
	return enc.WriteBytes(padded, false)
}

func ReadKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	raw, err := dec.ReadNBytes(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return append(ed25519.PublicKey{}, raw...), nil
}

// WriteOptionalKey writes a one byte presence flag followed by the key, if
// present. A nil key is written as None.
func WriteOptionalKey(enc *bin.Encoder, key ed25519.PublicKey) error {
	if len(key) == 0 {
		return enc.WriteUint8(0)
	}

	if err := enc.WriteUint8(1); err != nil {
		return err
	}
	return WriteKey(enc, key)
}

func ReadOptionalKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	flag, err := dec.ReadUint8()
	if err != nil {
		return nil, err
	}

	switch flag {
	case 0:
		return nil, nil
	case 1:
		return ReadKey(dec)
	default:
		return nil, ErrInvalidOption
	}
}

func WriteBool(enc *bin.Encoder, v bool) error {
	return enc.WriteBool(v)
}

func ReadBool(dec *bin.Decoder) (bool, error) {
	v, err := dec.ReadUint8()
	if err != nil {
		return false, err
	}

	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

func WriteLength(enc *bin.Encoder, n int) error {
	return enc.WriteUint32(uint32(n), binary.LittleEndian)
}

// ReadLength reads a u32 vector length and checks that n elements of
// elemSize bytes can still be read.
func ReadLength(dec *bin.Decoder, elemSize int) (int, error) {
	n, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(elemSize) > uint64(dec.Remaining()) {
		return 0, ErrLengthOutOfRange
	}
	return int(n), nil
}

func WriteString(enc *bin.Encoder, s string) error {
	return WriteBytes(enc, []byte(s))
}

func ReadString(dec *bin.Decoder) (string, error) {
	raw, err := ReadBytes(dec)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidString
	}
	return string(raw), nil
}

// WriteBytes writes a u32 length prefixed byte vector.
func WriteBytes(enc *bin.Encoder, b []byte) error {
	if err := WriteLength(enc, len(b)); err != nil {
		return err
	}
	return enc.WriteBytes(b, false)
}

func ReadBytes(dec *bin.Decoder) ([]byte, error) {
	n, err := ReadLength(dec, 1)
	if err != nil {
		return nil, err
	}

	raw, err := dec.ReadNBytes(n)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, raw...), nil
}

func WriteUint32Vec(enc *bin.Encoder, values []uint32) error {
	if err := WriteLength(enc, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := enc.WriteUint32(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	return nil
}

func ReadUint32Vec(dec *bin.Decoder) ([]uint32, error) {
	n, err := ReadLength(dec, 4)
	if err != nil {
		return nil, err
	}

	values := make([]uint32, n)
	for i := range values {
		if values[i], err = dec.ReadUint32(binary.LittleEndian); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func WriteInt64Vec(enc *bin.Encoder, values []int64) error {
	if err := WriteLength(enc, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := enc.WriteUint64(uint64(v), binary.LittleEndian); err != nil {
			return err
		}
	}
	return nil
}

func ReadInt64Vec(dec *bin.Decoder) ([]int64, error) {
	n, err := ReadLength(dec, 8)
	if err != nil {
		return nil, err
	}

	values := make([]int64, n)
	for i := range values {
		v, err := dec.ReadUint64(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		values[i] = int64(v)
	}
	return values, nil
}

// ExpectEOF fails if the decoder has unread data.
func ExpectEOF(dec *bin.Decoder) error {
	if dec.Remaining() > 0 {
		return ErrTrailingData
	}
	return nil
}
