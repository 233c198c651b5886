package borsh

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalKey(t *testing.T) {
	key, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	require.NoError(t, WriteOptionalKey(enc, key))
	require.NoError(t, WriteOptionalKey(enc, nil))
	require.Len(t, buf.Bytes(), 1+32+1)

	dec := bin.NewBinDecoder(buf.Bytes())
	actual, err := ReadOptionalKey(dec)
	require.NoError(t, err)
	assert.EqualValues(t, key, actual)

	actual, err = ReadOptionalKey(dec)
	require.NoError(t, err)
	assert.Nil(t, actual)
	assert.NoError(t, ExpectEOF(dec))

	_, err = ReadOptionalKey(bin.NewBinDecoder([]byte{2}))
	assert.Equal(t, ErrInvalidOption, err)
}

func TestBool(t *testing.T) {
	v, err := ReadBool(bin.NewBinDecoder([]byte{1}))
	require.NoError(t, err)
	assert.True(t, v)

	_, err = ReadBool(bin.NewBinDecoder([]byte{2}))
	assert.Equal(t, ErrInvalidBool, err)

	_, err = ReadBool(bin.NewBinDecoder(nil))
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteString(bin.NewBinEncoder(&buf), "Test fund"))
	assert.Equal(t, append([]byte{9, 0, 0, 0}, []byte("Test fund")...), buf.Bytes())

	actual, err := ReadString(bin.NewBinDecoder(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "Test fund", actual)

	_, err = ReadString(bin.NewBinDecoder([]byte{2, 0, 0, 0, 0xff, 0xfe}))
	assert.Equal(t, ErrInvalidString, err)
}

func TestReadLength_OutOfRange(t *testing.T) {
	_, err := ReadUint32Vec(bin.NewBinDecoder([]byte{0xff, 0xff, 0xff, 0xff, 1, 0, 0, 0}))
	assert.Equal(t, ErrLengthOutOfRange, err)

	_, err = ReadBytes(bin.NewBinDecoder([]byte{5, 0, 0, 0, 1}))
	assert.Equal(t, ErrLengthOutOfRange, err)
}

func TestVectors(t *testing.T) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)
	require.NoError(t, WriteUint32Vec(enc, []uint32{7, 3}))
	require.NoError(t, WriteInt64Vec(enc, []int64{-1, 42}))

	dec := bin.NewBinDecoder(buf.Bytes())
	weights, err := ReadUint32Vec(dec)
	require.NoError(t, err)
	assert.Equal(t, []uint32{7, 3}, weights)

	quantities, err := ReadInt64Vec(dec)
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 42}, quantities)

	assert.NoError(t, ExpectEOF(dec))
	assert.Equal(t, ErrTrailingData, ExpectEOF(bin.NewBinDecoder([]byte{0})))
}
