package fund

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/index-fund/pkg/solana"
)

func TestInstruction_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		instruction Instruction
		size        int
	}{
		{Instruction{Type: InstructionTypePause}, 9},
		{Instruction{Type: InstructionTypeUnpause}, 9},
		{Instruction{Type: InstructionTypeRebalance}, 9},
		{Instruction{Type: InstructionTypeApproveDelegate, Amount: 1 << 40}, 17},
		{Instruction{Type: InstructionTypeUpdateFee, FeeRate: 2500}, 13},
		{Instruction{Type: InstructionTypeUpdateAdmin}, 9},
	} {
		encoded := tc.instruction.Marshal()
		require.Len(t, encoded, tc.size)
		assert.Equal(t, RequestTag, binary.LittleEndian.Uint64(encoded))
		assert.EqualValues(t, tc.instruction.Type, encoded[8])

		actual, err := DecodeInstruction(encoded)
		require.NoError(t, err)
		assert.Equal(t, tc.instruction, *actual)

		for i := 0; i < len(encoded); i++ {
			_, err := DecodeInstruction(encoded[:i])
			assert.Equal(t, solana.ErrInvalidInstructionData, err)
		}

		_, err = DecodeInstruction(append(encoded, 0))
		assert.Equal(t, solana.ErrInvalidInstructionData, err)
	}
}

func TestDecodeInstruction_Invalid(t *testing.T) {
	_, err := DecodeInstruction(nil)
	assert.Equal(t, solana.ErrInvalidInstructionData, err)

	encoded := (&Instruction{Type: InstructionTypePause}).Marshal()
	encoded[0] ^= 0xff
	_, err = DecodeInstruction(encoded)
	assert.Equal(t, solana.ErrInvalidInstructionData, err)

	for _, variant := range []byte{6, 7, 255} {
		encoded = (&Instruction{Type: InstructionTypePause}).Marshal()
		encoded[8] = variant
		_, err = DecodeInstruction(encoded)
		assert.Equal(t, solana.ErrInvalidInstructionData, err)
	}

	assert.Equal(t, []byte{0x67, 0x67, 0xf0, 0x52, 0x14, 0xa4, 0x2e, 0x11, 4, 0x96, 0, 0, 0}, (&Instruction{Type: InstructionTypeUpdateFee, FeeRate: 150}).Marshal())
}

func TestInitializeFundData_RoundTrip(t *testing.T) {
	expected := &InitializeFundData{
		SlippageDivider:        100,
		AssetWeights:           []uint32{7, 3},
		FundTokenInitialSupply: 1_000,
	}

	encoded := expected.Marshal()
	assert.Len(t, encoded, 8+4+8+8)

	var actual InitializeFundData
	require.NoError(t, actual.Unmarshal(encoded))
	assert.Equal(t, expected, &actual)

	assert.Error(t, actual.Unmarshal(encoded[:len(encoded)-1]))
	assert.Error(t, actual.Unmarshal(append(encoded, 1)))
}
