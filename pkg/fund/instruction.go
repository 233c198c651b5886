package fund

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/borsh"
)

const RequestTag uint64 = 0x112ea41452f06767

type InstructionType uint8

const (
	InstructionTypePause InstructionType = iota
	InstructionTypeUnpause
	InstructionTypeRebalance
	InstructionTypeApproveDelegate
	InstructionTypeUpdateFee
	InstructionTypeUpdateAdmin
)

func (t InstructionType) String() string {
	switch t {
	case InstructionTypePause:
		return "pause"
	case InstructionTypeUnpause:
		return "unpause"
	case InstructionTypeRebalance:
		return "rebalance"
	case InstructionTypeApproveDelegate:
		return "approve_delegate"
	case InstructionTypeUpdateFee:
		return "update_fee"
	case InstructionTypeUpdateAdmin:
		return "update_admin"
	}
	return "unknown"
}

// Instruction is a decoded admin instruction. Amount is only meaningful for
// ApproveDelegate and FeeRate only for UpdateFee.
type Instruction struct {
	Type    InstructionType
	Amount  uint64
	FeeRate uint32
}

// DecodeInstruction decodes admin instruction data. Any malformed input,
// including trailing bytes, fails with solana.ErrInvalidInstructionData.
func DecodeInstruction(data []byte) (*Instruction, error) {
	dec := bin.NewBinDecoder(data)

	tag, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil || tag != RequestTag {
		return nil, solana.ErrInvalidInstructionData
	}

	index, err := dec.ReadUint8()
	if err != nil {
		return nil, solana.ErrInvalidInstructionData
	}

	instruction := &Instruction{Type: InstructionType(index)}
	switch instruction.Type {
	case InstructionTypePause, InstructionTypeUnpause, InstructionTypeRebalance, InstructionTypeUpdateAdmin:
	case InstructionTypeApproveDelegate:
		if instruction.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return nil, solana.ErrInvalidInstructionData
		}
	case InstructionTypeUpdateFee:
		if instruction.FeeRate, err = dec.ReadUint32(binary.LittleEndian); err != nil {
			return nil, solana.ErrInvalidInstructionData
		}
	default:
		return nil, solana.ErrInvalidInstructionData
	}

	if err := borsh.ExpectEOF(dec); err != nil {
		return nil, solana.ErrInvalidInstructionData
	}
	return instruction, nil
}

func (i *Instruction) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = enc.WriteUint64(RequestTag, binary.LittleEndian)
	_ = enc.WriteUint8(uint8(i.Type))

	switch i.Type {
	case InstructionTypeApproveDelegate:
		_ = enc.WriteUint64(i.Amount, binary.LittleEndian)
	case InstructionTypeUpdateFee:
		_ = enc.WriteUint32(i.FeeRate, binary.LittleEndian)
	}

	return buf.Bytes()
}

// InitializeFundData is the pool initialization custom data for a fund.
type InitializeFundData struct {
	SlippageDivider        uint64
	AssetWeights           []uint32
	FundTokenInitialSupply uint64
}

func (d *InitializeFundData) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = enc.WriteUint64(d.SlippageDivider, binary.LittleEndian)
	_ = borsh.WriteUint32Vec(enc, d.AssetWeights)
	_ = enc.WriteUint64(d.FundTokenInitialSupply, binary.LittleEndian)

	return buf.Bytes()
}

func (d *InitializeFundData) Unmarshal(b []byte) error {
	dec := bin.NewBinDecoder(b)

	var err error
	if d.SlippageDivider, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if d.AssetWeights, err = borsh.ReadUint32Vec(dec); err != nil {
		return err
	}
	if d.FundTokenInitialSupply, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}

	return borsh.ExpectEOF(dec)
}
