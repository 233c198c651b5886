package system

import (
	"bytes"
	"encoding/binary"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/code-payments/index-fund/pkg/solana"
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs
const (
	DefaultLamportsPerByteYear = 1_000_000_000 / 100 * 365 / (1024 * 1024)
	DefaultExemptionThreshold  = 2.0
	DefaultBurnPercent         = 50

	// Bytes of metadata the runtime stores for every account, charged on
	// top of the account's data.
	AccountStorageOverhead = 128

	RentSize = 8 + 8 + 1
)

var ErrInvalidRentSize = errors.New("invalid rent sysvar size")

// Rent is the configuration of network rent, as stored in the rent sysvar.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	BurnPercent         uint8
}

// DefaultRent returns the rent configuration used by the network by default.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance returns the lamports an account holding dataLen bytes needs
// to be exempt from rent.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(AccountStorageOverhead + dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt reports whether the balance covers rent exemption for dataLen bytes.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}

func (r Rent) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = enc.WriteUint64(r.LamportsPerByteYear, binary.LittleEndian)
	_ = enc.WriteUint64(math.Float64bits(r.ExemptionThreshold), binary.LittleEndian)
	_ = enc.WriteUint8(r.BurnPercent)

	return buf.Bytes()
}

func (r *Rent) Unmarshal(b []byte) error {
	if len(b) != RentSize {
		return ErrInvalidRentSize
	}

	dec := bin.NewBinDecoder(b)

	var err error
	if r.LamportsPerByteYear, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}

	threshold, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return err
	}
	r.ExemptionThreshold = math.Float64frombits(threshold)

	if r.BurnPercent, err = dec.ReadUint8(); err != nil {
		return err
	}

	return nil
}

// ParseRent decodes the rent sysvar account handed to a program.
func ParseRent(info *solana.AccountInfo) (*Rent, error) {
	if !info.HasKey(RentSysVar) {
		return nil, solana.ErrInvalidArgument
	}

	var rent Rent
	if err := rent.Unmarshal(info.Data); err != nil {
		return nil, solana.ErrInvalidAccountData
	}
	return &rent, nil
}
