package tokenswap

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-swap/program/src/state.rs
const SwapInfoSize = 324

const curveParametersSize = 32

type CurveType uint8

const (
	CurveTypeConstantProduct CurveType = iota
	CurveTypeConstantPrice
	CurveTypeStable
	CurveTypeOffset
)

var ErrInvalidSwapInfoSize = errors.New("invalid swap info size")

type Fees struct {
	TradeFeeNumerator           uint64
	TradeFeeDenominator         uint64
	OwnerTradeFeeNumerator      uint64
	OwnerTradeFeeDenominator    uint64
	OwnerWithdrawFeeNumerator   uint64
	OwnerWithdrawFeeDenominator uint64
	HostFeeNumerator            uint64
	HostFeeDenominator          uint64
}

func (f *Fees) fields() []*uint64 {
	return []*uint64{
		&f.TradeFeeNumerator,
		&f.TradeFeeDenominator,
		&f.OwnerTradeFeeNumerator,
		&f.OwnerTradeFeeDenominator,
		&f.OwnerWithdrawFeeNumerator,
		&f.OwnerWithdrawFeeDenominator,
		&f.HostFeeNumerator,
		&f.HostFeeDenominator,
	}
}

// SwapInfo is the state of a token-swap pool.
type SwapInfo struct {
	Version       uint8
	IsInitialized bool
	BumpSeed      uint8

	TokenProgramID ed25519.PublicKey
	TokenA         ed25519.PublicKey
	TokenB         ed25519.PublicKey
	PoolMint       ed25519.PublicKey
	TokenAMint     ed25519.PublicKey
	TokenBMint     ed25519.PublicKey
	PoolFeeAccount ed25519.PublicKey

	Fees Fees

	CurveType       CurveType
	CurveParameters []byte
}

// Pairs reports whether the two reserve accounts are the swap's token
// accounts, in either orientation.
func (s *SwapInfo) Pairs(reserve, otherReserve ed25519.PublicKey) bool {
	if bytes.Equal(reserve, otherReserve) {
		return false
	}
	return (bytes.Equal(reserve, s.TokenA) && bytes.Equal(otherReserve, s.TokenB)) ||
		(bytes.Equal(reserve, s.TokenB) && bytes.Equal(otherReserve, s.TokenA))
}

// ReserveForMint returns the swap reserve holding the provided mint.
func (s *SwapInfo) ReserveForMint(mint ed25519.PublicKey) (ed25519.PublicKey, bool) {
	switch {
	case bytes.Equal(mint, s.TokenAMint):
		return s.TokenA, true
	case bytes.Equal(mint, s.TokenBMint):
		return s.TokenB, true
	}
	return nil, false
}

func (s *SwapInfo) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = enc.WriteUint8(s.Version)
	_ = enc.WriteBool(s.IsInitialized)
	_ = enc.WriteUint8(s.BumpSeed)
	for _, key := range []ed25519.PublicKey{
		s.TokenProgramID,
		s.TokenA,
		s.TokenB,
		s.PoolMint,
		s.TokenAMint,
		s.TokenBMint,
		s.PoolFeeAccount,
	} {
		padded := make([]byte, ed25519.PublicKeySize)
		copy(padded, key)
		_ = enc.WriteBytes(padded, false)
	}
	for _, fee := range s.Fees.fields() {
		_ = enc.WriteUint64(*fee, binary.LittleEndian)
	}
	_ = enc.WriteUint8(uint8(s.CurveType))

	params := make([]byte, curveParametersSize)
	copy(params, s.CurveParameters)
	_ = enc.WriteBytes(params, false)

	return buf.Bytes()
}

func (s *SwapInfo) Unmarshal(b []byte) error {
	if len(b) != SwapInfoSize {
		return ErrInvalidSwapInfoSize
	}

	dec := bin.NewBinDecoder(b)

	var err error
	if s.Version, err = dec.ReadUint8(); err != nil {
		return err
	}

	initialized, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if initialized > 1 {
		return errors.Errorf("invalid bool value: %d", initialized)
	}
	s.IsInitialized = initialized == 1

	if s.BumpSeed, err = dec.ReadUint8(); err != nil {
		return err
	}

	for _, key := range []*ed25519.PublicKey{
		&s.TokenProgramID,
		&s.TokenA,
		&s.TokenB,
		&s.PoolMint,
		&s.TokenAMint,
		&s.TokenBMint,
		&s.PoolFeeAccount,
	} {
		raw, err := dec.ReadNBytes(ed25519.PublicKeySize)
		if err != nil {
			return err
		}
		*key = append(ed25519.PublicKey{}, raw...)
	}

	for _, fee := range s.Fees.fields() {
		if *fee, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return err
		}
	}

	curveType, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	s.CurveType = CurveType(curveType)

	params, err := dec.ReadNBytes(curveParametersSize)
	if err != nil {
		return err
	}
	s.CurveParameters = append([]byte{}, params...)

	return nil
}
