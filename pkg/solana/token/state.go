package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L125
const AccountSize = 165

// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs#L59
const MintSize = 82

// COption tags are four bytes wide in the token program layouts.
const optionSize = 4

var ErrInvalidAccountSize = errors.New("invalid token account size")

type Account struct {
	// The mint associated with this account
	Mint ed25519.PublicKey
	// The owner of this account.
	Owner ed25519.PublicKey
	// The amount of tokens this account holds.
	Amount uint64
	// If set, then the 'DelegatedAmount' represents the amount
	// authorized by the delegate.
	Delegate ed25519.PublicKey
	// The account's state
	State AccountState
	// If set, this is a native token, and the value logs the rent-exempt reserve.
	IsNative *uint64
	// The amount delegated
	DelegatedAmount uint64
	// Optional authority to close the account.
	CloseAuthority ed25519.PublicKey
}

// IsInitialized reports whether the account has been initialized.
func (a *Account) IsInitialized() bool {
	return a.State != AccountStateUninitialized
}

// HasActiveDelegate reports whether a delegate can still spend from the account.
func (a *Account) HasActiveDelegate() bool {
	return len(a.Delegate) > 0 && a.DelegatedAmount > 0
}

func (a *Account) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	// Writes into a bytes.Buffer cannot fail.
	_ = writeKey(enc, a.Mint)
	_ = writeKey(enc, a.Owner)
	_ = enc.WriteUint64(a.Amount, binary.LittleEndian)
	_ = writeOptionalKey(enc, a.Delegate)
	_ = enc.WriteUint8(uint8(a.State))
	if a.IsNative != nil {
		_ = enc.WriteUint32(1, binary.LittleEndian)
		_ = enc.WriteUint64(*a.IsNative, binary.LittleEndian)
	} else {
		_ = enc.WriteBytes(make([]byte, optionSize+8), false)
	}
	_ = enc.WriteUint64(a.DelegatedAmount, binary.LittleEndian)
	_ = writeOptionalKey(enc, a.CloseAuthority)

	return buf.Bytes()
}

func (a *Account) Unmarshal(b []byte) error {
	if len(b) != AccountSize {
		return ErrInvalidAccountSize
	}

	dec := bin.NewBinDecoder(b)

	var err error
	if a.Mint, err = readKey(dec); err != nil {
		return err
	}
	if a.Owner, err = readKey(dec); err != nil {
		return err
	}
	if a.Amount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if a.Delegate, err = readOptionalKey(dec); err != nil {
		return err
	}

	state, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if state > uint8(AccountStateFrozen) {
		return errors.Errorf("invalid account state: %d", state)
	}
	a.State = AccountState(state)

	present, err := readOptionTag(dec)
	if err != nil {
		return err
	}
	native, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return err
	}
	a.IsNative = nil
	if present {
		a.IsNative = &native
	}

	if a.DelegatedAmount, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if a.CloseAuthority, err = readOptionalKey(dec); err != nil {
		return err
	}

	return nil
}

type Mint struct {
	// Optional authority used to mint new tokens.
	MintAuthority ed25519.PublicKey
	// Total supply of tokens.
	Supply uint64
	// Number of base 10 digits to the right of the decimal place.
	Decimals uint8
	// Is `true` if this structure has been initialized
	IsInitialized bool
	// Optional authority to freeze token accounts.
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = writeOptionalKey(enc, m.MintAuthority)
	_ = enc.WriteUint64(m.Supply, binary.LittleEndian)
	_ = enc.WriteUint8(m.Decimals)
	_ = enc.WriteBool(m.IsInitialized)
	_ = writeOptionalKey(enc, m.FreezeAuthority)

	return buf.Bytes()
}

func (m *Mint) Unmarshal(b []byte) error {
	if len(b) != MintSize {
		return ErrInvalidAccountSize
	}

	dec := bin.NewBinDecoder(b)

	var err error
	if m.MintAuthority, err = readOptionalKey(dec); err != nil {
		return err
	}
	if m.Supply, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if m.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}

	initialized, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if initialized > 1 {
		return errors.Errorf("invalid bool value: %d", initialized)
	}
	m.IsInitialized = initialized == 1

	if m.FreezeAuthority, err = readOptionalKey(dec); err != nil {
		return err
	}

	return nil
}

func writeKey(enc *bin.Encoder, key ed25519.PublicKey) error {
	padded := make([]byte, ed25519.PublicKeySize)
	copy(padded, key)
	return enc.WriteBytes(padded, false)
}

func writeOptionalKey(enc *bin.Encoder, key ed25519.PublicKey) error {
	if len(key) == 0 {
		return enc.WriteBytes(make([]byte, optionSize+ed25519.PublicKeySize), false)
	}

	if err := enc.WriteUint32(1, binary.LittleEndian); err != nil {
		return err
	}
	return writeKey(enc, key)
}

func readKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	raw, err := dec.ReadNBytes(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return append(ed25519.PublicKey{}, raw...), nil
}

func readOptionTag(dec *bin.Decoder) (bool, error) {
	tag, err := dec.ReadUint32(binary.LittleEndian)
	if err != nil {
		return false, err
	}

	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Errorf("invalid option tag: %d", tag)
	}
}

func readOptionalKey(dec *bin.Decoder) (ed25519.PublicKey, error) {
	present, err := readOptionTag(dec)
	if err != nil {
		return nil, err
	}

	key, err := readKey(dec)
	if err != nil || !present {
		return nil, err
	}
	return key, nil
}
