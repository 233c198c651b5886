package pool

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/index-fund/pkg/solana/borsh"
)

const (
	StateTag   uint64 = 0x16a7874c7fb2301b
	RequestTag uint64 = 0x220a6cbdcd1cc4cf
)

// Fee rates are expressed in millionths of the pool token amount.
const (
	MinFeeRate         = 150
	FeeRateDenominator = 1_000_000
)

var ErrInvalidStateTag = errors.New("invalid pool state tag")

const (
	AssetInfoSize = 32 + 32
	ParamDescSize = 32 + 1
)

type AssetInfo struct {
	Mint         ed25519.PublicKey
	VaultAddress ed25519.PublicKey
}

func (a AssetInfo) String() string {
	return fmt.Sprintf("AssetInfo{mint=%s,vault=%s}", base58.Encode(a.Mint), base58.Encode(a.VaultAddress))
}

// WriteAssetInfo writes the asset as two consecutive keys.
func WriteAssetInfo(enc *bin.Encoder, a AssetInfo) error {
	if err := borsh.WriteKey(enc, a.Mint); err != nil {
		return err
	}
	return borsh.WriteKey(enc, a.VaultAddress)
}

func ReadAssetInfo(dec *bin.Decoder) (AssetInfo, error) {
	var a AssetInfo
	var err error
	if a.Mint, err = borsh.ReadKey(dec); err != nil {
		return a, err
	}
	if a.VaultAddress, err = borsh.ReadKey(dec); err != nil {
		return a, err
	}
	return a, nil
}

// ParamDesc is an additional account a pool requires for its requests.
type ParamDesc struct {
	Address  ed25519.PublicKey
	Writable bool
}

// State is the account state shared by every pool built on the framework.
// Pool implementations keep their own state in CustomState.
type State struct {
	PoolTokenMint       ed25519.PublicKey
	Assets              []AssetInfo
	VaultSigner         ed25519.PublicKey
	VaultSignerNonce    uint8
	AccountParams       []ParamDesc
	Name                string
	LqdFeeVault         ed25519.PublicKey
	InitializerFeeVault ed25519.PublicKey
	FeeRate             uint32
	AdminKey            ed25519.PublicKey
	CustomState         []byte
}

// FindAsset returns the index of the asset held in the provided vault.
func (s *State) FindAsset(vault ed25519.PublicKey) (int, bool) {
	for i, asset := range s.Assets {
		if bytes.Equal(asset.VaultAddress, vault) {
			return i, true
		}
	}
	return 0, false
}

// IsAdmin reports whether key is the configured admin. Pools without an
// admin have no admin.
func (s *State) IsAdmin(key ed25519.PublicKey) bool {
	return len(s.AdminKey) > 0 && bytes.Equal(s.AdminKey, key)
}

func (s *State) Clone() *State {
	cloned := *s
	cloned.Assets = append([]AssetInfo{}, s.Assets...)
	cloned.AccountParams = append([]ParamDesc{}, s.AccountParams...)
	cloned.CustomState = append([]byte{}, s.CustomState...)
	return &cloned
}

func (s *State) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	// Writes into a bytes.Buffer cannot fail.
	_ = enc.WriteUint64(StateTag, binary.LittleEndian)
	_ = borsh.WriteKey(enc, s.PoolTokenMint)
	_ = borsh.WriteLength(enc, len(s.Assets))
	for _, asset := range s.Assets {
		_ = WriteAssetInfo(enc, asset)
	}
	_ = borsh.WriteKey(enc, s.VaultSigner)
	_ = enc.WriteUint8(s.VaultSignerNonce)
	_ = borsh.WriteLength(enc, len(s.AccountParams))
	for _, param := range s.AccountParams {
		_ = borsh.WriteKey(enc, param.Address)
		_ = borsh.WriteBool(enc, param.Writable)
	}
	_ = borsh.WriteString(enc, s.Name)
	_ = borsh.WriteKey(enc, s.LqdFeeVault)
	_ = borsh.WriteKey(enc, s.InitializerFeeVault)
	_ = enc.WriteUint32(s.FeeRate, binary.LittleEndian)
	_ = borsh.WriteOptionalKey(enc, s.AdminKey)
	_ = borsh.WriteBytes(enc, s.CustomState)

	return buf.Bytes()
}

// Unmarshal decodes the state from the start of b. Account data past the
// encoded state is ignored.
func (s *State) Unmarshal(b []byte) error {
	dec := bin.NewBinDecoder(b)

	tag, err := dec.ReadUint64(binary.LittleEndian)
	if err != nil {
		return err
	}
	if tag != StateTag {
		return ErrInvalidStateTag
	}

	if s.PoolTokenMint, err = borsh.ReadKey(dec); err != nil {
		return err
	}

	assets, err := borsh.ReadLength(dec, AssetInfoSize)
	if err != nil {
		return err
	}
	s.Assets = make([]AssetInfo, assets)
	for i := range s.Assets {
		if s.Assets[i], err = ReadAssetInfo(dec); err != nil {
			return err
		}
	}

	if s.VaultSigner, err = borsh.ReadKey(dec); err != nil {
		return err
	}
	if s.VaultSignerNonce, err = dec.ReadUint8(); err != nil {
		return err
	}

	params, err := borsh.ReadLength(dec, ParamDescSize)
	if err != nil {
		return err
	}
	s.AccountParams = make([]ParamDesc, params)
	for i := range s.AccountParams {
		if s.AccountParams[i].Address, err = borsh.ReadKey(dec); err != nil {
			return err
		}
		if s.AccountParams[i].Writable, err = borsh.ReadBool(dec); err != nil {
			return err
		}
	}

	if s.Name, err = borsh.ReadString(dec); err != nil {
		return err
	}
	if s.LqdFeeVault, err = borsh.ReadKey(dec); err != nil {
		return err
	}
	if s.InitializerFeeVault, err = borsh.ReadKey(dec); err != nil {
		return err
	}
	if s.FeeRate, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return err
	}
	if s.AdminKey, err = borsh.ReadOptionalKey(dec); err != nil {
		return err
	}
	if s.CustomState, err = borsh.ReadBytes(dec); err != nil {
		return err
	}

	return nil
}

func (s *State) String() string {
	admin := "none"
	if len(s.AdminKey) > 0 {
		admin = base58.Encode(s.AdminKey)
	}

	return fmt.Sprintf(
		"PoolState{name=%s,mint=%s,assets=%d,vault_signer=%s,nonce=%d,fee_rate=%d,admin=%s,custom_state=%d}",
		s.Name,
		base58.Encode(s.PoolTokenMint),
		len(s.Assets),
		base58.Encode(s.VaultSigner),
		s.VaultSignerNonce,
		s.FeeRate,
		admin,
		len(s.CustomState),
	)
}
