package fund

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"

	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/borsh"
)

const (
	// DefaultSlippageDivider tolerates a 1% deviation from the target value
	// and from the expected swap output.
	DefaultSlippageDivider = 100

	stateBaseSize = (1 + // paused
		8 + // slippage_divider
		4 + // asset_weights length
		pool.AssetInfoSize) // basic_asset
)

// State is the fund specific state kept in the pool's custom state.
type State struct {
	Paused          bool
	SlippageDivider uint64
	// Weight of each pool asset, in pool asset order.
	AssetWeights []uint32
	// The reference asset every pool asset is valued in.
	BasicAsset pool.AssetInfo
}

// StateSize returns the encoded size of a fund holding n assets.
func StateSize(n int) int {
	return stateBaseSize + 4*n
}

func (s *State) Clone() *State {
	cloned := *s
	cloned.AssetWeights = append([]uint32{}, s.AssetWeights...)
	return &cloned
}

func (s *State) Marshal() []byte {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	_ = borsh.WriteBool(enc, s.Paused)
	_ = enc.WriteUint64(s.SlippageDivider, binary.LittleEndian)
	_ = borsh.WriteUint32Vec(enc, s.AssetWeights)
	_ = pool.WriteAssetInfo(enc, s.BasicAsset)

	return buf.Bytes()
}

func (s *State) Unmarshal(b []byte) error {
	dec := bin.NewBinDecoder(b)

	var err error
	if s.Paused, err = borsh.ReadBool(dec); err != nil {
		return err
	}
	if s.SlippageDivider, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if s.AssetWeights, err = borsh.ReadUint32Vec(dec); err != nil {
		return err
	}
	if s.BasicAsset, err = pool.ReadAssetInfo(dec); err != nil {
		return err
	}

	return borsh.ExpectEOF(dec)
}

func (s *State) String() string {
	weights := make([]string, len(s.AssetWeights))
	for i, w := range s.AssetWeights {
		weights[i] = fmt.Sprintf("%d", w)
	}

	return fmt.Sprintf(
		"FundState{paused=%t,slippage_divider=%d,asset_weights=[%s],basic_mint=%s,basic_vault=%s}",
		s.Paused,
		s.SlippageDivider,
		strings.Join(weights, ","),
		base58.Encode(s.BasicAsset.Mint),
		base58.Encode(s.BasicAsset.VaultAddress),
	)
}

// ReadState decodes the fund state held by the pool.
func ReadState(state *pool.State) (*State, error) {
	var fundState State
	if err := fundState.Unmarshal(state.CustomState); err != nil {
		return nil, solana.ErrInvalidAccountData
	}
	return &fundState, nil
}

// WriteState stores the fund state into the pool. Once the pool carries a
// fund state, its encoded length can no longer change.
func WriteState(state *pool.State, fundState *State) error {
	encoded := fundState.Marshal()
	if len(state.CustomState) > 0 && len(state.CustomState) != len(encoded) {
		return solana.ErrInvalidAccountData
	}

	state.CustomState = encoded
	return nil
}

// CalcLen returns the size of the pool account to allocate for a fund with
// the provided name and number of assets.
func CalcLen(name string, assets int) int {
	state := &pool.State{
		Assets:           make([]pool.AssetInfo, assets),
		VaultSignerNonce: 1,
		Name:             name,
		AdminKey:         make([]byte, 32),
	}

	weights := make([]uint32, assets)
	for i := range weights {
		weights[i] = 1
	}

	// A fresh pool has no fund state, so this cannot fail.
	_ = WriteState(state, &State{
		SlippageDivider: DefaultSlippageDivider,
		AssetWeights:    weights,
	})

	return len(state.Marshal())
}
