package rebalancer

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/index-fund/pkg/fund"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

var (
	ErrMarketNotFound = errors.New("no market configured for asset")
	ErrInvalidMarket  = errors.New("invalid market")
)

// SwapDirectory locates the token-swap pool trading an asset against a
// fund's reference asset.
type SwapDirectory interface {
	// GetSwap returns ErrMarketNotFound if no pool trades the pair.
	GetSwap(ctx context.Context, assetMint, basicMint ed25519.PublicKey) (ed25519.PublicKey, error)
}

// StaticSwapDirectory is a SwapDirectory over a fixed set of pools.
type StaticSwapDirectory struct {
	mu    sync.RWMutex
	swaps map[string]ed25519.PublicKey
}

func NewStaticSwapDirectory() *StaticSwapDirectory {
	return &StaticSwapDirectory{
		swaps: make(map[string]ed25519.PublicKey),
	}
}

// Add registers the pool trading assetMint against basicMint.
func (d *StaticSwapDirectory) Add(assetMint, basicMint, swap ed25519.PublicKey) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.swaps[pairKey(assetMint, basicMint)] = swap
}

// GetSwap implements SwapDirectory.GetSwap
func (d *StaticSwapDirectory) GetSwap(_ context.Context, assetMint, basicMint ed25519.PublicKey) (ed25519.PublicKey, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	swap, ok := d.swaps[pairKey(assetMint, basicMint)]
	if !ok {
		return nil, ErrMarketNotFound
	}
	return swap, nil
}

func pairKey(assetMint, basicMint ed25519.PublicKey) string {
	return base58.Encode(assetMint) + ":" + base58.Encode(basicMint)
}

// ResolveMarket reads the swap at swapKey and returns its accounts, with the
// reserves oriented as asset then reference asset.
func ResolveMarket(ctx context.Context, reader AccountReader, swapProgram, swapKey, assetMint, basicMint ed25519.PublicKey) (*fund.Market, error) {
	account, err := reader.GetAccount(ctx, swapKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get swap account %s", base58.Encode(swapKey))
	}
	if !account.IsOwnedBy(swapProgram) {
		return nil, errors.Wrap(ErrInvalidMarket, "swap account not owned by swap program")
	}

	var info tokenswap.SwapInfo
	if err := info.Unmarshal(account.Data); err != nil {
		return nil, errors.Wrap(ErrInvalidMarket, err.Error())
	}
	if !info.IsInitialized {
		return nil, errors.Wrap(ErrInvalidMarket, "swap not initialized")
	}
	if bytes.Equal(assetMint, basicMint) {
		return nil, errors.Wrap(ErrInvalidMarket, "asset and reference mints are equal")
	}

	assetReserve, ok := info.ReserveForMint(assetMint)
	if !ok {
		return nil, errors.Wrap(ErrInvalidMarket, "swap does not trade the asset")
	}
	basicReserve, ok := info.ReserveForMint(basicMint)
	if !ok {
		return nil, errors.Wrap(ErrInvalidMarket, "swap does not trade the reference asset")
	}

	authority, err := tokenswap.GetAuthorityAddress(swapProgram, swapKey, info.BumpSeed)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidMarket, "invalid swap authority seed")
	}

	return &fund.Market{
		Swap:         append(ed25519.PublicKey{}, swapKey...),
		Authority:    authority,
		AssetReserve: assetReserve,
		BasicReserve: basicReserve,
		PoolMint:     info.PoolMint,
		FeeAccount:   info.PoolFeeAccount,
	}, nil
}
