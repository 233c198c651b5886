package fund

import (
	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
)

// GetCreationBasket implements pool.Pool.GetCreationBasket
func (p *Program) GetCreationBasket(ctx *pool.Context, state *pool.State, size uint64) (*pool.Basket, error) {
	if err := p.checkNotPaused(state); err != nil {
		return nil, err
	}
	return ctx.GetSimpleBasket(size, true)
}

// GetRedemptionBasket implements pool.Pool.GetRedemptionBasket
func (p *Program) GetRedemptionBasket(ctx *pool.Context, state *pool.State, size uint64) (*pool.Basket, error) {
	if err := p.checkNotPaused(state); err != nil {
		return nil, err
	}
	return ctx.GetSimpleBasket(size, false)
}

func (p *Program) checkNotPaused(state *pool.State) error {
	fundState, err := ReadState(state)
	if err != nil {
		return err
	}
	if fundState.Paused {
		p.log.Debug("fund is paused")
		return solana.ErrInvalidArgument
	}
	return nil
}
