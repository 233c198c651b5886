package fund

import (
	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

// InitializePool implements pool.Pool.InitializePool
//
// Custom accounts:
//
//   0. `[]` Fund admin
//   1. `[writable]` Fund token account receiving the initial supply
//   2. `[]` Vault of the reference asset
//   3. `[]` Token program
func (p *Program) InitializePool(ctx *pool.Context, state *pool.State, request *pool.InitializeRequest) error {
	log := p.log.WithField("method", "InitializePool")

	it := solana.NewAccountIterator(ctx.CustomAccounts)

	admin, err := it.Next()
	if err != nil {
		log.Debug("missing fund admin account")
		return err
	}
	initialSupply, err := it.Next()
	if err != nil {
		log.Debug("missing initial supply fund token account")
		return err
	}
	basicVault, err := it.Next()
	if err != nil {
		log.Debug("missing reference asset vault")
		return err
	}
	tokenProgram, err := it.Next()
	if err != nil {
		log.Debug("missing token program")
		return err
	}

	if err := ctx.CheckRentExemption(admin); err != nil {
		return err
	}
	state.AdminKey = admin.Key

	if err := ctx.CheckRentExemption(initialSupply); err != nil {
		return err
	}
	if _, err := pool.CheckTokenAccount(initialSupply, ctx.PoolTokenMint.Key, state.VaultSigner); err != nil {
		log.WithError(err).Debug("invalid initial supply account")
		return err
	}

	if err := ctx.CheckRentExemption(basicVault); err != nil {
		return err
	}
	basic, err := token.ParseAccount(basicVault)
	if err != nil {
		log.WithError(err).Debug("invalid reference asset vault")
		return err
	}

	if !tokenProgram.HasKey(token.ProgramKey) {
		log.Debug("incorrect token program")
		return solana.ErrInvalidArgument
	}

	var data InitializeFundData
	if err := data.Unmarshal(request.CustomData); err != nil {
		log.WithError(err).Debug("invalid initial fund data")
		return solana.ErrInvalidInstructionData
	}
	if len(data.AssetWeights) != len(state.Assets) {
		log.Debugf("asset weights count %d does not match the assets count %d", len(data.AssetWeights), len(state.Assets))
		return solana.ErrInvalidInstructionData
	}
	if data.SlippageDivider == 0 {
		log.Debug("slippage divider must be positive")
		return solana.ErrInvalidInstructionData
	}

	err = WriteState(state, &State{
		Paused:          false,
		SlippageDivider: data.SlippageDivider,
		AssetWeights:    data.AssetWeights,
		BasicAsset: pool.AssetInfo{
			Mint:         basic.Mint,
			VaultAddress: basicVault.Key,
		},
	})
	if err != nil {
		return err
	}

	return ctx.InvokeSigned(
		token.MintTo(ctx.PoolTokenMint.Key, initialSupply.Key, state.VaultSigner, data.FundTokenInitialSupply),
		initialSupply,
		ctx.PoolTokenMint,
		ctx.PoolAuthority,
		tokenProgram,
	)
}
