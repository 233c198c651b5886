package fund

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

// MarketAccountsSize is the number of accounts describing the AMM market of
// a single asset in a rebalance.
const MarketAccountsSize = 6

// Market is the token-swap pool trading a fund asset against the fund's
// reference asset.
type Market struct {
	Swap         ed25519.PublicKey
	Authority    ed25519.PublicKey
	AssetReserve ed25519.PublicKey
	BasicReserve ed25519.PublicKey
	PoolMint     ed25519.PublicKey
	FeeAccount   ed25519.PublicKey
}

type marketAccounts struct {
	swap         *solana.AccountInfo
	authority    *solana.AccountInfo
	assetReserve *solana.AccountInfo
	basicReserve *solana.AccountInfo
	poolMint     *solana.AccountInfo
	feeAccount   *solana.AccountInfo
}

// Accounts expected by rebalance, after the pool and admin:
//
//   0. `[writable]` Vault for each of the N pool assets
//   1. `[]` Vault signer
//   2. `[writable]` Vault of the reference asset
//   3. For each of the N pool assets:
//        * `[]` Token-swap account
//        * `[]` Swap authority
//        * `[writable]` Swap reserve of the asset
//        * `[writable]` Swap reserve of the reference asset
//        * `[writable]` Swap pool token mint
//        * `[writable]` Swap fee account
//   4. `[]` Token program
//   5. `[]` Token-swap program
//
// Rebalance only runs inside the pause window opened by Pause, and fails with
// solana.ErrInvalidArgument while the fund is unpaused.
func (p *Program) rebalance(
	log *logrus.Entry,
	invoker solana.Invoker,
	poolAccount *solana.AccountInfo,
	it *solana.AccountIterator,
	state *pool.State,
	fundState *State,
) error {
	if !fundState.Paused {
		log.Debug("fund must be paused to rebalance")
		return solana.ErrInvalidArgument
	}
	if len(fundState.AssetWeights) != len(state.Assets) {
		return solana.ErrInvalidAccountData
	}

	n := len(state.Assets)

	vaults := make([]*solana.AccountInfo, n)
	for i := range vaults {
		var err error
		if vaults[i], err = it.Next(); err != nil {
			return err
		}
	}
	vaultSigner, err := it.Next()
	if err != nil {
		return err
	}
	basicVault, err := it.Next()
	if err != nil {
		return err
	}

	markets := make([]marketAccounts, n)
	for i := range markets {
		market := &markets[i]
		for _, dst := range []**solana.AccountInfo{
			&market.swap,
			&market.authority,
			&market.assetReserve,
			&market.basicReserve,
			&market.poolMint,
			&market.feeAccount,
		} {
			if *dst, err = it.Next(); err != nil {
				return err
			}
		}
	}

	tokenProgram, err := it.Next()
	if err != nil {
		return err
	}
	swapProgram, err := it.Next()
	if err != nil {
		return err
	}

	input := &RebalanceInput{
		Assets:          make([]AssetHolding, n),
		SlippageDivider: fundState.SlippageDivider,
	}

	for i, asset := range state.Assets {
		if !vaults[i].HasKey(asset.VaultAddress) {
			log.Debug("incorrect vault address")
			return solana.ErrInvalidArgument
		}
		parsed, err := pool.CheckTokenAccount(vaults[i], asset.Mint, nil)
		if err != nil {
			log.WithError(err).Debug("invalid vault account")
			return err
		}

		input.Assets[i].VaultAmount = parsed.Amount
		input.Assets[i].Weight = fundState.AssetWeights[i]
	}

	if !vaultSigner.HasKey(state.VaultSigner) {
		log.Debug("incorrect vault signer account")
		return solana.ErrInvalidArgument
	}

	if !basicVault.HasKey(fundState.BasicAsset.VaultAddress) {
		log.Debug("incorrect reference vault address")
		return solana.ErrInvalidArgument
	}
	basic, err := pool.CheckTokenAccount(basicVault, fundState.BasicAsset.Mint, nil)
	if err != nil {
		log.WithError(err).Debug("invalid reference vault account")
		return err
	}
	input.BasicAmount = basic.Amount

	if !tokenProgram.HasKey(token.ProgramKey) {
		log.Debug("incorrect token program")
		return solana.ErrInvalidArgument
	}
	if !swapProgram.HasKey(p.swapProgram) {
		log.Debug("incorrect token-swap program")
		return solana.ErrInvalidArgument
	}

	for i, asset := range state.Assets {
		assetReserve, basicReserve, err := p.checkMarket(&markets[i], asset.Mint, fundState.BasicAsset.Mint)
		if err != nil {
			log.WithError(err).WithField("asset", i).Debug("invalid market accounts")
			return err
		}

		input.Assets[i].AssetReserve = assetReserve
		input.Assets[i].BasicReserve = basicReserve
	}

	plan, err := PlanRebalance(input)
	if err != nil {
		log.WithError(err).Info("failed to plan rebalance")
		return err
	}

	seeds := solana.SignerSeeds(poolAccount.Key, state.VaultSignerNonce)
	accounts := it.Consumed()

	for _, order := range plan.Orders() {
		market := &markets[order.Asset]

		swapAccounts := &tokenswap.SwapInstructionAccounts{
			Swap:                  market.swap.Key,
			Authority:             market.authority.Key,
			UserTransferAuthority: state.VaultSigner,
			PoolMint:              market.poolMint.Key,
			FeeAccount:            market.feeAccount.Key,
			Program:               p.swapProgram,
		}
		if order.Side == SideSell {
			swapAccounts.Source = vaults[order.Asset].Key
			swapAccounts.SwapSource = market.assetReserve.Key
			swapAccounts.SwapDestination = market.basicReserve.Key
			swapAccounts.Destination = basicVault.Key
		} else {
			swapAccounts.Source = basicVault.Key
			swapAccounts.SwapSource = market.basicReserve.Key
			swapAccounts.SwapDestination = market.assetReserve.Key
			swapAccounts.Destination = vaults[order.Asset].Key
		}

		log.WithFields(logrus.Fields{
			"asset":     base58.Encode(state.Assets[order.Asset].Mint),
			"side":      order.Side.String(),
			"amount_in": order.AmountIn,
			"min_out":   order.MinimumAmountOut,
			"value":     plan.Values[order.Asset],
			"target":    plan.Targets[order.Asset],
			"total":     plan.TotalValue,
		}).Debug("swapping")

		instruction := tokenswap.NewSwapInstruction(swapAccounts, &tokenswap.SwapInstructionArgs{
			AmountIn:         order.AmountIn,
			MinimumAmountOut: order.MinimumAmountOut,
		})
		if err := invoker.InvokeSigned(instruction, accounts, seeds); err != nil {
			return err
		}
	}

	return nil
}

// checkMarket verifies the market accounts against the swap's own state and
// returns the reserve balances of the asset and the reference asset.
func (p *Program) checkMarket(market *marketAccounts, assetMint, basicMint ed25519.PublicKey) (uint64, uint64, error) {
	if !market.swap.IsOwnedBy(p.swapProgram) {
		return 0, 0, solana.ErrIncorrectProgramID
	}

	var info tokenswap.SwapInfo
	if err := info.Unmarshal(market.swap.Data); err != nil {
		return 0, 0, solana.ErrInvalidAccountData
	}
	if !info.IsInitialized {
		return 0, 0, solana.ErrUninitializedAccount
	}

	authority, err := tokenswap.GetAuthorityAddress(p.swapProgram, market.swap.Key, info.BumpSeed)
	if err != nil || !market.authority.HasKey(authority) {
		return 0, 0, solana.ErrInvalidArgument
	}

	if !info.Pairs(market.assetReserve.Key, market.basicReserve.Key) {
		return 0, 0, solana.ErrInvalidArgument
	}

	assetReserve, err := pool.CheckTokenAccount(market.assetReserve, assetMint, nil)
	if err != nil {
		return 0, 0, err
	}
	basicReserve, err := pool.CheckTokenAccount(market.basicReserve, basicMint, nil)
	if err != nil {
		return 0, 0, err
	}

	if !market.poolMint.HasKey(info.PoolMint) || !bytes.Equal(market.feeAccount.Key, info.PoolFeeAccount) {
		return 0, 0, solana.ErrInvalidArgument
	}

	return assetReserve.Amount, basicReserve.Amount, nil
}
