package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

type RebalanceInstructionAccounts struct {
	Pool        ed25519.PublicKey
	Admin       ed25519.PublicKey
	Vaults      []ed25519.PublicKey
	VaultSigner ed25519.PublicKey
	BasicVault  ed25519.PublicKey
	// Market of each pool asset, in pool asset order.
	Markets []Market

	// Defaults to the token-swap program key when unset.
	SwapProgram ed25519.PublicKey
}

// NewRebalanceInstruction swaps fund assets towards their target weights.
// The fund must be paused.
func NewRebalanceInstruction(program ed25519.PublicKey, accounts *RebalanceInstructionAccounts) solana.Instruction {
	swapProgram := accounts.SwapProgram
	if len(swapProgram) == 0 {
		swapProgram = tokenswap.ProgramKey
	}

	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[signer]` Admin account
	//   2. `[writable]` Vault for each of the N pool assets
	//   3. `[]` Vault signer
	//   4. `[writable]` Vault of the reference asset
	//   5. For each of the N pool assets:
	//        * `[]` Token-swap account
	//        * `[]` Swap authority
	//        * `[writable]` Swap reserve of the asset
	//        * `[writable]` Swap reserve of the reference asset
	//        * `[writable]` Swap pool token mint
	//        * `[writable]` Swap fee account
	//   6. `[]` Token program
	//   7. `[]` Token-swap program
	metas := []solana.AccountMeta{
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
	}
	for _, vault := range accounts.Vaults {
		metas = append(metas, solana.NewAccountMeta(vault, false))
	}
	metas = append(metas,
		solana.NewReadonlyAccountMeta(accounts.VaultSigner, false),
		solana.NewAccountMeta(accounts.BasicVault, false),
	)
	for _, market := range accounts.Markets {
		metas = append(metas,
			solana.NewReadonlyAccountMeta(market.Swap, false),
			solana.NewReadonlyAccountMeta(market.Authority, false),
			solana.NewAccountMeta(market.AssetReserve, false),
			solana.NewAccountMeta(market.BasicReserve, false),
			solana.NewAccountMeta(market.PoolMint, false),
			solana.NewAccountMeta(market.FeeAccount, false),
		)
	}
	metas = append(metas,
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
		solana.NewReadonlyAccountMeta(swapProgram, false),
	)

	return solana.NewInstruction(
		program,
		(&Instruction{Type: InstructionTypeRebalance}).Marshal(),
		metas...,
	)
}
