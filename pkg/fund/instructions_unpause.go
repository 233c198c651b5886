package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
)

type UnpauseInstructionAccounts struct {
	Pool  ed25519.PublicKey
	Admin ed25519.PublicKey
	// Vault of each pool asset, in pool asset order.
	Vaults []ed25519.PublicKey
}

// NewUnpauseInstruction resumes creations and redemptions. It fails while
// any vault has an outstanding delegate.
func NewUnpauseInstruction(program ed25519.PublicKey, accounts *UnpauseInstructionAccounts) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[signer]` Admin account
	//   2. `[]` Vault for each of the N pool assets
	metas := []solana.AccountMeta{
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
	}
	for _, vault := range accounts.Vaults {
		metas = append(metas, solana.NewReadonlyAccountMeta(vault, false))
	}

	return solana.NewInstruction(
		program,
		(&Instruction{Type: InstructionTypeUnpause}).Marshal(),
		metas...,
	)
}
