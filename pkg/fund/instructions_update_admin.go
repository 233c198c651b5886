package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
)

type UpdateAdminInstructionAccounts struct {
	Pool     ed25519.PublicKey
	Admin    ed25519.PublicKey
	NewAdmin ed25519.PublicKey
}

// NewUpdateAdminInstruction transfers admin permission. Both the current and
// the new admin must sign.
func NewUpdateAdminInstruction(program ed25519.PublicKey, accounts *UpdateAdminInstructionAccounts) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[signer]` Current admin account
	//   2. `[signer]` New admin account
	return solana.NewInstruction(
		program,
		(&Instruction{Type: InstructionTypeUpdateAdmin}).Marshal(),
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
		solana.NewReadonlyAccountMeta(accounts.NewAdmin, true),
	)
}
