package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
)

type PauseInstructionAccounts struct {
	Pool  ed25519.PublicKey
	Admin ed25519.PublicKey
}

// NewPauseInstruction halts creations and redemptions for the fund.
func NewPauseInstruction(program ed25519.PublicKey, accounts *PauseInstructionAccounts) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[signer]` Admin account
	return solana.NewInstruction(
		program,
		(&Instruction{Type: InstructionTypePause}).Marshal(),
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
	)
}
