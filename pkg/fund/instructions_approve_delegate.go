package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

type ApproveDelegateInstructionAccounts struct {
	Pool        ed25519.PublicKey
	Admin       ed25519.PublicKey
	Vault       ed25519.PublicKey
	Delegate    ed25519.PublicKey
	VaultSigner ed25519.PublicKey
}

type ApproveDelegateInstructionArgs struct {
	Amount uint64
}

// NewApproveDelegateInstruction lets the delegate spend amount from a fund
// vault. The fund is paused as a side effect.
func NewApproveDelegateInstruction(
	program ed25519.PublicKey,
	accounts *ApproveDelegateInstructionAccounts,
	args *ApproveDelegateInstructionArgs,
) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[signer]` Admin account
	//   2. `[writable]` Vault to delegate access to
	//   3. `[]` Delegate
	//   4. `[]` Vault signer
	//   5. `[]` Token program
	return solana.NewInstruction(
		program,
		(&Instruction{Type: InstructionTypeApproveDelegate, Amount: args.Amount}).Marshal(),
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
		solana.NewAccountMeta(accounts.Vault, false),
		solana.NewReadonlyAccountMeta(accounts.Delegate, false),
		solana.NewReadonlyAccountMeta(accounts.VaultSigner, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}
