package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
)

type UpdateFeeInstructionAccounts struct {
	Pool  ed25519.PublicKey
	Admin ed25519.PublicKey
}

type UpdateFeeInstructionArgs struct {
	FeeRate uint32
}

func NewUpdateFeeInstruction(
	program ed25519.PublicKey,
	accounts *UpdateFeeInstructionAccounts,
	args *UpdateFeeInstructionArgs,
) solana.Instruction {
	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[signer]` Admin account
	return solana.NewInstruction(
		program,
		(&Instruction{Type: InstructionTypeUpdateFee, FeeRate: args.FeeRate}).Marshal(),
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, true),
	)
}
