package tokenswap

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

// ProgramKey is the address of the SPL token-swap program.
//
// Current key: SwapsVeCiPHMUAtzQWZw7RjsKjgCjhwU55QGu4U1Szw
var ProgramKey = ed25519.PublicKey{6, 165, 60, 214, 45, 140, 150, 136, 85, 76, 163, 132, 250, 242, 149, 59, 133, 4, 255, 95, 119, 86, 21, 196, 185, 198, 183, 129, 191, 180, 128, 180}

type InstructionType uint8

const (
	// nolint:varcheck,deadcode,unused
	InstructionTypeInitialize InstructionType = iota
	InstructionTypeSwap
)

// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-swap/program/src/error.rs
const (
	// nolint:varcheck,deadcode,unused
	ErrorAlreadyInUse solana.CustomError = iota
	ErrorInvalidProgramAddress
	// nolint:varcheck,deadcode,unused
	ErrorInvalidOwner
	// nolint:varcheck,deadcode,unused
	ErrorInvalidOutputOwner
	// nolint:varcheck,deadcode,unused
	ErrorExpectedMint
	// nolint:varcheck,deadcode,unused
	ErrorExpectedAccount
	ErrorEmptySupply
	// nolint:varcheck,deadcode,unused
	ErrorInvalidSupply
	// nolint:varcheck,deadcode,unused
	ErrorRepeatedMint
	// nolint:varcheck,deadcode,unused
	ErrorInvalidDelegate
	ErrorInvalidInput
	ErrorIncorrectSwapAccount
	ErrorIncorrectPoolMint
	ErrorInvalidOutput
	ErrorCalculationFailure
	ErrorInvalidInstruction
	ErrorExceededSlippage
	// nolint:varcheck,deadcode,unused
	ErrorInvalidCloseAuthority
	// nolint:varcheck,deadcode,unused
	ErrorInvalidFreezeAuthority
	ErrorIncorrectFeeAccount
	ErrorZeroTradingTokens
)

const (
	SwapInstructionArgsSize = (8 + // amount_in
		8) // minimum_amount_out
)

type SwapInstructionArgs struct {
	AmountIn         uint64
	MinimumAmountOut uint64
}

type SwapInstructionAccounts struct {
	Swap                  ed25519.PublicKey
	Authority             ed25519.PublicKey
	UserTransferAuthority ed25519.PublicKey
	Source                ed25519.PublicKey
	SwapSource            ed25519.PublicKey
	SwapDestination       ed25519.PublicKey
	Destination           ed25519.PublicKey
	PoolMint              ed25519.PublicKey
	FeeAccount            ed25519.PublicKey

	// Defaults to the token-swap program key when unset.
	Program ed25519.PublicKey
}

// NewSwapInstruction swaps tokens through the pool.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-swap/program/src/instruction.rs
func NewSwapInstruction(
	accounts *SwapInstructionAccounts,
	args *SwapInstructionArgs,
) solana.Instruction {
	data := make([]byte, 1+SwapInstructionArgsSize)
	data[0] = byte(InstructionTypeSwap)
	binary.LittleEndian.PutUint64(data[1:], args.AmountIn)
	binary.LittleEndian.PutUint64(data[9:], args.MinimumAmountOut)

	program := accounts.Program
	if len(program) == 0 {
		program = ProgramKey
	}

	// Accounts expected by this instruction:
	//
	//   0. `[]` Token-swap
	//   1. `[]` swap authority
	//   2. `[signer]` user transfer authority
	//   3. `[writable]` token_(A|B) SOURCE Account, amount is transferable by user transfer authority,
	//   4. `[writable]` token_(A|B) Base Account to swap INTO.  Must be the SOURCE token.
	//   5. `[writable]` token_(A|B) Base Account to swap FROM.  Must be the DESTINATION token.
	//   6. `[writable]` token_(A|B) DESTINATION Account assigned to USER as the owner.
	//   7. `[writable]` Pool token mint, to generate trading fees
	//   8. `[writable]` Fee account, to receive trading fees
	//   9. `[]` Token program id
	return solana.NewInstruction(
		program,
		data,
		solana.NewReadonlyAccountMeta(accounts.Swap, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, false),
		solana.NewReadonlyAccountMeta(accounts.UserTransferAuthority, true),
		solana.NewAccountMeta(accounts.Source, false),
		solana.NewAccountMeta(accounts.SwapSource, false),
		solana.NewAccountMeta(accounts.SwapDestination, false),
		solana.NewAccountMeta(accounts.Destination, false),
		solana.NewAccountMeta(accounts.PoolMint, false),
		solana.NewAccountMeta(accounts.FeeAccount, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)
}

type DecompiledSwap struct {
	Accounts SwapInstructionAccounts
	Args     SwapInstructionArgs
}

// DecompileSwap parses a swap instruction addressed to program.
func DecompileSwap(program ed25519.PublicKey, i solana.Instruction) (*DecompiledSwap, error) {
	if !bytes.Equal(i.Program, program) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 || InstructionType(i.Data[0]) != InstructionTypeSwap {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Data) != 1+SwapInstructionArgsSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}
	if len(i.Accounts) < 10 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	return &DecompiledSwap{
		Accounts: SwapInstructionAccounts{
			Swap:                  i.Accounts[0].PublicKey,
			Authority:             i.Accounts[1].PublicKey,
			UserTransferAuthority: i.Accounts[2].PublicKey,
			Source:                i.Accounts[3].PublicKey,
			SwapSource:            i.Accounts[4].PublicKey,
			SwapDestination:       i.Accounts[5].PublicKey,
			Destination:           i.Accounts[6].PublicKey,
			PoolMint:              i.Accounts[7].PublicKey,
			FeeAccount:            i.Accounts[8].PublicKey,
			Program:               i.Program,
		},
		Args: SwapInstructionArgs{
			AmountIn:         binary.LittleEndian.Uint64(i.Data[1:]),
			MinimumAmountOut: binary.LittleEndian.Uint64(i.Data[9:]),
		},
	}, nil
}

// GetAuthorityAddress derives the authority that owns the swap's reserves.
func GetAuthorityAddress(program, swap ed25519.PublicKey, bumpSeed uint8) (ed25519.PublicKey, error) {
	return solana.CreateSignerAddress(program, swap, bumpSeed)
}
