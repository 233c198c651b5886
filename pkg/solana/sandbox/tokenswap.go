package sandbox

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

// TokenSwapProgram simulates swaps against constant product token-swap
// pools. Trading fees stay in the input reserve and no pool tokens are
// minted to the fee account.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token-swap/program/src/processor.rs
type TokenSwapProgram struct{}

// Process implements solana.Processor.Process
func (p *TokenSwapProgram) Process(invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 1+tokenswap.SwapInstructionArgsSize || tokenswap.InstructionType(data[0]) != tokenswap.InstructionTypeSwap {
		return tokenswap.ErrorInvalidInstruction
	}
	amountIn := binary.LittleEndian.Uint64(data[1:])
	minimumAmountOut := binary.LittleEndian.Uint64(data[9:])

	if len(accounts) < 10 {
		return solana.ErrNotEnoughAccountKeys
	}
	var (
		swapInfo        = accounts[0]
		authority       = accounts[1]
		userAuthority   = accounts[2]
		source          = accounts[3]
		swapSource      = accounts[4]
		swapDestination = accounts[5]
		destination     = accounts[6]
		poolMint        = accounts[7]
		feeAccount      = accounts[8]
		tokenProgram    = accounts[9]
	)

	if !swapInfo.IsOwnedBy(programID) {
		return solana.ErrIncorrectProgramID
	}

	var info tokenswap.SwapInfo
	if err := info.Unmarshal(swapInfo.Data); err != nil || !info.IsInitialized {
		return tokenswap.ErrorIncorrectSwapAccount
	}

	expectedAuthority, err := tokenswap.GetAuthorityAddress(programID, swapInfo.Key, info.BumpSeed)
	if err != nil || !authority.HasKey(expectedAuthority) {
		return tokenswap.ErrorInvalidProgramAddress
	}
	if !info.Pairs(swapSource.Key, swapDestination.Key) {
		return tokenswap.ErrorIncorrectSwapAccount
	}
	if source.HasKey(swapSource.Key) || source.HasKey(swapDestination.Key) {
		return tokenswap.ErrorInvalidInput
	}
	if destination.HasKey(swapSource.Key) || destination.HasKey(swapDestination.Key) {
		return tokenswap.ErrorInvalidOutput
	}
	if !poolMint.HasKey(info.PoolMint) {
		return tokenswap.ErrorIncorrectPoolMint
	}
	if !feeAccount.HasKey(info.PoolFeeAccount) {
		return tokenswap.ErrorIncorrectFeeAccount
	}
	if !tokenProgram.HasKey(token.ProgramKey) {
		return solana.ErrIncorrectProgramID
	}

	reserveIn, err := token.ParseAccount(swapSource)
	if err != nil {
		return err
	}
	reserveOut, err := token.ParseAccount(swapDestination)
	if err != nil {
		return err
	}

	amountOut, ok := tokenswap.ConstantProductOut(reserveIn.Amount, reserveOut.Amount, amountIn, info.Fees)
	if !ok {
		return tokenswap.ErrorCalculationFailure
	}
	if amountOut == 0 {
		return tokenswap.ErrorZeroTradingTokens
	}
	if amountOut < minimumAmountOut {
		return tokenswap.ErrorExceededSlippage
	}

	err = invoker.InvokeSigned(
		token.Transfer(source.Key, swapSource.Key, userAuthority.Key, amountIn),
		accounts,
	)
	if err != nil {
		return err
	}

	return invoker.InvokeSigned(
		token.Transfer(swapDestination.Key, destination.Key, authority.Key, amountOut),
		accounts,
		solana.SignerSeeds(swapInfo.Key, info.BumpSeed),
	)
}
