package token

import (
	"github.com/code-payments/index-fund/pkg/solana"
)

// ParseAccount decodes a token account handed to a program.
//
// The account must be owned by the token program and initialized. Failures
// map onto the builtin program errors a caller would surface on chain.
func ParseAccount(info *solana.AccountInfo) (*Account, error) {
	if !info.IsOwnedBy(ProgramKey) {
		return nil, solana.ErrIncorrectProgramID
	}

	var account Account
	if err := account.Unmarshal(info.Data); err != nil {
		return nil, solana.ErrInvalidAccountData
	}
	if !account.IsInitialized() {
		return nil, solana.ErrUninitializedAccount
	}

	return &account, nil
}

// ParseMint decodes a mint account handed to a program.
func ParseMint(info *solana.AccountInfo) (*Mint, error) {
	if !info.IsOwnedBy(ProgramKey) {
		return nil, solana.ErrIncorrectProgramID
	}

	var mint Mint
	if err := mint.Unmarshal(info.Data); err != nil {
		return nil, solana.ErrInvalidAccountData
	}
	if !mint.IsInitialized {
		return nil, solana.ErrUninitializedAccount
	}

	return &mint, nil
}
