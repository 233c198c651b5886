package sandbox

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

// TokenProgram simulates the token program instructions the fund relies on:
// Transfer, Approve and MintTo.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/processor.rs
type TokenProgram struct{}

// Process implements solana.Processor.Process
func (p *TokenProgram) Process(_ solana.Invoker, _ ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if len(data) != 1+8 {
		return token.ErrorInvalidInstruction
	}
	amount := binary.LittleEndian.Uint64(data[1:])

	if len(accounts) < 3 {
		return solana.ErrNotEnoughAccountKeys
	}

	switch token.Command(data[0]) {
	case token.CommandTransfer:
		return p.transfer(accounts[0], accounts[1], accounts[2], amount)
	case token.CommandApprove:
		return p.approve(accounts[0], accounts[1], accounts[2], amount)
	case token.CommandMintTo:
		return p.mintTo(accounts[0], accounts[1], accounts[2], amount)
	default:
		return token.ErrorInvalidInstruction
	}
}

func (p *TokenProgram) transfer(sourceInfo, destInfo, authority *solana.AccountInfo, amount uint64) error {
	source, err := token.ParseAccount(sourceInfo)
	if err != nil {
		return err
	}
	dest, err := token.ParseAccount(destInfo)
	if err != nil {
		return err
	}

	if source.State == token.AccountStateFrozen || dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if source.Amount < amount {
		return token.ErrorInsufficientFunds
	}
	if !bytes.Equal(source.Mint, dest.Mint) {
		return token.ErrorMintMismatch
	}

	switch {
	case len(source.Delegate) > 0 && authority.HasKey(source.Delegate):
		if !authority.IsSigner {
			return solana.ErrMissingRequiredSignature
		}
		if source.DelegatedAmount < amount {
			return token.ErrorInsufficientFunds
		}
		source.DelegatedAmount -= amount
		if source.DelegatedAmount == 0 {
			source.Delegate = nil
		}
	case authority.HasKey(source.Owner):
		if !authority.IsSigner {
			return solana.ErrMissingRequiredSignature
		}
	default:
		return token.ErrorOwnerMismatch
	}

	if sourceInfo.HasKey(destInfo.Key) {
		return writeTokenAccount(sourceInfo, source)
	}

	source.Amount -= amount
	dest.Amount += amount
	if dest.Amount < amount {
		return token.ErrorOverflow
	}

	if err := writeTokenAccount(sourceInfo, source); err != nil {
		return err
	}
	return writeTokenAccount(destInfo, dest)
}

func (p *TokenProgram) approve(sourceInfo, delegate, owner *solana.AccountInfo, amount uint64) error {
	source, err := token.ParseAccount(sourceInfo)
	if err != nil {
		return err
	}
	if source.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !owner.HasKey(source.Owner) {
		return token.ErrorOwnerMismatch
	}
	if !owner.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	source.Delegate = append(ed25519.PublicKey{}, delegate.Key...)
	source.DelegatedAmount = amount

	return writeTokenAccount(sourceInfo, source)
}

func (p *TokenProgram) mintTo(mintInfo, destInfo, authority *solana.AccountInfo, amount uint64) error {
	dest, err := token.ParseAccount(destInfo)
	if err != nil {
		return err
	}
	if dest.State == token.AccountStateFrozen {
		return token.ErrorAccountFrozen
	}
	if !bytes.Equal(dest.Mint, mintInfo.Key) {
		return token.ErrorMintMismatch
	}

	mint, err := token.ParseMint(mintInfo)
	if err != nil {
		return err
	}
	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if !authority.HasKey(mint.MintAuthority) {
		return token.ErrorOwnerMismatch
	}
	if !authority.IsSigner {
		return solana.ErrMissingRequiredSignature
	}

	mint.Supply += amount
	if mint.Supply < amount {
		return token.ErrorOverflow
	}
	dest.Amount += amount

	if !mintInfo.IsWritable || !destInfo.IsWritable {
		return solana.ErrReadonlyDataModified
	}
	copy(mintInfo.Data, mint.Marshal())
	return writeTokenAccount(destInfo, dest)
}

func writeTokenAccount(info *solana.AccountInfo, account *token.Account) error {
	if !info.IsWritable {
		return solana.ErrReadonlyDataModified
	}
	copy(info.Data, account.Marshal())
	return nil
}
