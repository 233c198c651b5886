package pool

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/holiman/uint256"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

// ErrorOperationOverflow is reported when a basket quantity does not fit in
// an i64.
const ErrorOperationOverflow solana.CustomError = 0

// Context carries the accounts the framework resolved for a request, in the
// positions it expects them, plus any pool specific accounts that followed.
type Context struct {
	ProgramID ed25519.PublicKey

	PoolAccount       *solana.AccountInfo
	PoolTokenMint     *solana.AccountInfo
	PoolVaultAccounts []*solana.AccountInfo
	PoolAuthority     *solana.AccountInfo
	VaultSignerNonce  uint8

	// Set only for initialization.
	LqdFeeVault         *solana.AccountInfo
	InitializerFeeVault *solana.AccountInfo
	Rent                *system.Rent

	CustomAccounts []*solana.AccountInfo

	Invoker solana.Invoker
}

// CheckRentExemption fails with solana.ErrInsufficientFunds if the account
// balance does not cover rent exemption for its data.
func (c *Context) CheckRentExemption(account *solana.AccountInfo) error {
	rent := system.DefaultRent()
	if c.Rent != nil {
		rent = *c.Rent
	}

	if !rent.IsExempt(account.Lamports, len(account.Data)) {
		return solana.ErrInsufficientFunds
	}
	return nil
}

// CheckTokenAccount parses a token account and verifies its mint and,
// when provided, its owner.
func CheckTokenAccount(account *solana.AccountInfo, mint, owner ed25519.PublicKey) (*token.Account, error) {
	parsed, err := token.ParseAccount(account)
	if err != nil {
		return nil, err
	}

	if len(mint) > 0 && !bytes.Equal(parsed.Mint, mint) {
		return nil, solana.ErrInvalidArgument
	}
	if len(owner) > 0 && !bytes.Equal(parsed.Owner, owner) {
		return nil, solana.ErrInvalidArgument
	}
	return parsed, nil
}

// GetSimpleBasket returns the share of every vault balance backing size pool
// tokens. Quantities round up for creations and down for redemptions.
func (c *Context) GetSimpleBasket(size uint64, roundUp bool) (*Basket, error) {
	mint, err := token.ParseMint(c.PoolTokenMint)
	if err != nil {
		return nil, err
	}
	if mint.Supply == 0 {
		return nil, solana.ErrInvalidArgument
	}

	supply := uint256.NewInt(mint.Supply)
	requested := uint256.NewInt(size)
	maxQuantity := uint256.NewInt(math.MaxInt64)

	basket := &Basket{Quantities: make([]int64, len(c.PoolVaultAccounts))}
	for i, vault := range c.PoolVaultAccounts {
		parsed, err := token.ParseAccount(vault)
		if err != nil {
			return nil, err
		}

		quantity := new(uint256.Int).Mul(uint256.NewInt(parsed.Amount), requested)
		if roundUp {
			quantity.Add(quantity, supply)
			quantity.Sub(quantity, uint256.NewInt(1))
		}
		quantity.Div(quantity, supply)

		if quantity.Gt(maxQuantity) {
			return nil, ErrorOperationOverflow
		}
		basket.Quantities[i] = int64(quantity.Uint64())
	}

	return basket, nil
}

// InvokeSigned invokes the instruction signed by the pool's vault signer.
func (c *Context) InvokeSigned(instruction solana.Instruction, accounts ...*solana.AccountInfo) error {
	return c.Invoker.InvokeSigned(instruction, accounts, solana.SignerSeeds(c.PoolAccount.Key, c.VaultSignerNonce))
}
