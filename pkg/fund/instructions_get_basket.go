package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
)

type GetBasketInstructionAccounts struct {
	Pool         ed25519.PublicKey
	PoolMint     ed25519.PublicKey
	Vaults       []ed25519.PublicKey
	VaultSigner  ed25519.PublicKey
	ReturnBuffer ed25519.PublicKey
}

type GetBasketInstructionArgs struct {
	Action pool.Action
	Size   uint64
}

// NewGetBasketInstruction writes the basket for a creation or redemption of
// Size fund tokens into the return buffer.
func NewGetBasketInstruction(
	program ed25519.PublicKey,
	accounts *GetBasketInstructionAccounts,
	args *GetBasketInstructionArgs,
) solana.Instruction {
	req := &pool.Request{
		Type:      pool.RequestTypeGetBasket,
		GetBasket: &pool.GetBasketRequest{Action: args.Action, Size: args.Size},
	}

	// Accounts expected by this instruction:
	//
	//   0. `[]` Pool account
	//   1. `[]` Pool token mint
	//   2. `[]` Vault for each of the N pool assets
	//   3. `[]` Vault signer
	//   4. `[writable]` Return buffer
	metas := []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(accounts.Pool, false),
		solana.NewReadonlyAccountMeta(accounts.PoolMint, false),
	}
	for _, vault := range accounts.Vaults {
		metas = append(metas, solana.NewReadonlyAccountMeta(vault, false))
	}
	metas = append(metas,
		solana.NewReadonlyAccountMeta(accounts.VaultSigner, false),
		solana.NewAccountMeta(accounts.ReturnBuffer, false),
	)

	return solana.NewInstruction(program, req.Marshal(), metas...)
}
