package fund

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

type InitializeInstructionAccounts struct {
	Pool                ed25519.PublicKey
	PoolMint            ed25519.PublicKey
	Vaults              []ed25519.PublicKey
	VaultSigner         ed25519.PublicKey
	LqdFeeVault         ed25519.PublicKey
	InitializerFeeVault ed25519.PublicKey
	Admin               ed25519.PublicKey
	InitialSupply       ed25519.PublicKey
	BasicVault          ed25519.PublicKey
}

type InitializeInstructionArgs struct {
	VaultSignerNonce uint8
	Name             string
	FeeRate          uint32
	Data             InitializeFundData
}

// NewInitializeInstruction creates a fund in a zeroed pool account sized with
// CalcLen, and mints the initial supply of fund tokens.
func NewInitializeInstruction(
	program ed25519.PublicKey,
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	req := &pool.Request{
		Type: pool.RequestTypeInitialize,
		Initialize: &pool.InitializeRequest{
			VaultSignerNonce: args.VaultSignerNonce,
			AssetsLength:     uint8(len(accounts.Vaults)),
			PoolName:         args.Name,
			FeeRate:          args.FeeRate,
			CustomData:       args.Data.Marshal(),
		},
	}

	// Accounts expected by this instruction:
	//
	//   0. `[writable]` Pool account
	//   1. `[writable]` Pool token mint
	//   2. `[]` Vault for each of the N pool assets
	//   3. `[]` Vault signer
	//   4. `[]` Liquidity fee vault
	//   5. `[]` Initializer fee vault
	//   6. `[]` Rent sysvar
	//   7. `[]` Fund admin
	//   8. `[writable]` Fund token account receiving the initial supply
	//   9. `[]` Vault of the reference asset
	//  10. `[]` Token program
	metas := []solana.AccountMeta{
		solana.NewAccountMeta(accounts.Pool, false),
		solana.NewAccountMeta(accounts.PoolMint, false),
	}
	for _, vault := range accounts.Vaults {
		metas = append(metas, solana.NewReadonlyAccountMeta(vault, false))
	}
	metas = append(metas,
		solana.NewReadonlyAccountMeta(accounts.VaultSigner, false),
		solana.NewReadonlyAccountMeta(accounts.LqdFeeVault, false),
		solana.NewReadonlyAccountMeta(accounts.InitializerFeeVault, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
		solana.NewReadonlyAccountMeta(accounts.Admin, false),
		solana.NewAccountMeta(accounts.InitialSupply, false),
		solana.NewReadonlyAccountMeta(accounts.BasicVault, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	)

	return solana.NewInstruction(program, req.Marshal(), metas...)
}
