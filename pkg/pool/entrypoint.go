package pool

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

// NewProcessor returns the program entrypoint for a pool implementation.
func NewProcessor(p Pool) solana.Processor {
	return solana.ProcessorFunc(func(invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
		return Process(p, invoker, programID, accounts, data)
	})
}

// Process routes pool requests to the framework and everything else to the
// pool implementation.
func Process(p Pool, invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	if !IsRequest(data) {
		return p.ProcessForeignInstruction(invoker, programID, accounts, data)
	}

	req, err := DecodeRequest(data)
	if err != nil {
		return err
	}

	switch req.Type {
	case RequestTypeInitialize:
		return initialize(p, invoker, programID, accounts, req.Initialize)
	case RequestTypeGetBasket:
		return getBasket(p, invoker, programID, accounts, req.GetBasket)
	default:
		return solana.ErrInvalidInstructionData
	}
}

// Accounts expected by initialize:
//
//   0. `[writable]` Pool account, zeroed and sized for the pool's state
//   1. `[]` Pool token mint, with the vault signer as mint authority
//   2. `[]` Vault for each of the N pool assets, owned by the vault signer
//   3. `[]` Vault signer
//   4. `[]` Liquidity fee vault, a pool token account
//   5. `[]` Initializer fee vault, a pool token account
//   6. `[]` Rent sysvar
//   7. Pool specific accounts
func initialize(p Pool, invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, req *InitializeRequest) error {
	it := solana.NewAccountIterator(accounts)

	poolAccount, err := it.Next()
	if err != nil {
		return err
	}
	if !poolAccount.IsOwnedBy(programID) {
		return solana.ErrIncorrectProgramID
	}
	if !isZeroed(poolAccount.Data) {
		return solana.ErrAccountAlreadyInitialized
	}

	poolTokenMint, err := it.Next()
	if err != nil {
		return err
	}

	if req.AssetsLength == 0 {
		return solana.ErrInvalidArgument
	}
	vaults := make([]*solana.AccountInfo, req.AssetsLength)
	for i := range vaults {
		if vaults[i], err = it.Next(); err != nil {
			return err
		}
	}

	poolAuthority, err := it.Next()
	if err != nil {
		return err
	}
	lqdFeeVault, err := it.Next()
	if err != nil {
		return err
	}
	initializerFeeVault, err := it.Next()
	if err != nil {
		return err
	}
	rentAccount, err := it.Next()
	if err != nil {
		return err
	}

	rent, err := system.ParseRent(rentAccount)
	if err != nil {
		return err
	}

	ctx := &Context{
		ProgramID:           programID,
		PoolAccount:         poolAccount,
		PoolTokenMint:       poolTokenMint,
		PoolVaultAccounts:   vaults,
		PoolAuthority:       poolAuthority,
		VaultSignerNonce:    req.VaultSignerNonce,
		LqdFeeVault:         lqdFeeVault,
		InitializerFeeVault: initializerFeeVault,
		Rent:                rent,
		CustomAccounts:      it.Remaining(),
		Invoker:             invoker,
	}

	if err := ctx.CheckRentExemption(poolAccount); err != nil {
		return err
	}
	if len(req.PoolName) == 0 {
		return solana.ErrInvalidArgument
	}
	if req.FeeRate < MinFeeRate || req.FeeRate >= FeeRateDenominator {
		return solana.ErrInvalidArgument
	}

	vaultSigner, err := solana.CreateSignerAddress(programID, poolAccount.Key, req.VaultSignerNonce)
	if err != nil {
		return solana.ErrInvalidSeeds
	}
	if !poolAuthority.HasKey(vaultSigner) {
		return solana.ErrInvalidArgument
	}

	mint, err := token.ParseMint(poolTokenMint)
	if err != nil {
		return err
	}
	if !bytes.Equal(mint.MintAuthority, vaultSigner) {
		return solana.ErrInvalidArgument
	}

	assets := make([]AssetInfo, len(vaults))
	for i, vault := range vaults {
		parsed, err := CheckTokenAccount(vault, nil, vaultSigner)
		if err != nil {
			return err
		}
		for _, existing := range assets[:i] {
			if bytes.Equal(existing.Mint, parsed.Mint) {
				return solana.ErrInvalidArgument
			}
		}

		assets[i] = AssetInfo{
			Mint:         parsed.Mint,
			VaultAddress: vault.Key,
		}
	}

	for _, feeVault := range []*solana.AccountInfo{lqdFeeVault, initializerFeeVault} {
		if _, err := CheckTokenAccount(feeVault, poolTokenMint.Key, nil); err != nil {
			return err
		}
	}

	state := &State{
		PoolTokenMint:       poolTokenMint.Key,
		Assets:              assets,
		VaultSigner:         vaultSigner,
		VaultSignerNonce:    req.VaultSignerNonce,
		Name:                req.PoolName,
		LqdFeeVault:         lqdFeeVault.Key,
		InitializerFeeVault: initializerFeeVault.Key,
		FeeRate:             req.FeeRate,
	}

	if err := p.InitializePool(ctx, state, req); err != nil {
		return err
	}

	return WriteState(poolAccount, state)
}

// Accounts expected by getBasket:
//
//   0. `[]` Pool account
//   1. `[]` Pool token mint
//   2. `[]` Vault for each of the N pool assets
//   3. `[]` Vault signer
//   4. `[writable]` Return buffer, receives the encoded Basket
func getBasket(p Pool, invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, req *GetBasketRequest) error {
	it := solana.NewAccountIterator(accounts)

	poolAccount, err := it.Next()
	if err != nil {
		return err
	}
	state, err := ReadState(programID, poolAccount)
	if err != nil {
		return err
	}

	poolTokenMint, err := it.Next()
	if err != nil {
		return err
	}
	if !poolTokenMint.HasKey(state.PoolTokenMint) {
		return solana.ErrInvalidArgument
	}

	vaults := make([]*solana.AccountInfo, len(state.Assets))
	for i, asset := range state.Assets {
		if vaults[i], err = it.Next(); err != nil {
			return err
		}
		if !vaults[i].HasKey(asset.VaultAddress) {
			return solana.ErrInvalidArgument
		}
	}

	poolAuthority, err := it.Next()
	if err != nil {
		return err
	}
	if !poolAuthority.HasKey(state.VaultSigner) {
		return solana.ErrInvalidArgument
	}

	returnBuffer, err := it.Next()
	if err != nil {
		return err
	}
	if !returnBuffer.IsWritable {
		return solana.ErrInvalidArgument
	}

	ctx := &Context{
		ProgramID:         programID,
		PoolAccount:       poolAccount,
		PoolTokenMint:     poolTokenMint,
		PoolVaultAccounts: vaults,
		PoolAuthority:     poolAuthority,
		VaultSignerNonce:  state.VaultSignerNonce,
		CustomAccounts:    it.Remaining(),
		Invoker:           invoker,
	}

	var basket *Basket
	switch req.Action {
	case ActionCreate:
		basket, err = p.GetCreationBasket(ctx, state, req.Size)
	case ActionRedeem:
		basket, err = p.GetRedemptionBasket(ctx, state, req.Size)
	default:
		return solana.ErrInvalidInstructionData
	}
	if err != nil {
		return err
	}

	encoded := basket.Marshal()
	if len(returnBuffer.Data) < len(encoded) {
		return solana.ErrAccountDataTooSmall
	}
	copy(returnBuffer.Data, encoded)
	return nil
}

// ReadState decodes the state of a pool account owned by programID.
func ReadState(programID ed25519.PublicKey, account *solana.AccountInfo) (*State, error) {
	if !account.IsOwnedBy(programID) {
		return nil, solana.ErrIncorrectProgramID
	}

	var state State
	if err := state.Unmarshal(account.Data); err != nil {
		return nil, solana.ErrInvalidAccountData
	}
	return &state, nil
}

// WriteState persists the state into the pool account. The encoded state
// must fill the account exactly; otherwise nothing is written.
func WriteState(account *solana.AccountInfo, state *State) error {
	encoded := state.Marshal()
	if len(encoded) != len(account.Data) {
		return solana.ErrInvalidAccountData
	}

	copy(account.Data, encoded)
	return nil
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}
