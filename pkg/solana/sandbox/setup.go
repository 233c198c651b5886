package sandbox

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/token"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

// CreateSystemAccount creates a data-less account holding lamports.
func (l *Ledger) CreateSystemAccount(key ed25519.PublicKey, lamports uint64) {
	l.SetAccount(&solana.AccountInfo{
		Key:      key,
		Owner:    system.SystemAccount,
		Lamports: lamports,
	})
}

// AllocateAccount creates a zeroed, rent exempt account owned by program.
func (l *Ledger) AllocateAccount(key, program ed25519.PublicKey, size int) {
	l.SetAccount(&solana.AccountInfo{
		Key:      key,
		Owner:    program,
		Lamports: system.DefaultRent().MinimumBalance(size),
		Data:     make([]byte, size),
	})
}

func (l *Ledger) CreateMint(key, authority ed25519.PublicKey, decimals uint8, supply uint64) {
	mint := &token.Mint{
		MintAuthority: authority,
		Supply:        supply,
		Decimals:      decimals,
		IsInitialized: true,
	}

	l.SetAccount(&solana.AccountInfo{
		Key:      key,
		Owner:    token.ProgramKey,
		Lamports: system.DefaultRent().MinimumBalance(token.MintSize),
		Data:     mint.Marshal(),
	})
}

func (l *Ledger) CreateTokenAccount(key, mint, owner ed25519.PublicKey, amount uint64) {
	account := &token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.AccountStateInitialized,
	}

	l.SetAccount(&solana.AccountInfo{
		Key:      key,
		Owner:    token.ProgramKey,
		Lamports: system.DefaultRent().MinimumBalance(token.AccountSize),
		Data:     account.Marshal(),
	})
}

// GetTokenAccount returns the decoded token account at key.
func (l *Ledger) GetTokenAccount(key ed25519.PublicKey) (*token.Account, error) {
	info, err := l.GetAccount(key)
	if err != nil {
		return nil, err
	}
	return token.ParseAccount(info)
}

func (l *Ledger) GetMint(key ed25519.PublicKey) (*token.Mint, error) {
	info, err := l.GetAccount(key)
	if err != nil {
		return nil, err
	}
	return token.ParseMint(info)
}

// SwapPool is a constant product token-swap pool created on the ledger.
type SwapPool struct {
	Program   ed25519.PublicKey
	Swap      ed25519.PublicKey
	Authority ed25519.PublicKey
	Info      *tokenswap.SwapInfo
}

// CreateSwapPool creates an initialized constant product pool holding
// amountA of mintA and amountB of mintB, hosted by program.
func (l *Ledger) CreateSwapPool(program, mintA, mintB ed25519.PublicKey, amountA, amountB uint64, fees tokenswap.Fees) (*SwapPool, error) {
	keys, err := generateKeys(5)
	if err != nil {
		return nil, err
	}
	swap := keys[0]

	authority, bump, err := solana.FindProgramAddressAndBump(program, swap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive swap authority")
	}

	info := &tokenswap.SwapInfo{
		Version:        1,
		IsInitialized:  true,
		BumpSeed:       bump,
		TokenProgramID: token.ProgramKey,
		TokenA:         keys[1],
		TokenB:         keys[2],
		PoolMint:       keys[3],
		TokenAMint:     mintA,
		TokenBMint:     mintB,
		PoolFeeAccount: keys[4],
		Fees:           fees,
		CurveType:      tokenswap.CurveTypeConstantProduct,
	}

	l.SetAccount(&solana.AccountInfo{
		Key:      swap,
		Owner:    program,
		Lamports: system.DefaultRent().MinimumBalance(tokenswap.SwapInfoSize),
		Data:     info.Marshal(),
	})
	l.CreateTokenAccount(info.TokenA, mintA, authority, amountA)
	l.CreateTokenAccount(info.TokenB, mintB, authority, amountB)
	l.CreateMint(info.PoolMint, authority, 2, 0)
	l.CreateTokenAccount(info.PoolFeeAccount, info.PoolMint, authority, 0)

	return &SwapPool{
		Program:   program,
		Swap:      swap,
		Authority: authority,
		Info:      info,
	}, nil
}

func generateKeys(amount int) ([]ed25519.PublicKey, error) {
	keys := make([]ed25519.PublicKey, amount)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate key")
		}
		keys[i] = pub
	}
	return keys, nil
}
