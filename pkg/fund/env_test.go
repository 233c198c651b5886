package fund

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/sandbox"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

type testAsset struct {
	vaultAmount  uint64
	weight       uint32
	assetReserve uint64
	basicReserve uint64
}

type testFund struct {
	t      *testing.T
	ledger *sandbox.Ledger

	program ed25519.PublicKey
	admin   ed25519.PublicKey

	pool        ed25519.PublicKey
	poolMint    ed25519.PublicKey
	vaultSigner ed25519.PublicKey
	nonce       uint8

	mints  []ed25519.PublicKey
	vaults []ed25519.PublicKey

	basicMint  ed25519.PublicKey
	basicVault ed25519.PublicKey

	initialSupply ed25519.PublicKey
	lqdFee        ed25519.PublicKey
	initFee       ed25519.PublicKey

	markets []Market

	// Instructions the fund program invoked, in order.
	invocations []solana.Instruction
}

type recordingInvoker struct {
	solana.Invoker
	fund *testFund
}

func (r *recordingInvoker) InvokeSigned(instruction solana.Instruction, accounts []*solana.AccountInfo, signerSeeds ...[][]byte) error {
	r.fund.invocations = append(r.fund.invocations, instruction)
	return r.Invoker.InvokeSigned(instruction, accounts, signerSeeds...)
}

// newTestFund sets up the accounts of a fund on a fresh ledger without
// initializing it.
func newTestFund(t *testing.T, name string, basicAmount uint64, assets []testAsset) *testFund {
	keys := generateKeys(t, 9)

	env := &testFund{
		t:             t,
		ledger:        sandbox.NewLedger(),
		program:       keys[0],
		admin:         keys[1],
		pool:          keys[2],
		poolMint:      keys[3],
		basicMint:     keys[4],
		basicVault:    keys[5],
		initialSupply: keys[6],
		lqdFee:        keys[7],
		initFee:       keys[8],
	}

	var err error
	env.vaultSigner, env.nonce, err = solana.FindProgramAddressAndBump(env.program, env.pool)
	require.NoError(t, err)

	processor := NewProgram()
	env.ledger.RegisterProgram(env.program, solana.ProcessorFunc(
		func(invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
			return processor.Process(&recordingInvoker{Invoker: invoker, fund: env}, programID, accounts, data)
		},
	))

	env.ledger.CreateSystemAccount(env.admin, system.DefaultRent().MinimumBalance(0))
	env.ledger.AllocateAccount(env.pool, env.program, CalcLen(name, len(assets)))
	env.ledger.CreateMint(env.poolMint, env.vaultSigner, 6, 0)
	env.ledger.CreateMint(env.basicMint, env.admin, 6, 0)
	env.ledger.CreateTokenAccount(env.basicVault, env.basicMint, env.vaultSigner, basicAmount)
	env.ledger.CreateTokenAccount(env.initialSupply, env.poolMint, env.vaultSigner, 0)
	env.ledger.CreateTokenAccount(env.lqdFee, env.poolMint, env.admin, 0)
	env.ledger.CreateTokenAccount(env.initFee, env.poolMint, env.admin, 0)

	for _, asset := range assets {
		assetKeys := generateKeys(t, 2)
		mint, vault := assetKeys[0], assetKeys[1]

		env.ledger.CreateMint(mint, env.admin, 6, 0)
		env.ledger.CreateTokenAccount(vault, mint, env.vaultSigner, asset.vaultAmount)

		swap, err := env.ledger.CreateSwapPool(tokenswap.ProgramKey, mint, env.basicMint, asset.assetReserve, asset.basicReserve, tokenswap.Fees{})
		require.NoError(t, err)

		env.mints = append(env.mints, mint)
		env.vaults = append(env.vaults, vault)
		env.markets = append(env.markets, Market{
			Swap:         swap.Swap,
			Authority:    swap.Authority,
			AssetReserve: swap.Info.TokenA,
			BasicReserve: swap.Info.TokenB,
			PoolMint:     swap.Info.PoolMint,
			FeeAccount:   swap.Info.PoolFeeAccount,
		})
	}

	return env
}

// newInitializedFund sets up and initializes a fund with an initial supply
// of 1000 fund tokens.
func newInitializedFund(t *testing.T, slippageDivider uint64, basicAmount uint64, assets []testAsset) *testFund {
	env := newTestFund(t, "Test fund", basicAmount, assets)

	weights := make([]uint32, len(assets))
	for i, asset := range assets {
		weights[i] = asset.weight
	}

	require.NoError(t, env.process(env.admin, env.initializeInstruction("Test fund", weights, slippageDivider)))
	env.invocations = nil

	return env
}

func (env *testFund) initializeInstruction(name string, weights []uint32, slippageDivider uint64) solana.Instruction {
	return NewInitializeInstruction(
		env.program,
		&InitializeInstructionAccounts{
			Pool:                env.pool,
			PoolMint:            env.poolMint,
			Vaults:              env.vaults,
			VaultSigner:         env.vaultSigner,
			LqdFeeVault:         env.lqdFee,
			InitializerFeeVault: env.initFee,
			Admin:               env.admin,
			InitialSupply:       env.initialSupply,
			BasicVault:          env.basicVault,
		},
		&InitializeInstructionArgs{
			VaultSignerNonce: env.nonce,
			Name:             name,
			FeeRate:          2500,
			Data: InitializeFundData{
				SlippageDivider:        slippageDivider,
				AssetWeights:           weights,
				FundTokenInitialSupply: 1000,
			},
		},
	)
}

func (env *testFund) process(signer ed25519.PublicKey, instructions ...solana.Instruction) error {
	var signers []ed25519.PublicKey
	if signer != nil {
		signers = append(signers, signer)
	}
	return env.ledger.Process(signers, instructions...)
}

func (env *testFund) pause() error {
	return env.process(env.admin, NewPauseInstruction(env.program, &PauseInstructionAccounts{
		Pool:  env.pool,
		Admin: env.admin,
	}))
}

func (env *testFund) unpause() error {
	return env.process(env.admin, NewUnpauseInstruction(env.program, &UnpauseInstructionAccounts{
		Pool:   env.pool,
		Admin:  env.admin,
		Vaults: env.vaults,
	}))
}

func (env *testFund) rebalanceInstruction() solana.Instruction {
	return NewRebalanceInstruction(env.program, &RebalanceInstructionAccounts{
		Pool:        env.pool,
		Admin:       env.admin,
		Vaults:      env.vaults,
		VaultSigner: env.vaultSigner,
		BasicVault:  env.basicVault,
		Markets:     env.markets,
	})
}

func (env *testFund) poolData() []byte {
	info, err := env.ledger.GetAccount(env.pool)
	require.NoError(env.t, err)
	return info.Data
}

func (env *testFund) state() (*pool.State, *State) {
	var state pool.State
	require.NoError(env.t, state.Unmarshal(env.poolData()))

	fundState, err := ReadState(&state)
	require.NoError(env.t, err)

	return &state, fundState
}

func (env *testFund) balance(key ed25519.PublicKey) uint64 {
	account, err := env.ledger.GetTokenAccount(key)
	require.NoError(env.t, err)
	return account.Amount
}
