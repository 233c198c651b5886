package rebalancer

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/index-fund/pkg/fund"
	"github.com/code-payments/index-fund/pkg/fund/data/run"
	run_memory "github.com/code-payments/index-fund/pkg/fund/data/run/memory"
	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/sandbox"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

type testAsset struct {
	vaultAmount uint64
	weight      uint32
	reserve     uint64
}

type testEnv struct {
	t      *testing.T
	ctx    context.Context
	ledger *sandbox.Ledger

	program ed25519.PublicKey
	admin   ed25519.PublicKey

	fund        ed25519.PublicKey
	vaultSigner ed25519.PublicKey

	mints  []ed25519.PublicKey
	vaults []ed25519.PublicKey
	swaps  []ed25519.PublicKey

	basicMint  ed25519.PublicKey
	basicVault ed25519.PublicKey

	directory *StaticSwapDirectory
	submitter *testSubmitter
	runs      run.Store
	service   *Service
}

// testSubmitter submits to the ledger, after failing the next failures
// submissions with err.
type testSubmitter struct {
	client *sandbox.Client

	mu        sync.Mutex
	failures  int
	err       error
	submitted []solana.Instruction
}

func (s *testSubmitter) Submit(ctx context.Context, instructions ...solana.Instruction) error {
	s.mu.Lock()
	s.submitted = append(s.submitted, instructions...)
	if s.failures > 0 {
		s.failures--
		s.mu.Unlock()
		return s.err
	}
	s.mu.Unlock()

	return s.client.Submit(ctx, instructions...)
}

func (s *testSubmitter) failNext(failures int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = failures
	s.err = err
}

func (s *testSubmitter) submittedTypes(t *testing.T) []fund.InstructionType {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []fund.InstructionType
	for _, instruction := range s.submitted {
		decoded, err := fund.DecodeInstruction(instruction.Data)
		require.NoError(t, err)
		res = append(res, decoded.Type)
	}
	return res
}

// setupTestEnv initializes a fund with divider 10 and no reference asset
// holdings, whose first asset is 10_000 over its target.
func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithAssets(t, 10, []testAsset{
		{vaultAmount: 30_000, weight: 4, reserve: 1_000_000_000},
		{vaultAmount: 100_000, weight: 21, reserve: 1_000_000_000},
		{vaultAmount: 100_000, weight: 21, reserve: 1_000_000_000},
	})
}

func setupTestEnvWithAssets(t *testing.T, slippageDivider uint64, assets []testAsset) *testEnv {
	keys := generateKeys(t, 9)

	env := &testEnv{
		t:          t,
		ctx:        context.Background(),
		ledger:     sandbox.NewLedger(),
		program:    keys[0],
		admin:      keys[1],
		fund:       keys[2],
		basicMint:  keys[3],
		basicVault: keys[4],
		directory:  NewStaticSwapDirectory(),
		runs:       run_memory.New(),
	}
	poolMint, initialSupply, lqdFee, initFee := keys[5], keys[6], keys[7], keys[8]

	var nonce uint8
	var err error
	env.vaultSigner, nonce, err = solana.FindProgramAddressAndBump(env.program, env.fund)
	require.NoError(t, err)

	name := "Rebalanced fund"
	env.ledger.RegisterProgram(env.program, fund.NewProgram())
	env.ledger.CreateSystemAccount(env.admin, system.DefaultRent().MinimumBalance(0))
	env.ledger.AllocateAccount(env.fund, env.program, fund.CalcLen(name, len(assets)))
	env.ledger.CreateMint(poolMint, env.vaultSigner, 6, 0)
	env.ledger.CreateMint(env.basicMint, env.admin, 6, 0)
	env.ledger.CreateTokenAccount(env.basicVault, env.basicMint, env.vaultSigner, 0)
	env.ledger.CreateTokenAccount(initialSupply, poolMint, env.vaultSigner, 0)
	env.ledger.CreateTokenAccount(lqdFee, poolMint, env.admin, 0)
	env.ledger.CreateTokenAccount(initFee, poolMint, env.admin, 0)

	weights := make([]uint32, len(assets))
	for i, asset := range assets {
		assetKeys := generateKeys(t, 2)
		mint, vault := assetKeys[0], assetKeys[1]

		env.ledger.CreateMint(mint, env.admin, 6, 0)
		env.ledger.CreateTokenAccount(vault, mint, env.vaultSigner, asset.vaultAmount)

		swap, err := env.ledger.CreateSwapPool(tokenswap.ProgramKey, mint, env.basicMint, asset.reserve, asset.reserve, tokenswap.Fees{})
		require.NoError(t, err)
		env.directory.Add(mint, env.basicMint, swap.Swap)

		env.mints = append(env.mints, mint)
		env.vaults = append(env.vaults, vault)
		env.swaps = append(env.swaps, swap.Swap)
		weights[i] = asset.weight
	}

	client := sandbox.NewClient(env.ledger, env.admin)
	require.NoError(t, client.Submit(env.ctx, fund.NewInitializeInstruction(
		env.program,
		&fund.InitializeInstructionAccounts{
			Pool:                env.fund,
			PoolMint:            poolMint,
			Vaults:              env.vaults,
			VaultSigner:         env.vaultSigner,
			LqdFeeVault:         lqdFee,
			InitializerFeeVault: initFee,
			Admin:               env.admin,
			InitialSupply:       initialSupply,
			BasicVault:          env.basicVault,
		},
		&fund.InitializeInstructionArgs{
			VaultSignerNonce: nonce,
			Name:             name,
			FeeRate:          2500,
			Data: fund.InitializeFundData{
				SlippageDivider:        slippageDivider,
				AssetWeights:           weights,
				FundTokenInitialSupply: 1000,
			},
		},
	)))

	env.submitter = &testSubmitter{client: client}
	env.service = New(
		env.program,
		env.submitter,
		client,
		env.directory,
		env.runs,
		withManualTestConfigs(&testOverrides{}),
	)

	return env
}

func (env *testEnv) fundState() *fund.State {
	account, err := env.ledger.GetAccount(env.fund)
	require.NoError(env.t, err)

	state, err := pool.ReadState(env.program, account)
	require.NoError(env.t, err)
	fundState, err := fund.ReadState(state)
	require.NoError(env.t, err)

	return fundState
}

func (env *testEnv) balance(key ed25519.PublicKey) uint64 {
	account, err := env.ledger.GetTokenAccount(key)
	require.NoError(env.t, err)
	return account.Amount
}

func (env *testEnv) pause() {
	require.NoError(env.t, env.ledger.Process([]ed25519.PublicKey{env.admin}, fund.NewPauseInstruction(env.program, &fund.PauseInstructionAccounts{
		Pool:  env.fund,
		Admin: env.admin,
	})))
}

// putPendingRun checkpoints a run as if it was interrupted before step.
func (env *testEnv) putPendingRun(runId string, step run.Step) *run.Record {
	record := &run.Record{
		RunId: runId,
		Fund:  base58.Encode(env.fund),
		Admin: base58.Encode(env.admin),
		State: run.StatePending,
		Step:  step,
	}
	require.NoError(env.t, env.runs.Put(env.ctx, record))
	return record
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
