package rebalancer

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/index-fund/pkg/fund"
	"github.com/code-payments/index-fund/pkg/fund/data/run"
	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/rate"
	"github.com/code-payments/index-fund/pkg/retry"
	"github.com/code-payments/index-fund/pkg/retry/backoff"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
	sync_util "github.com/code-payments/index-fund/pkg/sync"
)

var (
	ErrRunInProgress = errors.New("fund has a rebalance run in progress")
	ErrRunNotPending = errors.New("rebalance run is not pending")
	ErrRateLimited   = errors.New("fund rebalance rate exceeded")
)

// Program rejections that resubmitting the same instruction cannot fix.
var nonRetriableInstructionErrors = []solana.InstructionErrorKey{
	solana.InstructionErrorInvalidArgument,
	solana.InstructionErrorInvalidInstructionData,
	solana.InstructionErrorInvalidAccountData,
	solana.InstructionErrorIncorrectProgramID,
	solana.InstructionErrorMissingRequiredSignature,
	solana.InstructionErrorNotEnoughAccountKeys,
	solana.InstructionErrorUninitializedAccount,
}

// Submitter signs and sends instructions as a single transaction, returning
// once it is confirmed or rejected.
type Submitter interface {
	Submit(ctx context.Context, instructions ...solana.Instruction) error
}

// AccountReader reads the latest state of an account.
type AccountReader interface {
	GetAccount(ctx context.Context, key ed25519.PublicKey) (*solana.AccountInfo, error)
}

// Service drives a fund through pause, rebalance and unpause, checkpointing
// each step so an interrupted run can be resumed.
type Service struct {
	log  *logrus.Entry
	conf *conf

	program     ed25519.PublicKey
	swapProgram ed25519.PublicKey

	submitter Submitter
	accounts  AccountReader
	swaps     SwapDirectory
	runs      run.Store

	limiter   rate.Limiter
	retrier   retry.Retrier
	fundLocks *sync_util.StripedLock // todo: distributed lock
}

type Option func(s *Service)

// WithSwapProgram routes rebalances through an AMM program other than the
// token-swap program.
func WithSwapProgram(program ed25519.PublicKey) Option {
	return func(s *Service) {
		s.swapProgram = program
	}
}

// WithRateLimiter limits how often a fund may start a new run, replacing the
// configured limit.
func WithRateLimiter(limiter rate.Limiter) Option {
	return func(s *Service) {
		s.limiter = limiter
	}
}

func New(
	program ed25519.PublicKey,
	submitter Submitter,
	accounts AccountReader,
	swaps SwapDirectory,
	runs run.Store,
	configProvider ConfigProvider,
	opts ...Option,
) *Service {
	s := &Service{
		log:         logrus.StandardLogger().WithField("service", "fund_rebalancer"),
		conf:        configProvider(),
		program:     program,
		swapProgram: tokenswap.ProgramKey,
		submitter:   submitter,
		accounts:    accounts,
		swaps:       swaps,
		runs:        runs,
		fundLocks:   sync_util.NewStripedLock(1024),
	}
	if s.conf.runsPerHour > 0 {
		s.limiter = rate.NewLocalRateLimiter(xrate.Limit(s.conf.runsPerHour/3600), s.conf.runBurst)
	} else {
		s.limiter = &rate.NoLimiter{}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.retrier = retry.NewRetrier(
		retry.Limit(s.conf.maxSubmitAttempts),
		retry.NonRetriableErrors(context.Canceled, context.DeadlineExceeded, ErrMarketNotFound, ErrInvalidMarket),
		retry.NonRetriableInstructionErrors(nonRetriableInstructionErrors...),
		retry.BackoffWithJitter(backoff.BinaryExponential(s.conf.submitBackoff), s.conf.maxSubmitBackoff, 0.1),
	)

	return s
}

// Rebalance starts a new run for the fund, and returns it once it reached a
// terminal state. The returned record reflects the last checkpoint even when
// an error is returned.
//
// ErrRunInProgress is returned if the fund already has a pending run, and
// ErrRateLimited if the fund started too many runs recently. Only calls that
// get past the pending run check count against the rate limit.
func (s *Service) Rebalance(ctx context.Context, fundKey, admin ed25519.PublicKey) (*run.Record, error) {
	log := s.log.WithFields(logrus.Fields{
		"method": "Rebalance",
		"fund":   base58.Encode(fundKey),
		"admin":  base58.Encode(admin),
	})

	unlock := s.fundLocks.Lock(fundKey)
	defer unlock()

	_, err := s.runs.GetPendingByFund(ctx, base58.Encode(fundKey))
	if err == nil {
		return nil, ErrRunInProgress
	} else if err != run.ErrNotFound {
		log.WithError(err).Warn("failure checking for pending run")
		return nil, errors.Wrap(err, "failed to check for pending run")
	}

	if !s.limiter.Allow(base58.Encode(fundKey)) {
		log.Debug("rebalance rate limited")
		return nil, ErrRateLimited
	}

	record := &run.Record{
		RunId: uuid.NewString(),
		Fund:  base58.Encode(fundKey),
		Admin: base58.Encode(admin),

		State: run.StatePending,
		Step:  run.StepPause,
	}
	err = s.runs.Put(ctx, record)
	if err == run.ErrPendingRunExists {
		return nil, ErrRunInProgress
	} else if err != nil {
		log.WithError(err).Warn("failure creating run")
		return nil, errors.Wrap(err, "failed to create run")
	}

	log.WithField("run", record.RunId).Info("starting rebalance run")

	return record, s.execute(ctx, log.WithField("run", record.RunId), record, fundKey, admin)
}

// Resume continues a pending run from its last checkpoint.
//
// ErrRunNotPending is returned, along with the run, if the run already
// reached a terminal state.
func (s *Service) Resume(ctx context.Context, runId string) (*run.Record, error) {
	return s.resume(ctx, runId, true)
}

func (s *Service) resume(ctx context.Context, runId string, wait bool) (*run.Record, error) {
	log := s.log.WithFields(logrus.Fields{
		"method": "Resume",
		"run":    runId,
	})

	record, err := s.runs.Get(ctx, runId)
	if err != nil {
		return nil, err
	}

	fundKey, err := base58.Decode(record.Fund)
	if err != nil || len(fundKey) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid fund address: %s", record.Fund)
	}
	admin, err := base58.Decode(record.Admin)
	if err != nil || len(admin) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid admin address: %s", record.Admin)
	}

	if wait {
		defer s.fundLocks.Lock(fundKey)()
	} else {
		unlock, ok := s.fundLocks.TryLock(fundKey)
		if !ok {
			return nil, ErrRunInProgress
		}
		defer unlock()
	}

	// The run may have progressed while waiting on the lock.
	record, err = s.runs.Get(ctx, runId)
	if err != nil {
		return nil, err
	}
	if record.State != run.StatePending {
		return record, ErrRunNotPending
	}

	log = log.WithField("fund", record.Fund)
	log.WithField("step", record.Step.String()).Info("resuming rebalance run")

	return record, s.execute(ctx, log, record, fundKey, admin)
}

func (s *Service) execute(ctx context.Context, log *logrus.Entry, record *run.Record, fundKey, admin ed25519.PublicKey) error {
	for record.Step != run.StepDone {
		step := record.Step
		log := log.WithField("step", step.String())

		start := time.Now()
		attempts, err := s.retrier.Retry(ctx, func(ctx context.Context) error {
			instruction, err := s.buildInstruction(ctx, step, fundKey, admin)
			if err != nil {
				return err
			}
			return s.submitter.Submit(ctx, instruction)
		})
		recordStepDuration(ctx, step, time.Since(start))

		if err != nil && ctx.Err() != nil {
			// Left pending for a later resume.
			log.WithError(err).Info("rebalance run interrupted")
			return err
		}

		if err != nil {
			log.WithError(err).WithField("attempts", attempts).Warn("rebalance run step failed")

			record.State = run.StateFailed
			record.Error = err.Error()
			if updateErr := s.runs.Update(ctx, record); updateErr != nil {
				log.WithError(updateErr).Warn("failure checkpointing failed run")
			} else {
				recordRunEvent(ctx, record)
			}

			return errors.Wrapf(err, "failed to submit %s instruction", step.String())
		}

		record.Step = nextStep(step)
		if record.Step == run.StepDone {
			record.State = run.StateCompleted
		}
		if err := s.runs.Update(ctx, record); err != nil {
			log.WithError(err).Warn("failure checkpointing run")
			return errors.Wrap(err, "failed to checkpoint run")
		}

		log.WithField("attempts", attempts).Debug("rebalance run step submitted")
	}

	recordRunEvent(ctx, record)
	log.Info("rebalance run completed")
	return nil
}

func nextStep(step run.Step) run.Step {
	switch step {
	case run.StepPause:
		return run.StepRebalance
	case run.StepRebalance:
		return run.StepUnpause
	default:
		return run.StepDone
	}
}

func (s *Service) buildInstruction(ctx context.Context, step run.Step, fundKey, admin ed25519.PublicKey) (solana.Instruction, error) {
	if step == run.StepPause {
		return fund.NewPauseInstruction(s.program, &fund.PauseInstructionAccounts{
			Pool:  fundKey,
			Admin: admin,
		}), nil
	}

	state, fundState, err := s.getFund(ctx, fundKey)
	if err != nil {
		return solana.Instruction{}, err
	}

	vaults := make([]ed25519.PublicKey, len(state.Assets))
	for i, asset := range state.Assets {
		vaults[i] = asset.VaultAddress
	}

	switch step {
	case run.StepRebalance:
		markets := make([]fund.Market, len(state.Assets))
		for i, asset := range state.Assets {
			swap, err := s.swaps.GetSwap(ctx, asset.Mint, fundState.BasicAsset.Mint)
			if err != nil {
				return solana.Instruction{}, errors.Wrapf(err, "failed to locate market of %s", base58.Encode(asset.Mint))
			}

			market, err := ResolveMarket(ctx, s.accounts, s.swapProgram, swap, asset.Mint, fundState.BasicAsset.Mint)
			if err != nil {
				return solana.Instruction{}, err
			}
			markets[i] = *market
		}

		return fund.NewRebalanceInstruction(s.program, &fund.RebalanceInstructionAccounts{
			Pool:        fundKey,
			Admin:       admin,
			Vaults:      vaults,
			VaultSigner: state.VaultSigner,
			BasicVault:  fundState.BasicAsset.VaultAddress,
			Markets:     markets,
			SwapProgram: s.swapProgram,
		}), nil
	case run.StepUnpause:
		return fund.NewUnpauseInstruction(s.program, &fund.UnpauseInstructionAccounts{
			Pool:   fundKey,
			Admin:  admin,
			Vaults: vaults,
		}), nil
	}

	return solana.Instruction{}, errors.Errorf("no instruction for step %s", step.String())
}

func (s *Service) getFund(ctx context.Context, fundKey ed25519.PublicKey) (*pool.State, *fund.State, error) {
	account, err := s.accounts.GetAccount(ctx, fundKey)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get fund account")
	}

	state, err := pool.ReadState(s.program, account)
	if err != nil {
		return nil, nil, err
	}
	fundState, err := fund.ReadState(state)
	if err != nil {
		return nil, nil, err
	}
	return state, fundState, nil
}
