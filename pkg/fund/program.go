package fund

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

// Program is the index fund program. It implements pool.Pool for the
// framework requests and handles the admin instructions itself.
type Program struct {
	log         *logrus.Entry
	swapProgram ed25519.PublicKey
}

type Option func(p *Program)

// WithSwapProgram configures the AMM program rebalances are routed through.
func WithSwapProgram(program ed25519.PublicKey) Option {
	return func(p *Program) {
		p.swapProgram = program
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(p *Program) {
		p.log = log
	}
}

func NewProgram(opts ...Option) *Program {
	p := &Program{
		log:         logrus.StandardLogger().WithField("type", "fund/program"),
		swapProgram: tokenswap.ProgramKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SwapProgram returns the AMM program rebalances are routed through.
func (p *Program) SwapProgram() ed25519.PublicKey {
	return p.swapProgram
}

// Process implements solana.Processor.Process
func (p *Program) Process(invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	return pool.Process(p, invoker, programID, accounts, data)
}

// ProcessForeignInstruction implements pool.Pool.ProcessForeignInstruction
//
// Every admin instruction starts with the pool account and a signing admin.
// The decoded pool state is mutated by the instruction and persisted once
// it succeeds.
func (p *Program) ProcessForeignInstruction(invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error {
	log := p.log.WithField("method", "ProcessForeignInstruction")

	it := solana.NewAccountIterator(accounts)

	poolAccount, err := it.Next()
	if err != nil {
		return err
	}
	log = log.WithField("pool", base58.Encode(poolAccount.Key))

	state, err := pool.ReadState(programID, poolAccount)
	if err != nil {
		log.WithError(err).Debug("invalid pool account")
		return err
	}

	admin, err := it.Next()
	if err != nil {
		return err
	}
	if !state.IsAdmin(admin.Key) {
		log.Debug("incorrect admin account")
		return solana.ErrInvalidArgument
	}
	if !admin.IsSigner {
		log.Debug("admin account not signer")
		return solana.ErrMissingRequiredSignature
	}

	instruction, err := DecodeInstruction(data)
	if err != nil {
		log.Debug("invalid instruction data")
		return err
	}
	log = log.WithField("instruction", instruction.Type.String())

	fundState, err := ReadState(state)
	if err != nil {
		log.Debug("invalid fund state")
		return err
	}

	switch instruction.Type {
	case InstructionTypePause:
		fundState.Paused = true
	case InstructionTypeUnpause:
		err = p.unpause(log, it, state, fundState)
	case InstructionTypeRebalance:
		err = p.rebalance(log, invoker, poolAccount, it, state, fundState)
	case InstructionTypeApproveDelegate:
		err = p.approveDelegate(log, invoker, poolAccount, it, state, fundState, instruction.Amount)
	case InstructionTypeUpdateFee:
		err = p.updateFee(log, state, instruction.FeeRate)
	case InstructionTypeUpdateAdmin:
		err = p.updateAdmin(log, it, state)
	}
	if err != nil {
		return err
	}

	if err := WriteState(state, fundState); err != nil {
		return err
	}
	if err := pool.WriteState(poolAccount, state); err != nil {
		log.WithFields(logrus.Fields{
			"encoded_len": len(state.Marshal()),
			"account_len": len(poolAccount.Data),
		}).Info("pool account data length mismatch")
		return err
	}

	return nil
}

// Accounts expected by unpause, after the pool and admin:
//
//   0. `[]` Vault for each of the N pool assets
func (p *Program) unpause(log *logrus.Entry, it *solana.AccountIterator, state *pool.State, fundState *State) error {
	for _, asset := range state.Assets {
		vault, err := it.Next()
		if err != nil {
			return err
		}
		if !vault.HasKey(asset.VaultAddress) {
			log.Debug("incorrect vault address")
			return solana.ErrInvalidArgument
		}

		parsed, err := token.ParseAccount(vault)
		if err != nil {
			log.WithError(err).Debug("invalid vault account")
			return err
		}
		if parsed.HasActiveDelegate() {
			log.WithField("vault", base58.Encode(vault.Key)).Info("cannot unpause fund with delegated assets")
			return solana.ErrInvalidArgument
		}
	}

	fundState.Paused = false
	return nil
}

// Accounts expected by approveDelegate, after the pool and admin:
//
//   0. `[writable]` Vault to delegate access to
//   1. `[]` Delegate
//   2. `[]` Vault signer
//   3. `[]` Token program
func (p *Program) approveDelegate(
	log *logrus.Entry,
	invoker solana.Invoker,
	poolAccount *solana.AccountInfo,
	it *solana.AccountIterator,
	state *pool.State,
	fundState *State,
	amount uint64,
) error {
	vault, err := it.Next()
	if err != nil {
		return err
	}
	delegate, err := it.Next()
	if err != nil {
		return err
	}
	vaultSigner, err := it.Next()
	if err != nil {
		return err
	}
	tokenProgram, err := it.Next()
	if err != nil {
		return err
	}

	if _, ok := state.FindAsset(vault.Key); !ok {
		log.Debug("asset not found")
		return solana.ErrInvalidArgument
	}
	if !vaultSigner.HasKey(state.VaultSigner) {
		log.Debug("incorrect vault signer account")
		return solana.ErrInvalidArgument
	}
	if !tokenProgram.HasKey(token.ProgramKey) {
		log.Debug("incorrect token program")
		return solana.ErrInvalidArgument
	}

	fundState.Paused = true

	return invoker.InvokeSigned(
		token.Approve(vault.Key, delegate.Key, state.VaultSigner, amount),
		[]*solana.AccountInfo{vault, delegate, vaultSigner, tokenProgram},
		solana.SignerSeeds(poolAccount.Key, state.VaultSignerNonce),
	)
}

func (p *Program) updateFee(log *logrus.Entry, state *pool.State, feeRate uint32) error {
	if feeRate < pool.MinFeeRate {
		log.WithField("fee_rate", feeRate).Debug("fee too low")
		return solana.ErrInvalidArgument
	}
	if feeRate >= pool.FeeRateDenominator {
		log.WithField("fee_rate", feeRate).Debug("fee too high")
		return solana.ErrInvalidArgument
	}

	state.FeeRate = feeRate
	return nil
}

// Accounts expected by updateAdmin, after the pool and admin:
//
//   0. `[signer]` New admin
func (p *Program) updateAdmin(log *logrus.Entry, it *solana.AccountIterator, state *pool.State) error {
	newAdmin, err := it.Next()
	if err != nil {
		return err
	}
	if !newAdmin.IsSigner {
		log.Debug("new admin account not signer")
		return solana.ErrMissingRequiredSignature
	}

	state.AdminKey = append(ed25519.PublicKey{}, newAdmin.Key...)
	return nil
}
