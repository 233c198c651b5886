// Package sandbox provides an in-memory ledger that executes instructions
// against registered programs, with the transactional semantics of a real
// cluster: instructions in a transaction either all commit or all roll back.
package sandbox

import (
	"bytes"
	"crypto/ed25519"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/system"
	"github.com/code-payments/index-fund/pkg/solana/token"
	"github.com/code-payments/index-fund/pkg/solana/tokenswap"
)

const maxInvokeDepth = 4

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCallDepth       = errors.New("cross-program invocation call depth too deep")
)

// Ledger is an in-memory account store hosting a set of programs.
//
// Programs must mutate account data in place. Account sizes are fixed once
// an account exists.
type Ledger struct {
	log *logrus.Entry

	mu       sync.Mutex
	accounts map[string]*solana.AccountInfo
	programs map[string]solana.Processor
}

// NewLedger returns a ledger hosting the token and token-swap programs.
func NewLedger() *Ledger {
	l := &Ledger{
		log:      logrus.StandardLogger().WithField("type", "solana/sandbox"),
		accounts: make(map[string]*solana.AccountInfo),
		programs: make(map[string]solana.Processor),
	}

	l.RegisterProgram(token.ProgramKey, &TokenProgram{})
	l.RegisterProgram(tokenswap.ProgramKey, &TokenSwapProgram{})

	l.SetAccount(&solana.AccountInfo{
		Key:   system.RentSysVar,
		Owner: system.SysVarOwner,
		Data:  system.DefaultRent().Marshal(),
	})

	return l
}

func (l *Ledger) RegisterProgram(program ed25519.PublicKey, processor solana.Processor) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.programs[string(program)] = processor
	l.accounts[string(program)] = &solana.AccountInfo{
		Key:        append(ed25519.PublicKey{}, program...),
		Owner:      system.SystemAccount,
		Executable: true,
	}
}

// SetAccount creates or replaces an account.
func (l *Ledger) SetAccount(account *solana.AccountInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.accounts[string(account.Key)] = detach(account)
}

func (l *Ledger) GetAccount(key ed25519.PublicKey) (*solana.AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[string(key)]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.Clone(), nil
}

// Process executes the instructions as a single transaction signed by the
// provided keys. If any instruction fails, no account is modified and the
// error is wrapped in a solana.InstructionError.
func (l *Ledger) Process(signers []ed25519.PublicKey, instructions ...solana.Instruction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &transaction{
		ledger:  l,
		signers: signers,
		working: make(map[string]*solana.AccountInfo),
	}

	for i, instruction := range instructions {
		if err := tx.execute(instruction); err != nil {
			l.log.WithError(err).WithFields(logrus.Fields{
				"index":   i,
				"program": base58.Encode(instruction.Program),
			}).Debug("transaction failed")

			return solana.InstructionError{Index: i, Err: err}
		}
	}

	tx.commit()
	return nil
}

type transaction struct {
	ledger  *Ledger
	signers []ed25519.PublicKey

	// Working copies of every account the transaction touched.
	working map[string]*solana.AccountInfo
}

func (tx *transaction) load(key ed25519.PublicKey) *solana.AccountInfo {
	if account, ok := tx.working[string(key)]; ok {
		return account
	}

	var account *solana.AccountInfo
	if existing, ok := tx.ledger.accounts[string(key)]; ok {
		account = existing.Clone()
	} else {
		account = &solana.AccountInfo{
			Key:   append(ed25519.PublicKey{}, key...),
			Owner: system.SystemAccount,
		}
	}

	tx.working[string(key)] = account
	return account
}

func (tx *transaction) isSigner(key ed25519.PublicKey) bool {
	for _, signer := range tx.signers {
		if bytes.Equal(signer, key) {
			return true
		}
	}
	return false
}

func (tx *transaction) execute(instruction solana.Instruction) error {
	processor, ok := tx.ledger.programs[string(instruction.Program)]
	if !ok {
		return solana.ErrUnsupportedProgramID
	}

	writable := make(map[string]bool)
	for _, meta := range instruction.Accounts {
		if meta.IsWritable {
			writable[string(meta.PublicKey)] = true
		}
	}

	readonly := make(map[string][]byte)
	accounts := make([]*solana.AccountInfo, len(instruction.Accounts))
	for i, meta := range instruction.Accounts {
		account := tx.load(meta.PublicKey)
		if !writable[string(meta.PublicKey)] {
			readonly[string(meta.PublicKey)] = append([]byte{}, account.Data...)
		}

		view := *account
		view.IsSigner = tx.isSigner(meta.PublicKey)
		view.IsWritable = meta.IsWritable
		accounts[i] = &view
	}

	frame := &invocation{
		tx:      tx,
		program: instruction.Program,
		depth:   1,
	}
	if err := processor.Process(frame, instruction.Program, accounts, instruction.Data); err != nil {
		return err
	}

	for key, data := range readonly {
		if !bytes.Equal(tx.working[key].Data, data) {
			return solana.ErrReadonlyDataModified
		}
	}
	return nil
}

func (tx *transaction) commit() {
	for key, account := range tx.working {
		if _, ok := tx.ledger.accounts[key]; !ok && len(account.Data) == 0 && account.Lamports == 0 {
			continue
		}
		tx.ledger.accounts[key] = detach(account)
	}
}

// invocation is the Invoker handed to a program while it executes.
type invocation struct {
	tx      *transaction
	program ed25519.PublicKey
	depth   int
}

// InvokeSigned implements solana.Invoker.InvokeSigned
func (f *invocation) InvokeSigned(instruction solana.Instruction, accounts []*solana.AccountInfo, signerSeeds ...[][]byte) error {
	if f.depth >= maxInvokeDepth {
		return ErrCallDepth
	}

	processor, ok := f.tx.ledger.programs[string(instruction.Program)]
	if !ok {
		return solana.ErrUnsupportedProgramID
	}

	signers := make([]ed25519.PublicKey, len(signerSeeds))
	for i, seeds := range signerSeeds {
		signer, err := solana.CreateProgramAddress(f.program, seeds...)
		if err != nil {
			return solana.ErrInvalidSeeds
		}
		signers[i] = signer
	}

	callee := make([]*solana.AccountInfo, len(instruction.Accounts))
	for i, meta := range instruction.Accounts {
		caller, ok := solana.FindAccount(accounts, meta.PublicKey)
		if !ok {
			return solana.ErrMissingAccount
		}

		view := *caller
		view.IsSigner = caller.IsSigner || containsKey(signers, meta.PublicKey)
		view.IsWritable = caller.IsWritable && meta.IsWritable
		if meta.IsSigner && !view.IsSigner {
			return solana.ErrMissingRequiredSignature
		}
		callee[i] = &view
	}

	child := &invocation{
		tx:      f.tx,
		program: instruction.Program,
		depth:   f.depth + 1,
	}
	return processor.Process(child, instruction.Program, callee, instruction.Data)
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}

func detach(account *solana.AccountInfo) *solana.AccountInfo {
	stored := account.Clone()
	stored.IsSigner = false
	stored.IsWritable = false
	return stored
}
