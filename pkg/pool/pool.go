package pool

import (
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
)

// Pool is implemented by programs built on the pool framework. The framework
// handles request routing and account resolution, and defers to the pool
// for its own state and for any instruction that is not a pool request.
type Pool interface {
	// InitializePool populates the custom parts of a new pool's state. The
	// framework persists state after the hook returns.
	InitializePool(ctx *Context, state *State, request *InitializeRequest) error

	GetCreationBasket(ctx *Context, state *State, size uint64) (*Basket, error)

	GetRedemptionBasket(ctx *Context, state *State, size uint64) (*Basket, error)

	// ProcessForeignInstruction handles instruction data that is not
	// addressed to the framework.
	ProcessForeignInstruction(invoker solana.Invoker, programID ed25519.PublicKey, accounts []*solana.AccountInfo, data []byte) error
}
