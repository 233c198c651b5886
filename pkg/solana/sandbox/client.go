package sandbox

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/index-fund/pkg/solana"
)

// Client submits instructions to a ledger on behalf of a fixed set of signers.
type Client struct {
	ledger  *Ledger
	signers []ed25519.PublicKey
}

// NewClient returns a client whose transactions are signed by signers.
func NewClient(ledger *Ledger, signers ...ed25519.PublicKey) *Client {
	return &Client{
		ledger:  ledger,
		signers: signers,
	}
}

// Submit processes the instructions as a single transaction.
func (c *Client) Submit(ctx context.Context, instructions ...solana.Instruction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.ledger.Process(c.signers, instructions...)
}

// GetAccount returns a copy of the account at key.
func (c *Client) GetAccount(ctx context.Context, key ed25519.PublicKey) (*solana.AccountInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.ledger.GetAccount(key)
}
