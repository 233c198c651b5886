package sandbox

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/index-fund/pkg/solana"
	"github.com/code-payments/index-fund/pkg/solana/token"
)

func TestClient(t *testing.T) {
	l := NewLedger()
	keys := mustGenerateKeys(t, 4)
	mint, owner, source, dest := keys[0], keys[1], keys[2], keys[3]

	l.CreateMint(mint, owner, 0, 100)
	l.CreateTokenAccount(source, mint, owner, 100)
	l.CreateTokenAccount(dest, mint, owner, 0)

	ctx := context.Background()

	unsigned := NewClient(l)
	err := unsigned.Submit(ctx, token.Transfer(source, dest, owner, 10))
	assert.True(t, errors.Is(err, solana.ErrMissingRequiredSignature))

	client := NewClient(l, owner)
	require.NoError(t, client.Submit(ctx, token.Transfer(source, dest, owner, 10), token.Transfer(source, dest, owner, 5)))

	info, err := client.GetAccount(ctx, dest)
	require.NoError(t, err)
	var account token.Account
	require.NoError(t, account.Unmarshal(info.Data))
	assert.EqualValues(t, 15, account.Amount)

	_, err = client.GetAccount(ctx, mustGenerateKeys(t, 1)[0])
	assert.Equal(t, ErrAccountNotFound, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Equal(t, context.Canceled, client.Submit(cancelled, token.Transfer(source, dest, owner, 10)))
	_, err = client.GetAccount(cancelled, dest)
	assert.Equal(t, context.Canceled, err)
	assertBalance(t, l, dest, 15)
}
