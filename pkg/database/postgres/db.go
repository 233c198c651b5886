package pg

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type txContextKey struct{}

type txContext struct {
	tx        *sqlx.Tx
	isolation sql.IsolationLevel
}

// ErrAlreadyInTx is returned when a transaction is started within the scope
// of another one.
var ErrAlreadyInTx = errors.New("already executing in existing db tx")

// ExecuteTxWithinCtx runs fn within a new transaction carried by the
// context passed to it. Store calls made with that context join the
// transaction. It is committed if fn succeeds and rolled back otherwise.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	if ctx.Value(txContextKey{}) != nil {
		return ErrAlreadyInTx
	}

	isolation = normalizeIsolation(isolation)
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	err = fn(context.WithValue(ctx, txContextKey{}, &txContext{tx: tx, isolation: isolation}))
	return finish(tx, err)
}

// ExecuteInTx runs fn within the transaction carried by ctx, or within a
// new one if there is none. Commit and rollback are left to whoever started
// the transaction.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = normalizeIsolation(isolation)

	if existing, ok := ctx.Value(txContextKey{}).(*txContext); ok {
		if existing.isolation < isolation {
			return errors.Errorf("existing tx isolation %s is weaker than %s", existing.isolation, isolation)
		}
		return fn(existing.tx)
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}
	return finish(tx, fn(tx))
}

func finish(tx *sqlx.Tx, err error) error {
	if err != nil {
		// A rollback is always needed to release the connection.
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}

func normalizeIsolation(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted // Postgres default
	}
	return isolation
}
