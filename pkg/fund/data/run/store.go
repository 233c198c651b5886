package run

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrNotFound         = errors.New("rebalance run not found")
	ErrAlreadyExists    = errors.New("rebalance run already exists")
	ErrPendingRunExists = errors.New("fund already has a pending rebalance run")
)

type Store interface {
	// Put creates a rebalance run record
	//
	// Returns ErrAlreadyExists if a record already exists, and
	// ErrPendingRunExists if the record is pending and the fund already has
	// a pending run.
	Put(ctx context.Context, record *Record) error

	// Update updates the state, step and error of a rebalance run record
	//
	// Returns ErrNotFound if no record exists.
	Update(ctx context.Context, record *Record) error

	// Get finds the rebalance run record for a given run ID
	//
	// Returns ErrNotFound if no record is found.
	Get(ctx context.Context, runId string) (*Record, error)

	// GetPendingByFund finds the pending rebalance run of a fund
	//
	// Returns ErrNotFound if no record is found.
	GetPendingByFund(ctx context.Context, fund string) (*Record, error)

	// GetAllPending gets up to limit pending records, oldest first.
	//
	// Returns ErrNotFound if no record is found.
	//
	// Note: No traditional pagination since it's expected the state
	//       transitions to a terminal value.
	GetAllPending(ctx context.Context, limit uint64) ([]*Record, error)

	// CountByState counts all rebalance run records in a provided state
	CountByState(ctx context.Context, state State) (uint64, error)
}
