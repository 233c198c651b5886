package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/code-payments/index-fund/pkg/database/postgres"
	"github.com/code-payments/index-fund/pkg/fund/data/run"
)

const (
	tableName = "fund__core_rebalancerun"

	// Partial unique index over (fund) for pending runs
	pendingFundIndexName = "fund__core_rebalancerun__uniq__pending__fund"

	allColumns = `id, run_id, fund, admin, state, step, error, created_at, updated_at`
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	RunId string `db:"run_id"`
	Fund  string `db:"fund"`
	Admin string `db:"admin"`

	State uint8  `db:"state"`
	Step  uint8  `db:"step"`
	Error string `db:"error"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toModel(obj *run.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		RunId: obj.RunId,
		Fund:  obj.Fund,
		Admin: obj.Admin,

		State: uint8(obj.State),
		Step:  uint8(obj.Step),
		Error: obj.Error,

		CreatedAt: obj.CreatedAt,
		UpdatedAt: obj.UpdatedAt,
	}, nil
}

func fromModel(obj *model) *run.Record {
	return &run.Record{
		Id: uint64(obj.Id.Int64),

		RunId: obj.RunId,
		Fund:  obj.Fund,
		Admin: obj.Admin,

		State: run.State(obj.State),
		Step:  run.Step(obj.Step),
		Error: obj.Error,

		CreatedAt: obj.CreatedAt,
		UpdatedAt: obj.UpdatedAt,
	}
}

func (m *model) dbPut(ctx context.Context, db *sqlx.DB) error {
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(run_id, fund, admin, state, step, error, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + allColumns

		now := time.Now()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now

		return tx.QueryRowxContext(
			ctx,
			query,
			m.RunId,
			m.Fund,
			m.Admin,
			m.State,
			m.Step,
			m.Error,
			m.CreatedAt,
			m.UpdatedAt,
		).StructScan(m)
	})
	err = pgutil.CheckUniqueViolationOnConstraint(err, pendingFundIndexName, run.ErrPendingRunExists)
	return pgutil.CheckUniqueViolation(err, run.ErrAlreadyExists)
}

func (m *model) dbUpdate(ctx context.Context, db *sqlx.DB) error {
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `UPDATE ` + tableName + `
			SET state = $2, step = $3, error = $4, updated_at = $5
			WHERE run_id = $1
			RETURNING ` + allColumns

		return tx.QueryRowxContext(
			ctx,
			query,
			m.RunId,
			m.State,
			m.Step,
			m.Error,
			time.Now(),
		).StructScan(m)
	})
	err = pgutil.CheckUniqueViolationOnConstraint(err, pendingFundIndexName, run.ErrPendingRunExists)
	return pgutil.CheckNoRows(err, run.ErrNotFound)
}

func dbGetByRunId(ctx context.Context, db *sqlx.DB, runId string) (*model, error) {
	var res model
	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE run_id = $1
	`

	err := db.GetContext(ctx, &res, query, runId)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, run.ErrNotFound)
	}
	return &res, nil
}

func dbGetPendingByFund(ctx context.Context, db *sqlx.DB, fund string) (*model, error) {
	var res model
	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE fund = $1 AND state = $2
	`

	err := db.GetContext(ctx, &res, query, fund, run.StatePending)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, run.ErrNotFound)
	}
	return &res, nil
}

func dbGetAllPending(ctx context.Context, db *sqlx.DB, limit uint64) ([]*model, error) {
	res := []*model{}

	query := `SELECT ` + allColumns + ` FROM ` + tableName + `
		WHERE state = $1
		ORDER BY id ASC
		LIMIT $2
	`

	err := db.SelectContext(ctx, &res, query, run.StatePending, limit)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, run.ErrNotFound)
	} else if len(res) == 0 {
		return nil, run.ErrNotFound
	}
	return res, nil
}

func dbCountByState(ctx context.Context, db *sqlx.DB, state run.State) (uint64, error) {
	var res uint64
	query := `SELECT COUNT(*) FROM ` + tableName + `
		WHERE state = $1
	`

	err := db.GetContext(ctx, &res, query, state)
	if err != nil {
		return 0, err
	}
	return res, nil
}
