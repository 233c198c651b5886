package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/index-fund/pkg/fund/data/run"
	"github.com/code-payments/index-fund/pkg/metrics"
)

const metricsStructName = "run.postgres.store"

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed run.Store
func New(db *sql.DB) run.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Put implements run.Store.Put
func (s *store) Put(ctx context.Context, record *run.Record) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Put")
	defer tracer.End()

	obj, err := toModel(record)
	if err != nil {
		return err
	}

	err = obj.dbPut(ctx, s.db)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	res := fromModel(obj)
	res.CopyTo(record)

	return nil
}

// Update implements run.Store.Update
func (s *store) Update(ctx context.Context, record *run.Record) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Update")
	defer tracer.End()

	obj, err := toModel(record)
	if err != nil {
		return err
	}

	err = obj.dbUpdate(ctx, s.db)
	if err != nil {
		tracer.OnError(err)
		return err
	}

	res := fromModel(obj)
	res.CopyTo(record)

	return nil
}

// Get implements run.Store.Get
func (s *store) Get(ctx context.Context, runId string) (*run.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Get")
	defer tracer.End()

	model, err := dbGetByRunId(ctx, s.db, runId)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// GetPendingByFund implements run.Store.GetPendingByFund
func (s *store) GetPendingByFund(ctx context.Context, fund string) (*run.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetPendingByFund")
	defer tracer.End()

	model, err := dbGetPendingByFund(ctx, s.db, fund)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// GetAllPending implements run.Store.GetAllPending
func (s *store) GetAllPending(ctx context.Context, limit uint64) ([]*run.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "GetAllPending")
	defer tracer.End()

	models, err := dbGetAllPending(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}

	var res []*run.Record
	for _, model := range models {
		res = append(res, fromModel(model))
	}
	return res, nil
}

// CountByState implements run.Store.CountByState
func (s *store) CountByState(ctx context.Context, state run.State) (uint64, error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "CountByState")
	defer tracer.End()

	return dbCountByState(ctx, s.db, state)
}
