package rebalancer

import (
	"context"
	"time"

	"github.com/code-payments/index-fund/pkg/fund/data/run"
	"github.com/code-payments/index-fund/pkg/metrics"
)

// Start resumes pending runs every interval until ctx is done. It never
// starts new runs.
func (s *Service) Start(ctx context.Context, interval time.Duration) error {
	go func() {
		err := s.worker(ctx, interval)
		if err != nil && err != context.Canceled {
			s.log.WithError(err).Warn("rebalance run resume loop terminated unexpectedly")
		}
	}()

	go func() {
		err := s.metricsGaugeWorker(ctx)
		if err != nil && err != context.Canceled {
			s.log.WithError(err).Warn("rebalance run metrics gauge loop terminated unexpectedly")
		}
	}()

	<-ctx.Done()
	return ctx.Err()
}

func (s *Service) worker(ctx context.Context, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		if err := s.resumePending(ctx); err != nil {
			s.log.WithError(err).Warn("failure resuming pending runs")
		}
	}
}

// resumePending resumes one batch of pending runs. Runs locked by another
// caller are left for the next batch.
func (s *Service) resumePending(ctx context.Context) error {
	records, err := s.runs.GetAllPending(ctx, s.conf.resumeBatchSize)
	if err == run.ErrNotFound {
		return nil
	} else if err != nil {
		return err
	}

	for _, record := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		tracedCtx, end := metrics.StartTransaction(ctx, "fund__rebalancer__resume_"+run.StatePending.String())
		_, err := s.resume(tracedCtx, record.RunId, false)
		end(err)

		switch err {
		case nil, ErrRunInProgress, ErrRunNotPending:
		default:
			s.log.WithError(err).WithField("run", record.RunId).Warn("failure resuming run")
		}
	}

	return nil
}
