package rebalancer

import (
	"context"
	"time"

	"github.com/code-payments/index-fund/pkg/fund/data/run"
	"github.com/code-payments/index-fund/pkg/metrics"
)

const (
	runEventName          = "FundRebalanceRun"
	runCountEventName     = "FundRebalanceRunCountPollingCheck"
	pendingRunsMetricName = "FundRebalancer/PendingRuns"
	stepDurationPrefix    = "FundRebalancer/StepDuration/"
)

func (s *Service) metricsGaugeWorker(ctx context.Context) error {
	delay := time.Second

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			start := time.Now()

			s.recordRunCountEvents(ctx)

			delay = time.Second - time.Since(start)
		}
	}
}

func (s *Service) recordRunCountEvents(ctx context.Context) {
	for _, state := range []run.State{run.StatePending, run.StateFailed} {
		count, err := s.runs.CountByState(ctx, state)
		if err != nil {
			continue
		}

		if state == run.StatePending {
			metrics.RecordCount(ctx, pendingRunsMetricName, count)
		}
		metrics.RecordEvent(ctx, runCountEventName, map[string]interface{}{
			"count": count,
			"state": state.String(),
		})
	}
}

func recordRunEvent(ctx context.Context, record *run.Record) {
	metrics.RecordEvent(ctx, runEventName, map[string]interface{}{
		"run":   record.RunId,
		"fund":  record.Fund,
		"state": record.State.String(),
		"step":  record.Step.String(),
		"error": record.Error,
	})
}

func recordStepDuration(ctx context.Context, step run.Step, duration time.Duration) {
	metrics.RecordDuration(ctx, stepDurationPrefix+step.String(), duration)
}
