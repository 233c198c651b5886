package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/index-fund/pkg/fund/data/run"
)

func RunTests(t *testing.T, s run.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s run.Store){
		testHappyPath,
		testPendingPerFund,
		testCounting,
		testWorkerQueries,
		testValidation,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s run.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()
		start := time.Now()
		time.Sleep(time.Millisecond)

		record := &run.Record{
			RunId: "run_id",
			Fund:  "fund",
			Admin: "admin",

			State: run.StatePending,
			Step:  run.StepPause,
		}
		cloned := record.Clone()

		_, err := s.Get(ctx, record.RunId)
		assert.Equal(t, run.ErrNotFound, err)
		_, err = s.GetPendingByFund(ctx, record.Fund)
		assert.Equal(t, run.ErrNotFound, err)
		assert.Equal(t, run.ErrNotFound, s.Update(ctx, record))

		require.NoError(t, s.Put(ctx, record))
		assert.True(t, record.Id > 0)
		assert.Equal(t, run.ErrAlreadyExists, s.Put(ctx, record))

		actual, err := s.Get(ctx, record.RunId)
		require.NoError(t, err)
		assert.Equal(t, record.Id, actual.Id)
		assert.True(t, actual.CreatedAt.After(start))
		assert.False(t, actual.UpdatedAt.Before(actual.CreatedAt))
		assertEquivalentRecords(t, &cloned, actual)

		actual, err = s.GetPendingByFund(ctx, record.Fund)
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		created := actual.CreatedAt
		time.Sleep(time.Millisecond)

		record.Step = run.StepUnpause
		cloned = record.Clone()
		require.NoError(t, s.Update(ctx, record))
		assert.Equal(t, created.Unix(), record.CreatedAt.Unix())

		actual, err = s.Get(ctx, record.RunId)
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)
		assert.True(t, actual.UpdatedAt.After(created))

		record.State = run.StateCompleted
		record.Step = run.StepDone
		cloned = record.Clone()
		require.NoError(t, s.Update(ctx, record))

		actual, err = s.Get(ctx, record.RunId)
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		_, err = s.GetPendingByFund(ctx, record.Fund)
		assert.Equal(t, run.ErrNotFound, err)
	})
}

func testPendingPerFund(t *testing.T, s run.Store) {
	t.Run("testPendingPerFund", func(t *testing.T) {
		ctx := context.Background()

		first := &run.Record{RunId: "run1", Fund: "fund1", Admin: "admin", State: run.StatePending, Step: run.StepRebalance}
		require.NoError(t, s.Put(ctx, first))

		second := &run.Record{RunId: "run2", Fund: "fund1", Admin: "admin", State: run.StatePending, Step: run.StepPause}
		assert.Equal(t, run.ErrPendingRunExists, s.Put(ctx, second))

		other := &run.Record{RunId: "run3", Fund: "fund2", Admin: "admin", State: run.StatePending, Step: run.StepPause}
		require.NoError(t, s.Put(ctx, other))

		first.State = run.StateFailed
		first.Error = "exceeded slippage"
		require.NoError(t, s.Update(ctx, first))

		require.NoError(t, s.Put(ctx, second))

		actual, err := s.GetPendingByFund(ctx, "fund1")
		require.NoError(t, err)
		assert.Equal(t, "run2", actual.RunId)

		first.State = run.StatePending
		first.Error = ""
		assert.Equal(t, run.ErrPendingRunExists, s.Update(ctx, first))

		actual, err = s.Get(ctx, "run1")
		require.NoError(t, err)
		assert.Equal(t, run.StateFailed, actual.State)
		assert.Equal(t, "exceeded slippage", actual.Error)
	})
}

func testCounting(t *testing.T, s run.Store) {
	t.Run("testCounting", func(t *testing.T) {
		ctx := context.Background()

		records := []*run.Record{
			{RunId: "run1", Fund: "fund1", Admin: "admin", State: run.StatePending, Step: run.StepPause},
			{RunId: "run2", Fund: "fund2", Admin: "admin", State: run.StatePending, Step: run.StepRebalance},
			{RunId: "run3", Fund: "fund3", Admin: "admin", State: run.StateCompleted, Step: run.StepDone},
			{RunId: "run4", Fund: "fund3", Admin: "admin", State: run.StateCompleted, Step: run.StepDone},
			{RunId: "run5", Fund: "fund3", Admin: "admin", State: run.StateCompleted, Step: run.StepDone},
			{RunId: "run6", Fund: "fund4", Admin: "admin", State: run.StateFailed, Step: run.StepUnpause, Error: "delegate outstanding"},
		}
		for _, record := range records {
			require.NoError(t, s.Put(ctx, record))
		}

		for state, expected := range map[run.State]uint64{
			run.StateUnknown:   0,
			run.StatePending:   2,
			run.StateCompleted: 3,
			run.StateFailed:    1,
		} {
			count, err := s.CountByState(ctx, state)
			require.NoError(t, err)
			assert.EqualValues(t, expected, count, state.String())
		}
	})
}

func testWorkerQueries(t *testing.T, s run.Store) {
	t.Run("testWorkerQueries", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllPending(ctx, 10)
		assert.Equal(t, run.ErrNotFound, err)

		var records []*run.Record
		for i := 0; i < 5; i++ {
			state := run.StatePending
			step := run.StepPause
			if i%2 == 1 {
				state = run.StateCompleted
				step = run.StepDone
			}

			record := &run.Record{
				RunId: fmt.Sprintf("run%d", i),
				Fund:  fmt.Sprintf("fund%d", i),
				Admin: "admin",
				State: state,
				Step:  step,
			}
			require.NoError(t, s.Put(ctx, record))
			records = append(records, record)
		}

		actual, err := s.GetAllPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, actual, 3)
		assertEquivalentRecords(t, records[0], actual[0])
		assertEquivalentRecords(t, records[2], actual[1])
		assertEquivalentRecords(t, records[4], actual[2])

		actual, err = s.GetAllPending(ctx, 2)
		require.NoError(t, err)
		require.Len(t, actual, 2)
		assertEquivalentRecords(t, records[0], actual[0])
		assertEquivalentRecords(t, records[2], actual[1])
	})
}

func testValidation(t *testing.T, s run.Store) {
	t.Run("testValidation", func(t *testing.T) {
		ctx := context.Background()

		for _, invalid := range []*run.Record{
			{Fund: "fund", Admin: "admin", State: run.StatePending, Step: run.StepPause},
			{RunId: "run", Admin: "admin", State: run.StatePending, Step: run.StepPause},
			{RunId: "run", Fund: "fund", State: run.StatePending, Step: run.StepPause},
			{RunId: "run", Fund: "fund", Admin: "admin", Step: run.StepPause},
			{RunId: "run", Fund: "fund", Admin: "admin", State: run.StatePending},
			{RunId: "run", Fund: "fund", Admin: "admin", State: run.StatePending, Step: run.StepDone},
			{RunId: "run", Fund: "fund", Admin: "admin", State: run.StatePending, Step: run.StepPause, Error: "error"},
			{RunId: "run", Fund: "fund", Admin: "admin", State: run.StateCompleted, Step: run.StepUnpause},
			{RunId: "run", Fund: "fund", Admin: "admin", State: run.StateFailed, Step: run.StepRebalance},
			{RunId: "run", Fund: "fund", Admin: "admin", State: run.StateFailed, Step: run.StepDone, Error: "error"},
		} {
			assert.Error(t, invalid.Validate())
			assert.Error(t, s.Put(ctx, invalid))
		}

		_, err := s.Get(ctx, "run")
		assert.Equal(t, run.ErrNotFound, err)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *run.Record) {
	assert.Equal(t, obj1.RunId, obj2.RunId)
	assert.Equal(t, obj1.Fund, obj2.Fund)
	assert.Equal(t, obj1.Admin, obj2.Admin)
	assert.Equal(t, obj1.State, obj2.State)
	assert.Equal(t, obj1.Step, obj2.Step)
	assert.Equal(t, obj1.Error, obj2.Error)
}
