package retry

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/code-payments/index-fund/pkg/retry/backoff"
	"github.com/code-payments/index-fund/pkg/solana"
)

func TestLimit(t *testing.T) {
	ctx := context.Background()
	strategy := Limit(2)

	// One iteration has been executed. Try again.
	assert.True(t, strategy(ctx, 1, errors.New("test")))
	// Two iterations have been executed. Do not try again.
	assert.False(t, strategy(ctx, 2, errors.New("test")))

	counter, err := Retry(ctx, func(_ context.Context) error {
		return errors.New("test")
	}, Limit(2))

	assert.EqualError(t, err, "test")
	assert.Equal(t, uint(2), counter)
}

func TestRetriableErrors(t *testing.T) {
	ctx := context.Background()
	retriableErrors := []error{
		errors.New("retriableA"),
		errors.New("retriableB"),
	}

	strategy := RetriableErrors(retriableErrors...)
	for _, err := range retriableErrors {
		assert.True(t, strategy(ctx, 1, err))
		assert.True(t, strategy(ctx, 1, errors.Wrap(err, "wrapper")))
	}
	assert.False(t, strategy(ctx, 2, errors.New("unexpected")))
}

func TestNonRetriableErrors(t *testing.T) {
	ctx := context.Background()
	nonRetriableErrors := []error{
		errors.New("nonRetriableA"),
		errors.New("nonRetriableB"),
	}

	strategy := NonRetriableErrors(nonRetriableErrors...)
	for _, err := range nonRetriableErrors {
		assert.False(t, strategy(ctx, 1, err))
		assert.False(t, strategy(ctx, 1, errors.Wrap(err, "wrapper")))
	}
	assert.True(t, strategy(ctx, 1, errors.New("unexpected")))
}

func TestNonRetriableInstructionErrors(t *testing.T) {
	ctx := context.Background()
	strategy := NonRetriableInstructionErrors(
		solana.InstructionErrorInvalidArgument,
		solana.InstructionErrorMissingRequiredSignature,
		solana.InstructionErrorCustom,
	)

	assert.False(t, strategy(ctx, 1, solana.ErrInvalidArgument))
	assert.False(t, strategy(ctx, 1, solana.InstructionError{Index: 0, Err: solana.ErrMissingRequiredSignature}))
	assert.False(t, strategy(ctx, 1, errors.Wrap(solana.InstructionError{Index: 0, Err: solana.CustomError(16)}, "submit")))

	assert.True(t, strategy(ctx, 1, solana.InstructionError{Index: 0, Err: solana.ErrInvalidAccountData}))
	assert.True(t, strategy(ctx, 1, errors.New("connection reset")))
}

func TestBackoff(t *testing.T) {
	ts := &testSleeper{}
	sleeperImpl = ts
	strategy := Backoff(backoff.Constant(100*time.Millisecond), 1*time.Second)

	for i := uint(0); i < 10; i++ {
		assert.True(t, strategy(context.Background(), i+1, errors.New("test-error")))
	}

	assert.EqualValues(t, 1*time.Second, ts.Total())
	assert.EqualValues(t, 100*time.Millisecond, ts.Mean())
	assert.EqualValues(t, 0*time.Second, ts.AbsDeviation())

	capped := &testSleeper{}
	sleeperImpl = capped
	strategy = Backoff(backoff.Linear(time.Second), 2*time.Second)
	for i := uint(1); i <= 4; i++ {
		strategy(context.Background(), i, errors.New("test-error"))
	}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}, capped.sleepTimes)
}

func TestBackoffWithJitter(t *testing.T) {
	iterations := 10000
	delay := 1 * time.Millisecond

	ts := &testSleeper{}
	sleeperImpl = ts
	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)

	for i := 0; i < iterations; i++ {
		assert.True(t, strategy(context.Background(), 1, errors.New("err")))
	}

	// The total time slept is (iterations * delay) +/- 10%
	assert.InDelta(t, float64(10*time.Second), float64(ts.Total()), float64(1*time.Second))

	// The mean is the delay +/- 10%
	assert.InDelta(t, float64(delay), float64(ts.Mean()), 0.1*float64(delay))

	// A 10% window of jitter around the mean results in a deviation of 5%.
	assert.InDelta(t,
		0.05*float64(delay),
		float64(ts.AbsDeviation()),
		0.05*0.05*float64(delay),
	)
}

type testSleeper struct {
	sleepTimes []time.Duration
}

func (t *testSleeper) Sleep(ctx context.Context, d time.Duration) bool {
	t.sleepTimes = append(t.sleepTimes, d)
	return ctx.Err() == nil
}

func (t *testSleeper) Total() (total time.Duration) {
	for _, d := range t.sleepTimes {
		total += d
	}
	return total
}

func (t *testSleeper) Mean() (mean time.Duration) {
	for _, d := range t.sleepTimes {
		mean += d
	}
	return time.Duration(int(mean) / len(t.sleepTimes))
}

func (t *testSleeper) AbsDeviation() (dev time.Duration) {
	mean := t.Mean()
	for _, d := range t.sleepTimes {
		dev += time.Duration(math.Abs(float64(d) - float64(mean)))
	}
	return time.Duration(int(dev) / len(t.sleepTimes))
}
