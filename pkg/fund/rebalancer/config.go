package rebalancer

import (
	"time"

	"github.com/spf13/viper"
)

const (
	envConfigPrefix = "FUND_REBALANCER_"

	MaxSubmitAttemptsConfigEnvName = envConfigPrefix + "MAX_SUBMIT_ATTEMPTS"
	defaultMaxSubmitAttempts       = 3

	SubmitBackoffConfigEnvName = envConfigPrefix + "SUBMIT_BACKOFF"
	defaultSubmitBackoff       = 500 * time.Millisecond

	MaxSubmitBackoffConfigEnvName = envConfigPrefix + "MAX_SUBMIT_BACKOFF"
	defaultMaxSubmitBackoff       = 10 * time.Second

	ResumeBatchSizeConfigEnvName = envConfigPrefix + "RESUME_BATCH_SIZE"
	defaultResumeBatchSize       = 10

	RunsPerHourConfigEnvName = envConfigPrefix + "RUNS_PER_HOUR"
	defaultRunsPerHour       = 0

	RunBurstConfigEnvName = envConfigPrefix + "RUN_BURST"
	defaultRunBurst       = 1
)

const (
	maxSubmitAttemptsKey = "max_submit_attempts"
	submitBackoffKey     = "submit_backoff"
	maxSubmitBackoffKey  = "max_submit_backoff"
	resumeBatchSizeKey   = "resume_batch_size"
	runsPerHourKey       = "runs_per_hour"
	runBurstKey          = "run_burst"
)

type conf struct {
	maxSubmitAttempts uint
	submitBackoff     time.Duration
	maxSubmitBackoff  time.Duration
	resumeBatchSize   uint64

	// New runs a fund may start per hour. Zero disables the limit.
	runsPerHour float64
	runBurst    int
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		v := viper.New()

		for key, binding := range map[string]struct {
			env          string
			defaultValue interface{}
		}{
			maxSubmitAttemptsKey: {MaxSubmitAttemptsConfigEnvName, defaultMaxSubmitAttempts},
			submitBackoffKey:     {SubmitBackoffConfigEnvName, defaultSubmitBackoff},
			maxSubmitBackoffKey:  {MaxSubmitBackoffConfigEnvName, defaultMaxSubmitBackoff},
			resumeBatchSizeKey:   {ResumeBatchSizeConfigEnvName, defaultResumeBatchSize},
			runsPerHourKey:       {RunsPerHourConfigEnvName, defaultRunsPerHour},
			runBurstKey:          {RunBurstConfigEnvName, defaultRunBurst},
		} {
			_ = v.BindEnv(key, binding.env)
			v.SetDefault(key, binding.defaultValue)
		}

		c := &conf{
			maxSubmitAttempts: v.GetUint(maxSubmitAttemptsKey),
			submitBackoff:     v.GetDuration(submitBackoffKey),
			maxSubmitBackoff:  v.GetDuration(maxSubmitBackoffKey),
			resumeBatchSize:   v.GetUint64(resumeBatchSizeKey),
			runsPerHour:       v.GetFloat64(runsPerHourKey),
			runBurst:          v.GetInt(runBurstKey),
		}
		if c.maxSubmitAttempts == 0 {
			c.maxSubmitAttempts = defaultMaxSubmitAttempts
		}
		if c.resumeBatchSize == 0 {
			c.resumeBatchSize = defaultResumeBatchSize
		}
		return c
	}
}

type testOverrides struct {
	maxSubmitAttempts uint
	submitBackoff     time.Duration
	resumeBatchSize   uint64
	runsPerHour       float64
	runBurst          int
}

func withManualTestConfigs(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		c := &conf{
			maxSubmitAttempts: defaultMaxSubmitAttempts,
			submitBackoff:     time.Millisecond,
			maxSubmitBackoff:  10 * time.Millisecond,
			resumeBatchSize:   defaultResumeBatchSize,
			runsPerHour:       overrides.runsPerHour,
			runBurst:          overrides.runBurst,
		}
		if overrides.maxSubmitAttempts > 0 {
			c.maxSubmitAttempts = overrides.maxSubmitAttempts
		}
		if overrides.submitBackoff > 0 {
			c.submitBackoff = overrides.submitBackoff
		}
		if overrides.resumeBatchSize > 0 {
			c.resumeBatchSize = overrides.resumeBatchSize
		}
		return c
	}
}
