package rebalancer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithEnvConfigs_Defaults(t *testing.T) {
	c := WithEnvConfigs()()

	assert.EqualValues(t, 3, c.maxSubmitAttempts)
	assert.Equal(t, 500*time.Millisecond, c.submitBackoff)
	assert.Equal(t, 10*time.Second, c.maxSubmitBackoff)
	assert.EqualValues(t, 10, c.resumeBatchSize)
	assert.EqualValues(t, 0, c.runsPerHour)
	assert.Equal(t, 1, c.runBurst)
}

func TestWithEnvConfigs_Overrides(t *testing.T) {
	t.Setenv(MaxSubmitAttemptsConfigEnvName, "5")
	t.Setenv(SubmitBackoffConfigEnvName, "2s")
	t.Setenv(MaxSubmitBackoffConfigEnvName, "1m")
	t.Setenv(ResumeBatchSizeConfigEnvName, "25")
	t.Setenv(RunsPerHourConfigEnvName, "0.5")
	t.Setenv(RunBurstConfigEnvName, "3")

	c := WithEnvConfigs()()

	assert.EqualValues(t, 5, c.maxSubmitAttempts)
	assert.Equal(t, 2*time.Second, c.submitBackoff)
	assert.Equal(t, time.Minute, c.maxSubmitBackoff)
	assert.EqualValues(t, 25, c.resumeBatchSize)
	assert.Equal(t, 0.5, c.runsPerHour)
	assert.Equal(t, 3, c.runBurst)
}
