package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResendCountdown(t *testing.T) {
	c := newResendCountdown(3, 10*time.Millisecond)

	assert.False(t, c.Disabled())
	assert.Equal(t, 0, c.Remaining())

	assert.True(t, c.Start())
	assert.True(t, c.Disabled())
	assert.Positive(t, c.Remaining())

	// starting an armed countdown is rejected
	assert.False(t, c.Start())

	assert.Eventually(t, func() bool { return !c.Disabled() }, time.Second, time.Millisecond)

	// once expired it can be armed again from the full cooldown
	assert.True(t, c.Start())
	assert.Positive(t, c.Remaining())

	c.Stop()
	assert.False(t, c.Disabled())
}

func TestResendCountdownStopCancelsTicker(t *testing.T) {
	c := newResendCountdown(60, time.Millisecond)

	assert.True(t, c.Start())
	c.Stop()

	assert.False(t, c.Disabled())
	// the old ticker goroutine must not re-disable after Stop
	time.Sleep(10 * time.Millisecond)
	assert.False(t, c.Disabled())

	assert.True(t, c.Start())
	assert.True(t, c.Disabled())
}

func TestCountdownDefaults(t *testing.T) {
	c := newResendCountdown(0, 0)
	assert.Equal(t, defaultResendCooldown, c.cooldown)
	assert.Equal(t, defaultTickInterval, c.interval)
}
