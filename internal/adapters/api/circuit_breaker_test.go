package api

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

var errUpstream = errors.New("upstream 502")

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute, shared.NewMockClock(testNow))

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, b.Do(func() error { return errUpstream }), errUpstream)
	}
	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, 2, b.Failures())

	assert.ErrorIs(t, b.Do(func() error { return errUpstream }), errUpstream)
	assert.Equal(t, BreakerOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	b := NewBreaker(2, time.Minute, shared.NewMockClock(testNow))

	_ = b.Do(func() error { return errUpstream })
	require.NoError(t, b.Do(func() error { return nil }))
	_ = b.Do(func() error { return errUpstream })

	assert.Equal(t, BreakerClosed, b.State())
	assert.Equal(t, 1, b.Failures())
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	clock := shared.NewMockClock(testNow)
	b := NewBreaker(1, time.Minute, clock)
	_ = b.Do(func() error { return errUpstream })

	clock.Advance(59 * time.Second)
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrCircuitOpen)

	clock.Advance(time.Second)
	assert.ErrorIs(t, b.Do(func() error { return errUpstream }), errUpstream)
	assert.Equal(t, BreakerOpen, b.State())

	// the cooldown restarts from the failed probe
	clock.Advance(30 * time.Second)
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrCircuitOpen)
}

func TestBreaker_OnlyOneProbeAtATime(t *testing.T) {
	clock := shared.NewMockClock(testNow)
	b := NewBreaker(1, time.Minute, clock)
	_ = b.Do(func() error { return errUpstream })
	clock.Advance(time.Minute)

	var inner error
	err := b.Do(func() error {
		inner = b.Do(func() error { return nil })
		return nil
	})

	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrCircuitOpen)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_ReportsTransitions(t *testing.T) {
	clock := shared.NewMockClock(testNow)
	b := NewBreaker(1, time.Minute, clock)
	var seen []BreakerState
	b.OnStateChange(func(s BreakerState) { seen = append(seen, s) })

	_ = b.Do(func() error { return errUpstream })
	clock.Advance(time.Minute)
	_ = b.Do(func() error { return nil })
	_ = b.Do(func() error { return nil })

	assert.Equal(t, []BreakerState{BreakerOpen, BreakerProbing, BreakerClosed}, seen)
}
