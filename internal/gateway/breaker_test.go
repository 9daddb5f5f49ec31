package gateway

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func newTestBreaker(threshold int, open time.Duration) (*Breaker, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: threshold, OpenTimeout: open})
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	}
	assert.Equal(t, BreakerClosed, b.State())

	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, BreakerOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called, "open breaker must not run fn")
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b, _ := newTestBreaker(2, time.Minute)
	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, now := newTestBreaker(1, 30*time.Second)
	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, BreakerOpen, b.State())

	*now = now.Add(30 * time.Second)
	assert.Equal(t, BreakerHalfOpen, b.State())

	// failed probe reopens
	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, BreakerOpen, b.State())

	*now = now.Add(30 * time.Second)
	assert.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_OneProbeAtATime(t *testing.T) {
	b, now := newTestBreaker(1, time.Second)
	_ = b.Execute(func() error { return errBoom })
	*now = now.Add(time.Second)

	var inner error
	_ = b.Execute(func() error {
		inner = b.Execute(func() error { return nil })
		return nil
	})
	assert.ErrorIs(t, inner, ErrBreakerOpen)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_ReportsTransitions(t *testing.T) {
	b, now := newTestBreaker(1, time.Second)
	var seen []BreakerState
	b.onChange = func(s BreakerState) { seen = append(seen, s) }

	_ = b.Execute(func() error { return errBoom })
	*now = now.Add(time.Second)
	_ = b.Execute(func() error { return nil })

	assert.Equal(t, []BreakerState{BreakerOpen, BreakerHalfOpen, BreakerClosed}, seen)
}
