package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New[int](Settings{Name: "test", MaxFailures: 2, OpenTimeout: time.Minute})
	boom := errors.New("boom")
	calls := 0
	fail := func() (int, error) {
		calls++
		return 0, boom
	}

	_, err := b.Execute(fail)
	require.ErrorIs(t, err, boom)
	_, err = b.Execute(fail)
	require.ErrorIs(t, err, boom)

	_, err = b.Execute(fail)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 2, calls, "open breaker must not call through")
	assert.Equal(t, "open", b.State())
}

func TestBreaker_PassesValueThrough(t *testing.T) {
	b := New[string](Settings{Name: "ok"})

	v, err := b.Execute(func() (string, error) { return "fine", nil })
	require.NoError(t, err)
	assert.Equal(t, "fine", v)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b := New[int](Settings{Name: "probe", MaxFailures: 1, OpenTimeout: 20 * time.Millisecond})

	_, _ = b.Execute(func() (int, error) { return 0, errors.New("down") })
	_, err := b.Execute(func() (int, error) { return 1, nil })
	require.ErrorIs(t, err, ErrOpen)

	time.Sleep(40 * time.Millisecond)
	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_IgnoresCallerContextErrors(t *testing.T) {
	b := New[int](Settings{Name: "ctx", MaxFailures: 2, OpenTimeout: time.Minute})
	calls := 0

	for i := 0; i < 5; i++ {
		_, err := b.Execute(func() (int, error) {
			calls++
			return 0, fmt.Errorf("request failed: %w", context.Canceled)
		})
		require.ErrorIs(t, err, context.Canceled)
	}
	_, err := b.Execute(func() (int, error) {
		calls++
		return 0, context.DeadlineExceeded
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := b.Execute(func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 6, calls)
	assert.Equal(t, "closed", b.State())
}
