package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunOnceReportsEveryJob(t *testing.T) {
	type run struct {
		name string
		err  error
	}
	var mu sync.Mutex
	var runs []run

	s := NewScheduler(WithObserver(func(name string, _ time.Duration, err error) {
		mu.Lock()
		defer mu.Unlock()
		runs = append(runs, run{name, err})
	}))

	boom := errors.New("boom")
	s.AddJob("failing", time.Hour, func(context.Context) error { return boom })
	s.AddJob("ok", time.Hour, func(context.Context) error { return nil })

	s.RunOnce(context.Background())

	require.Len(t, runs, 2)
	assert.Equal(t, "failing", runs[0].name)
	assert.ErrorIs(t, runs[0].err, boom)
	assert.Equal(t, "ok", runs[1].name)
	assert.NoError(t, runs[1].err)
}

func TestScheduler_RecoversPanickingJob(t *testing.T) {
	var got error
	s := NewScheduler(WithObserver(func(_ string, _ time.Duration, err error) { got = err }))
	s.AddJob("panics", time.Hour, func(context.Context) error { panic("kaboom") })

	assert.NotPanics(t, func() { s.RunOnce(context.Background()) })
	require.Error(t, got)
	assert.Contains(t, got.Error(), "kaboom")
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler()
	s.AddJob("tick", time.Hour, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Start()
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), calls.Load())
}
