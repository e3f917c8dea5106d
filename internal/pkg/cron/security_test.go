package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/stretchr/testify/assert"
)

type fakeHeartbeat struct {
	events []event.Event
	err    error
}

func (f fakeHeartbeat) Tick(context.Context) ([]event.Event, error) {
	return f.events, f.err
}

func TestSecurityJobs_DispatchesEventsEvenOnPartialFailure(t *testing.T) {
	var dispatched []event.Event
	dispatcher := event.DispatcherFunc(func(_ context.Context, events ...event.Event) {
		dispatched = append(dispatched, events...)
	})

	boom := errors.New("late_return_lockdown: store down")
	jobs := NewSecurityJobs(fakeHeartbeat{
		events: []event.Event{event.New(event.CensusUpdate, map[string]any{"count": 3})},
		err:    boom,
	}, dispatcher, time.Minute)

	err := jobs.SecurityHeartbeat(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.Len(t, dispatched, 1)
	assert.Equal(t, event.CensusUpdate, dispatched[0].Name)
}

func TestSecurityJobs_NoEventsNoDispatch(t *testing.T) {
	called := false
	dispatcher := event.DispatcherFunc(func(context.Context, ...event.Event) { called = true })

	jobs := NewSecurityJobs(fakeHeartbeat{}, dispatcher, 0)
	assert.NoError(t, jobs.SecurityHeartbeat(context.Background()))
	assert.False(t, called)
	assert.Equal(t, time.Minute, jobs.interval)
}

func TestSecurityJobs_Register(t *testing.T) {
	s := NewScheduler()
	NewSecurityJobs(fakeHeartbeat{}, event.Discard, 30*time.Second).RegisterJobs(s)

	assert.Len(t, s.jobs, 1)
	assert.Equal(t, "security_heartbeat", s.jobs[0].Name)
	assert.Equal(t, 30*time.Second, s.jobs[0].Interval)
}
