package cron

import (
	"context"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
)

// Heartbeat is a reconciliation pass that reports the events it produced.
type Heartbeat interface {
	Tick(ctx context.Context) ([]event.Event, error)
}

// SecurityJobs runs the hostel security heartbeat and broadcasts whatever it changed.
type SecurityJobs struct {
	heartbeat  Heartbeat
	dispatcher event.Dispatcher
	interval   time.Duration
}

func NewSecurityJobs(heartbeat Heartbeat, dispatcher event.Dispatcher, interval time.Duration) *SecurityJobs {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SecurityJobs{
		heartbeat:  heartbeat,
		dispatcher: dispatcher,
		interval:   interval,
	}
}

func (j *SecurityJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("security_heartbeat", j.interval, j.SecurityHeartbeat)
}

// SecurityHeartbeat runs one tick. Events from rules that succeeded are
// dispatched even when another rule failed.
func (j *SecurityJobs) SecurityHeartbeat(ctx context.Context) error {
	events, err := j.heartbeat.Tick(ctx)
	if len(events) > 0 {
		j.dispatcher.Dispatch(ctx, events...)
	}
	return err
}
