package sweep

import (
	"context"
	"log/slog"
	"time"
)

// Trigger delivers the ticks that start a sweep. The interface exists so
// tests can drive the orchestrator synchronously instead of waiting on
// wall-clock time.
type Trigger interface {
	C() <-chan time.Time
	Stop()
}

// Start runs fn on every trigger fire. Blocks until ctx is cancelled;
// intended to be called with `go`. A fire during a running sweep is not
// queued; the next fire picks up whatever was missed.
func Start(ctx context.Context, trig Trigger, logger *slog.Logger, fn func(context.Context)) {
	defer trig.Stop()
	for {
		select {
		case <-trig.C():
			fn(ctx)
		case <-ctx.Done():
			logger.Info("Sweep trigger stopped")
			return
		}
	}
}

// DailyTrigger fires once per day at a fixed UTC hour.
type DailyTrigger struct {
	hour int
	ch   chan time.Time
	done chan struct{}
}

// NewDailyTrigger creates and starts a daily trigger.
func NewDailyTrigger(hourUTC int) *DailyTrigger {
	t := &DailyTrigger{
		hour: hourUTC,
		ch:   make(chan time.Time, 1),
		done: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *DailyTrigger) C() <-chan time.Time { return t.ch }

func (t *DailyTrigger) Stop() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}

func (t *DailyTrigger) loop() {
	for {
		now := time.Now().UTC()
		timer := time.NewTimer(nextFire(now, t.hour).Sub(now))
		select {
		case fired := <-timer.C:
			select {
			case t.ch <- fired:
			default:
				// Previous fire not consumed yet; skip this one.
			}
		case <-t.done:
			timer.Stop()
			return
		}
	}
}

// nextFire returns the next occurrence of hour (UTC) strictly after now.
func nextFire(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// ManualTrigger is a Trigger driven by explicit Fire calls. Used in tests
// and by the operations CLI.
type ManualTrigger struct {
	ch chan time.Time
}

// NewManualTrigger creates a manual trigger.
func NewManualTrigger() *ManualTrigger {
	return &ManualTrigger{ch: make(chan time.Time, 1)}
}

func (t *ManualTrigger) C() <-chan time.Time { return t.ch }
func (t *ManualTrigger) Stop()               {}

// Fire delivers one tick.
func (t *ManualTrigger) Fire(at time.Time) {
	t.ch <- at
}
