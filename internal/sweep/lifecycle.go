package sweep

import (
	"time"

	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// TargetActive decides a round's target active state from its schedule and
// the current time. Pure: the second return reports whether the target
// differs from the round's current state, so callers write only changed
// rounds.
//
// Deactivation applies once the current time is past end-of-day of the
// deadline. Activation applies from start-of-day of the start date while
// the deadline (if any) has not passed; it is gated by autoActivate so a
// deployment can choose to let an organizer's manual deactivation stick.
func TargetActive(r store.Round, now time.Time, autoActivate bool) (target, changed bool) {
	if r.EndDate != nil && now.After(endOfDay(*r.EndDate)) {
		if r.IsActive {
			return false, true
		}
		return r.IsActive, false
	}

	if autoActivate && !r.IsActive && r.StartDate != nil &&
		!now.Before(startOfDay(*r.StartDate)) &&
		(r.EndDate == nil || !r.EndDate.Before(now)) {
		return true, true
	}

	return r.IsActive, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
