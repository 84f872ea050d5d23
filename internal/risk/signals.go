package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// gatherSignals collects everything the scorer needs for one pair.
// The round must have an end date (checked by callers).
func (e *Engine) gatherSignals(ctx context.Context, team *store.Team, round *store.Round) (Signals, error) {
	now := e.now()
	deadline := *round.EndDate
	hours := deadline.Sub(now).Hours()

	sub, err := e.store.SubmissionForTeamRound(ctx, team.ID, round.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Signals{}, fmt.Errorf("gather submission: %w", err)
	}

	msgs, err := e.store.TeamMessageCountSince(ctx, team.ID, now.Add(-recentActivityWindow))
	if err != nil {
		return Signals{}, fmt.Errorf("gather activity: %w", err)
	}

	onTime, total, err := e.store.TeamOnTimeRate(ctx, team.ID)
	if err != nil {
		return Signals{}, fmt.Errorf("gather history: %w", err)
	}
	rate := -1.0
	if total > 0 {
		rate = float64(onTime) / float64(total)
	}

	return Signals{
		TeamName:       team.Name,
		RoundName:      round.Name,
		Deadline:       deadline,
		HoursRemaining: hours,
		DaysRemaining:  hours / 24,
		HasSubmission:  sub.HasContent(),
		RecentMessages: msgs,
		OnTimeRate:     rate,
	}, nil
}
