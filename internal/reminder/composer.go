// Package reminder turns a risk assessment into a short reminder message
// for a team. Composition never fails: when the oracle is unavailable or
// anything cannot be resolved, a fixed template is used instead.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hackhub-dev/hackhub-backend/internal/oracle"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// genericReminder is the last-resort text when nothing can be resolved.
const genericReminder = "Friendly reminder: your round deadline is coming up. " +
	"Make sure your submission is in on time — you've got this!"

// How many recommendations the template works into the message.
const maxTemplateRecommendations = 2

// Composer builds reminder text for a team/round pair.
type Composer struct {
	store  store.Store
	engine *risk.Engine
	oracle *oracle.Client
	logger *slog.Logger
}

// NewComposer creates a composer. oc may be nil (oracle disabled).
func NewComposer(st store.Store, engine *risk.Engine, oc *oracle.Client, logger *slog.Logger) *Composer {
	return &Composer{store: st, engine: engine, oracle: oc, logger: logger}
}

// Compose recomputes the risk assessment and produces a 2-3 sentence
// reminder stating the deadline. Always returns usable text.
func (c *Composer) Compose(ctx context.Context, teamID, roundID string) string {
	round, err := c.store.RoundByID(ctx, roundID)
	if err != nil || round.EndDate == nil {
		c.logger.Warn("compose: round not resolved, using generic reminder",
			"round_id", roundID, "error", err)
		return genericReminder
	}
	team, err := c.store.TeamByID(ctx, teamID)
	if err != nil {
		c.logger.Warn("compose: team not resolved, using generic reminder",
			"team_id", teamID, "error", err)
		return genericReminder
	}

	assessment, err := c.engine.Assess(ctx, teamID, roundID)
	if err != nil {
		c.logger.Warn("compose: assessment failed, using generic reminder",
			"team_id", teamID, "round_id", roundID, "error", err)
		return genericReminder
	}

	if c.oracle.Enabled() {
		text, err := c.oracle.ComposeReminder(ctx, oracle.ReminderInput{
			TeamName:        team.Name,
			RoundName:       round.Name,
			Deadline:        *round.EndDate,
			RiskLevel:       string(assessment.RiskLevel),
			Recommendations: assessment.Recommendations,
		})
		if err != nil {
			c.logger.Warn("compose: oracle failed, using template",
				"team_id", teamID, "round_id", roundID, "error", err)
		} else {
			return text
		}
	}

	return templateReminder(team.Name, round.Name, *round.EndDate, assessment)
}

// templateReminder is the deterministic fallback. Elevated risk (high or
// critical) works the top recommendations into the text.
func templateReminder(teamName, roundName string, deadline time.Time, a *risk.Assessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s! The %q deadline is %s.",
		teamName, roundName, deadline.UTC().Format("Mon Jan 2 at 15:04 MST"))

	if (a.RiskLevel == risk.LevelHigh || a.RiskLevel == risk.LevelCritical) && len(a.Recommendations) > 0 {
		recs := a.Recommendations
		if len(recs) > maxTemplateRecommendations {
			recs = recs[:maxTemplateRecommendations]
		}
		fmt.Fprintf(&sb, " A tip from us: %s.", strings.Join(recs, "; "))
	}

	sb.WriteString(" You're closer than you think — get your submission in!")
	return sb.String()
}
