package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackhub-dev/hackhub-backend/internal/oracle"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// ErrNoDeadline is returned when a round without an end date is assessed.
// Callers must not invoke the engine for such rounds.
var ErrNoDeadline = errors.New("round has no end date")

// Engine produces risk assessments for team/round pairs. Read-only: it
// performs no writes.
type Engine struct {
	store  store.Store
	oracle *oracle.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a risk engine. oc may be nil (oracle disabled).
func NewEngine(st store.Store, oc *oracle.Client, logger *slog.Logger) *Engine {
	return &Engine{
		store:  st,
		oracle: oc,
		logger: logger,
		now:    time.Now,
	}
}

// Assess evaluates one team/round pair. It fails only on resolution errors
// or a missing deadline; oracle failures fall back to the heuristic.
func (e *Engine) Assess(ctx context.Context, teamID, roundID string) (*Assessment, error) {
	round, err := e.store.RoundByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("resolve round: %w", err)
	}
	if round.EndDate == nil {
		return nil, ErrNoDeadline
	}
	team, err := e.store.TeamByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("resolve team: %w", err)
	}
	return e.assess(ctx, team, round)
}

// assess scores an already-resolved pair.
func (e *Engine) assess(ctx context.Context, team *store.Team, round *store.Round) (*Assessment, error) {
	sig, err := e.gatherSignals(ctx, team, round)
	if err != nil {
		return nil, err
	}

	score, reasons := heuristicScore(sig)
	level := LevelFor(score)

	if e.oracle.Enabled() {
		oa, err := e.oracle.AssessRisk(ctx, oracle.RiskSignals{
			TeamName:       sig.TeamName,
			RoundName:      sig.RoundName,
			Deadline:       sig.Deadline,
			HoursRemaining: sig.HoursRemaining,
			HasSubmission:  sig.HasSubmission,
			RecentMessages: sig.RecentMessages,
			OnTimeRate:     sig.OnTimeRate,
			HeuristicScore: score,
		})
		if err != nil {
			e.logger.Warn("oracle assessment failed, using heuristic",
				"team_id", team.ID, "round_id", round.ID, "error", err)
		} else {
			return clampOracleAssessment(oa, sig), nil
		}
	}

	return &Assessment{
		RiskScore:            score,
		RiskLevel:            level,
		Reasons:              reasons,
		Recommendations:      recommendationsFor(sig, level),
		PredictedProbability: score,
	}, nil
}

// clampOracleAssessment forces oracle output into valid ranges. The heuristic
// score is the validation floor: an in-range under-report must not drop a
// team the deterministic signals flag, so the final score is never below it.
// A level the engine does not recognize, or one contradicted by flooring, is
// rebucketed from the final score; missing reasons or recommendations fall
// back to generated ones.
func clampOracleAssessment(oa *oracle.RiskAssessment, sig Signals) *Assessment {
	heuristic, heuristicReasons := heuristicScore(sig)

	score := clampScore(oa.RiskScore)
	level := Level(oa.RiskLevel)
	switch level {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
	default:
		level = LevelFor(score)
	}

	if score < heuristic {
		score = heuristic
		level = LevelFor(score)
	}

	reasons := oa.Reasons
	recs := oa.Recommendations
	if len(reasons) == 0 {
		reasons = heuristicReasons
	}
	if len(recs) == 0 {
		recs = recommendationsFor(sig, level)
	}

	return &Assessment{
		RiskScore:            score,
		RiskLevel:            level,
		Reasons:              reasons,
		Recommendations:      recs,
		PredictedProbability: clampScore(oa.PredictedProbability),
	}
}
