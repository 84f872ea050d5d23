// Package sweep runs the scheduled pass over all rounds: lifecycle
// reconciliation first, then at-risk reminder generation for every active
// round with a deadline. Per-round and per-team failures are isolated:
// they are counted and logged, never raised, and skipped items are simply
// retried on the next scheduled run.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hackhub-dev/hackhub-backend/internal/realtime"
	"github.com/hackhub-dev/hackhub-backend/internal/reminder"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
)

// EventReminder is the event type published for a persisted reminder.
const EventReminder = "reminder"

// Config controls a sweeper's behavior.
type Config struct {
	RemindersEnabled bool
	Threshold        int  // at-risk cutoff; risk.DefaultThreshold when zero
	Workers          int  // per-round team concurrency; 1 when zero
	AutoActivate     bool // lifecycle rule 2 gate
}

// Sweeper orchestrates lifecycle reconciliation and reminder generation.
type Sweeper struct {
	store    store.Store
	engine   *risk.Engine
	composer *reminder.Composer
	pub      realtime.Publisher
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a sweeper.
func New(st store.Store, engine *risk.Engine, composer *reminder.Composer, pub realtime.Publisher, cfg Config, logger *slog.Logger) *Sweeper {
	if cfg.Threshold <= 0 {
		cfg.Threshold = risk.DefaultThreshold
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Sweeper{
		store:    st,
		engine:   engine,
		composer: composer,
		pub:      pub,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Result tracks the outcome of one sweep. Completion is observed through
// this summary and the logs; nothing consumes it synchronously except the
// administrative trigger.
type Result struct {
	RoundsEvaluated   int           `json:"roundsEvaluated"`
	RoundsActivated   int           `json:"roundsActivated"`
	RoundsDeactivated int           `json:"roundsDeactivated"`
	RoundsProcessed   int           `json:"roundsProcessed"`
	RemindersSent     int           `json:"remindersSent"`
	TeamsSkipped      int           `json:"teamsSkipped"`
	Errors            []string      `json:"errors,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// Summary returns a human-readable one-liner.
func (r *Result) Summary() string {
	return fmt.Sprintf("evaluated=%d activated=%d deactivated=%d processed=%d reminders=%d skipped=%d errors=%d dur=%s",
		r.RoundsEvaluated, r.RoundsActivated, r.RoundsDeactivated,
		r.RoundsProcessed, r.RemindersSent, r.TeamsSkipped,
		len(r.Errors), r.Duration.Round(time.Millisecond))
}

// Run executes one complete sweep. It never returns an error: partial
// completion is the expected steady state under load.
func (s *Sweeper) Run(ctx context.Context) Result {
	start := time.Now()
	var result Result

	s.reconcileLifecycles(ctx, &result)

	if !s.cfg.RemindersEnabled {
		s.logger.Info("Reminder generation disabled, sweep stops after lifecycle pass")
		result.Duration = time.Since(start)
		return result
	}

	rounds, err := s.store.ActiveRoundsWithDeadline(ctx)
	if err != nil {
		s.logger.Error("Sweep: listing active rounds failed", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("list active rounds: %v", err))
		result.Duration = time.Since(start)
		return result
	}

	for _, round := range rounds {
		s.processRound(ctx, round, &result)
	}

	result.Duration = time.Since(start)
	s.logger.Info("Sweep complete", "summary", result.Summary())
	return result
}

// reconcileLifecycles applies the lifecycle evaluator to every scheduled
// round, writing only the ones whose state changed.
func (s *Sweeper) reconcileLifecycles(ctx context.Context, result *Result) {
	rounds, err := s.store.RoundsWithSchedule(ctx)
	if err != nil {
		s.logger.Error("Lifecycle pass: listing rounds failed", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("list scheduled rounds: %v", err))
		return
	}

	for _, r := range rounds {
		result.RoundsEvaluated++
		target, changed := TargetActive(r, s.now(), s.cfg.AutoActivate)
		if !changed {
			continue
		}
		if err := s.store.SetRoundActive(ctx, r.ID, target); err != nil {
			s.logger.Warn("Lifecycle pass: round write failed", "round_id", r.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("round %s: %v", r.ID, err))
			continue
		}
		if target {
			result.RoundsActivated++
		} else {
			result.RoundsDeactivated++
		}
	}

	s.logger.Info("Lifecycle pass complete",
		"evaluated", result.RoundsEvaluated,
		"activated", result.RoundsActivated,
		"deactivated", result.RoundsDeactivated)
}

// processRound selects the round's at-risk teams and reminds each through a
// bounded worker pool. A failing team never aborts the rest.
func (s *Sweeper) processRound(ctx context.Context, round store.Round, result *Result) {
	// Defensive: step 1 should already have deactivated past-deadline rounds.
	if round.EndDate == nil || round.EndDate.Before(s.now()) {
		return
	}

	atRisk := s.engine.AtRiskTeams(ctx, round.ID, s.cfg.Threshold)
	if len(atRisk) == 0 {
		return
	}
	result.RoundsProcessed++
	s.logger.Info("Sweep: at-risk teams found", "round_id", round.ID, "count", len(atRisk))

	workers := s.cfg.Workers
	if workers > len(atRisk) {
		workers = len(atRisk)
	}

	jobs := make(chan risk.TeamAssessment, len(atRisk))
	for _, ta := range atRisk {
		jobs <- ta
	}
	close(jobs)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ta := range jobs {
				msg, err := s.remindTeam(ctx, ta.Team, round)

				mu.Lock()
				if err != nil {
					s.logger.Warn("Sweep: team skipped",
						"team_id", ta.Team.ID, "round_id", round.ID, "error", err)
					result.TeamsSkipped++
					result.Errors = append(result.Errors,
						fmt.Sprintf("team %s round %s: %v", ta.Team.ID, round.ID, err))
				} else {
					s.logger.Info("Sweep: reminder sent",
						"team_id", ta.Team.ID, "round_id", round.ID, "message_id", msg.ID)
					result.RemindersSent++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

// remindTeam resolves the team's organization, composes the reminder,
// persists it, and publishes it. Persistence commits first; the publish is
// fire-and-forget and its outcome is not part of the returned error.
func (s *Sweeper) remindTeam(ctx context.Context, team store.Team, round store.Round) (*store.Message, error) {
	org, err := s.store.OrganizationByID(ctx, team.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("resolve organization: %w", err)
	}

	text := s.composer.Compose(ctx, team.ID, round.ID)

	msg := &store.Message{
		TeamID:         team.ID,
		OrganizationID: org.ID,
		Sender:         store.SystemSender(),
		Content:        text,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist reminder: %w", err)
	}

	event := realtime.Event{Type: EventReminder, Payload: msg}
	for _, member := range team.MemberIDs {
		s.pub.Publish(realtime.UserChannel(member), event)
	}
	s.pub.Publish(realtime.OrgChannel(org.ID), event)

	return msg, nil
}

// ProcessRound is the administrative "process round now" operation: one
// lifecycle evaluation plus one reminder pass for a single round.
func (s *Sweeper) ProcessRound(ctx context.Context, roundID string) (Result, error) {
	var result Result

	round, err := s.store.RoundByID(ctx, roundID)
	if err != nil {
		return result, fmt.Errorf("resolve round: %w", err)
	}

	result.RoundsEvaluated++
	if target, changed := TargetActive(*round, s.now(), s.cfg.AutoActivate); changed {
		if err := s.store.SetRoundActive(ctx, round.ID, target); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("round %s: %v", round.ID, err))
		} else {
			round.IsActive = target
			if target {
				result.RoundsActivated++
			} else {
				result.RoundsDeactivated++
			}
		}
	}

	if s.cfg.RemindersEnabled && round.IsActive && round.EndDate != nil {
		s.processRound(ctx, *round, &result)
	}
	return result, nil
}

// SendReminderNow is the manual trigger path for one team/round pair,
// bypassing the scheduled sweep. Unlike the sweep it surfaces resolution
// errors, since it directly serves a single user request.
func (s *Sweeper) SendReminderNow(ctx context.Context, teamID, roundID string) (*store.Message, error) {
	team, err := s.store.TeamByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("resolve team: %w", err)
	}
	round, err := s.store.RoundByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("resolve round: %w", err)
	}
	if round.EndDate == nil {
		return nil, risk.ErrNoDeadline
	}
	return s.remindTeam(ctx, *team, *round)
}
