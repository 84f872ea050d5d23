package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackhub-dev/hackhub-backend/internal/oracle"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
	"github.com/hackhub-dev/hackhub-backend/internal/store/storetest"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func tp(t time.Time) *time.Time { return &t }
func sp(s string) *string       { return &s }

// fixedEngine returns an engine over the fake with a pinned clock and no
// oracle.
func fixedEngine(st store.Store, now time.Time) *Engine {
	e := NewEngine(st, nil, testLogger)
	e.now = func() time.Time { return now }
	return e
}

func TestEngineAssess(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(12 * time.Hour)

	st := storetest.New()
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", Name: "Finals", EndDate: tp(deadline), IsActive: true}}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1", OrganizationID: "o1", Name: "Crashers"}}

	e := fixedEngine(st, now)

	a, err := e.Assess(context.Background(), "t1", "r1")
	require.NoError(t, err)

	// 35 (under a day) + 30 (no submission) + 20 (silent chat) = 85.
	assert.Equal(t, 85, a.RiskScore)
	assert.Equal(t, LevelCritical, a.RiskLevel)
	assert.Equal(t, 85, a.PredictedProbability)
	assert.NotEmpty(t, a.Reasons)
	assert.NotEmpty(t, a.Recommendations)
}

func TestEngineAssessSubmissionLowersRisk(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	st := storetest.New()
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", Name: "Finals", EndDate: tp(now.AddDate(0, 0, 10)), IsActive: true}}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1", Name: "Crashers"}}
	st.Submissions = []store.Submission{{ID: "s1", TeamID: "t1", RoundID: "r1", Link: sp("https://example.com/demo")}}
	st.MessageCounts["t1"] = 14
	st.OnTime["t1"] = [2]int{4, 4}

	e := fixedEngine(st, now)
	a, err := e.Assess(context.Background(), "t1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, a.RiskScore)
	assert.Equal(t, LevelLow, a.RiskLevel)
}

func TestEngineAssessEmptySubmissionDoesNotCount(t *testing.T) {
	// A submission row without a link or file is not a deliverable.
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	st := storetest.New()
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", EndDate: tp(now.AddDate(0, 0, 10))}}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1"}}
	st.Submissions = []store.Submission{{ID: "s1", TeamID: "t1", RoundID: "r1"}}
	st.MessageCounts["t1"] = 14

	e := fixedEngine(st, now)
	a, err := e.Assess(context.Background(), "t1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 30, a.RiskScore)
}

func TestEngineAssessErrors(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	st := storetest.New()
	st.Rounds = []store.Round{
		{ID: "r1", HackathonID: "h1", EndDate: tp(now.Add(time.Hour))},
		{ID: "r-open", HackathonID: "h1"},
	}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1"}}

	e := fixedEngine(st, now)

	_, err := e.Assess(context.Background(), "t1", "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = e.Assess(context.Background(), "missing", "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = e.Assess(context.Background(), "t1", "r-open")
	assert.ErrorIs(t, err, ErrNoDeadline)
}

func TestEngineSignalGatherFailurePropagates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	st := storetest.New()
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", EndDate: tp(now.Add(time.Hour))}}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1"}}
	st.Errs["TeamMessageCountSince"] = errors.New("connection reset")

	e := fixedEngine(st, now)
	_, err := e.Assess(context.Background(), "t1", "r1")
	assert.Error(t, err)
}

func TestEngineOracleFailureFallsBackToHeuristic(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	st := storetest.New()
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", Name: "Finals", EndDate: tp(now.Add(12 * time.Hour))}}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1", Name: "Crashers"}}

	// A 1ns request timeout makes every oracle call fail before reaching the
	// network.
	oc := oracle.NewClient("test-key", "", time.Nanosecond, testLogger)
	require.NotNil(t, oc)

	e := NewEngine(st, oc, testLogger)
	e.now = func() time.Time { return now }

	a, err := e.Assess(context.Background(), "t1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 85, a.RiskScore)
	assert.Equal(t, LevelCritical, a.RiskLevel)
}

func TestClampOracleAssessment(t *testing.T) {
	// Scores 0 on the heuristic, so nothing is floored.
	benign := Signals{DaysRemaining: 10, HasSubmission: true, RecentMessages: 8, OnTimeRate: 1}
	// Scores 85 on the heuristic (35 time + 30 submission + 20 activity).
	alarming := Signals{DaysRemaining: 0.5, HoursRemaining: 12, OnTimeRate: -1}

	tests := []struct {
		name      string
		sig       Signals
		in        oracle.RiskAssessment
		wantScore int
		wantLevel Level
	}{
		{
			name:      "valid output passes through",
			sig:       benign,
			in:        oracle.RiskAssessment{RiskScore: 62, RiskLevel: "high", Reasons: []string{"x"}, Recommendations: []string{"y"}, PredictedProbability: 70},
			wantScore: 62,
			wantLevel: LevelHigh,
		},
		{
			name:      "score above range clamps and rebuckets unknown level",
			sig:       benign,
			in:        oracle.RiskAssessment{RiskScore: 240, RiskLevel: "catastrophic"},
			wantScore: 100,
			wantLevel: LevelCritical,
		},
		{
			name:      "negative score clamps to zero",
			sig:       benign,
			in:        oracle.RiskAssessment{RiskScore: -10, RiskLevel: ""},
			wantScore: 0,
			wantLevel: LevelLow,
		},
		{
			name:      "under-report floors at the heuristic and rebuckets",
			sig:       alarming,
			in:        oracle.RiskAssessment{RiskScore: 5, RiskLevel: "low", Reasons: []string{"all fine"}, Recommendations: []string{"relax"}},
			wantScore: 85,
			wantLevel: LevelCritical,
		},
		{
			name:      "oracle may only raise an alarming score",
			sig:       alarming,
			in:        oracle.RiskAssessment{RiskScore: 92, RiskLevel: "critical"},
			wantScore: 92,
			wantLevel: LevelCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampOracleAssessment(&tt.in, tt.sig)
			assert.Equal(t, tt.wantScore, got.RiskScore)
			assert.Equal(t, tt.wantLevel, got.RiskLevel)
			assert.NotEmpty(t, got.Reasons, "missing reasons fall back to heuristic")
			assert.NotEmpty(t, got.Recommendations)
		})
	}
}
