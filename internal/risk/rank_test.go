package risk

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackhub-dev/hackhub-backend/internal/store"
	"github.com/hackhub-dev/hackhub-backend/internal/store/storetest"
)

func rankFixture(now time.Time) *storetest.Fake {
	st := storetest.New()
	st.Hackathons = []store.Hackathon{{ID: "h1", Name: "Spring Jam", OrganizationID: "o1"}}
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", Name: "Finals",
		EndDate: tp(now.Add(12 * time.Hour)), IsActive: true}}
	st.Teams = []store.Team{
		// 35 time + 10 last-day polish = 45: under threshold.
		{ID: "t-safe", HackathonID: "h1", Name: "Steady"},
		// 35 + 10 polish + 10 sparse chat = 55.
		{ID: "t-mid", HackathonID: "h1", Name: "Wobbly"},
		// 35 + 30 no submission + 20 silent = 85.
		{ID: "t-high", HackathonID: "h1", Name: "Ghosts"},
	}
	st.Submissions = []store.Submission{
		{ID: "s1", TeamID: "t-safe", RoundID: "r1", Link: sp("https://example.com/a")},
		{ID: "s2", TeamID: "t-mid", RoundID: "r1", Link: sp("https://example.com/b")},
	}
	st.MessageCounts["t-safe"] = 9
	st.MessageCounts["t-mid"] = 2
	return st
}

func TestAtRiskTeamsFiltersAndRanks(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(rankFixture(now), now)

	got := e.AtRiskTeams(context.Background(), "r1", 50)
	require.Len(t, got, 2)
	assert.Equal(t, "t-high", got[0].Team.ID)
	assert.Equal(t, 85, got[0].Assessment.RiskScore)
	assert.Equal(t, "t-mid", got[1].Team.ID)
	assert.Equal(t, 55, got[1].Assessment.RiskScore)
}

func TestAtRiskTeamsExplicitZeroSelectsEveryTeam(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(rankFixture(now), now)

	got := e.AtRiskTeams(context.Background(), "r1", 0)
	require.Len(t, got, 3)
	assert.Equal(t, "t-high", got[0].Team.ID)
	assert.Equal(t, "t-safe", got[2].Team.ID)
}

func TestAtRiskTeamsNegativeThresholdUsesDefault(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	e := fixedEngine(rankFixture(now), now)

	got := e.AtRiskTeams(context.Background(), "r1", -1)
	require.Len(t, got, 2, "default threshold is %d", DefaultThreshold)
}

func TestAtRiskTeamsTiesKeepEnumerationOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st := rankFixture(now)
	// A second silent team with identical signals scores the same 85.
	st.Teams = append(st.Teams, store.Team{ID: "t-high2", HackathonID: "h1", Name: "Ghosts II"})

	e := fixedEngine(st, now)
	got := e.AtRiskTeams(context.Background(), "r1", 60)
	require.Len(t, got, 2)
	assert.Equal(t, "t-high", got[0].Team.ID)
	assert.Equal(t, "t-high2", got[1].Team.ID)
}

func TestAtRiskTeamsResolutionFailuresYieldEmpty(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("unknown round", func(t *testing.T) {
		e := fixedEngine(rankFixture(now), now)
		assert.Empty(t, e.AtRiskTeams(context.Background(), "missing", 50))
	})

	t.Run("round without deadline", func(t *testing.T) {
		st := rankFixture(now)
		st.Rounds = append(st.Rounds, store.Round{ID: "r-open", HackathonID: "h1"})
		e := fixedEngine(st, now)
		assert.Empty(t, e.AtRiskTeams(context.Background(), "r-open", 50))
	})
}

func TestAtRiskTeamsSkipsFailingTeam(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	st := rankFixture(now)
	st.Errs["TeamMessageCountSince:t-high"] = assert.AnError

	e := fixedEngine(st, now)
	got := e.AtRiskTeams(context.Background(), "r1", 50)
	require.Len(t, got, 1)
	assert.Equal(t, "t-mid", got[0].Team.ID)
}
