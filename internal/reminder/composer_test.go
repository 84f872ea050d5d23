package reminder

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
	"github.com/hackhub-dev/hackhub-backend/internal/store/storetest"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func tp(t time.Time) *time.Time { return &t }

func newTestComposer(st store.Store) *Composer {
	engine := risk.NewEngine(st, nil, testLogger)
	return NewComposer(st, engine, nil, testLogger)
}

// composerFixture has Ghosts with nothing submitted and a deadline in 12
// hours, which the heuristic scores as critical.
func composerFixture() *storetest.Fake {
	st := storetest.New()
	st.Hackathons = []store.Hackathon{{ID: "h1", OrganizationID: "o1"}}
	st.Rounds = []store.Round{{ID: "r1", HackathonID: "h1", Name: "Finals",
		EndDate: tp(time.Now().Add(12 * time.Hour)), IsActive: true}}
	st.Teams = []store.Team{{ID: "t1", HackathonID: "h1", OrganizationID: "o1", Name: "Ghosts"}}
	return st
}

func TestComposeElevatedRiskIncludesTips(t *testing.T) {
	c := newTestComposer(composerFixture())

	text := c.Compose(context.Background(), "t1", "r1")
	assert.Contains(t, text, "Ghosts")
	assert.Contains(t, text, "Finals")
	assert.Contains(t, text, "A tip from us:", "elevated risk works recommendations in")
}

func TestComposeLowRiskOmitsTips(t *testing.T) {
	st := composerFixture()
	link := "https://example.com/demo"
	st.Rounds[0].EndDate = tp(time.Now().AddDate(0, 0, 14))
	st.Submissions = []store.Submission{{ID: "s1", TeamID: "t1", RoundID: "r1", Link: &link}}
	st.MessageCounts["t1"] = 10

	c := newTestComposer(st)
	text := c.Compose(context.Background(), "t1", "r1")
	assert.Contains(t, text, "Ghosts")
	assert.NotContains(t, text, "A tip from us:")
}

func TestComposeFallsBackToGenericReminder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*storetest.Fake)
	}{
		{
			name:   "unknown round",
			mutate: func(st *storetest.Fake) { st.Rounds = nil },
		},
		{
			name:   "round without deadline",
			mutate: func(st *storetest.Fake) { st.Rounds[0].EndDate = nil },
		},
		{
			name:   "unknown team",
			mutate: func(st *storetest.Fake) { st.Teams = nil },
		},
		{
			name:   "assessment failure",
			mutate: func(st *storetest.Fake) { st.Errs["TeamMessageCountSince"] = assert.AnError },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := composerFixture()
			tt.mutate(st)

			c := newTestComposer(st)
			text := c.Compose(context.Background(), "t1", "r1")
			assert.Equal(t, genericReminder, text)
		})
	}
}

func TestTemplateReminderCapsRecommendations(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	a := &risk.Assessment{
		RiskLevel:       risk.LevelCritical,
		Recommendations: []string{"one", "two", "three", "four"},
	}

	text := templateReminder("Ghosts", "Finals", deadline, a)
	assert.Contains(t, text, "one; two")
	assert.NotContains(t, text, "three")
	assert.True(t, strings.HasSuffix(text, "get your submission in!"))
}

func TestTemplateReminderStatesDeadline(t *testing.T) {
	deadline := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	a := &risk.Assessment{RiskLevel: risk.LevelMedium}

	text := templateReminder("Ghosts", "Finals", deadline, a)
	assert.Contains(t, text, "Tue Mar 10 at 18:00 UTC")
}
