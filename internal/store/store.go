// Package store defines the domain records and the repository interface the
// sweep, risk, and reminder components depend on, plus its Postgres
// implementation. The interface exposes exactly the lookups this subsystem
// needs so the core never reaches into storage shape directly.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record cannot be resolved by identifier.
var ErrNotFound = errors.New("not found")

// Store is the repository consumed by the sweep orchestrator, risk engine,
// and reminder composer.
type Store interface {
	// Rounds
	RoundByID(ctx context.Context, id string) (*Round, error)
	// RoundsWithSchedule returns every round with a start or end date set.
	RoundsWithSchedule(ctx context.Context) ([]Round, error)
	// ActiveRoundsWithDeadline returns rounds currently active with an end date.
	ActiveRoundsWithDeadline(ctx context.Context) ([]Round, error)
	SetRoundActive(ctx context.Context, id string, active bool) error

	// Hackathons
	HackathonContainingRound(ctx context.Context, roundID string) (*Hackathon, error)

	// Teams
	TeamByID(ctx context.Context, id string) (*Team, error)
	TeamsForHackathon(ctx context.Context, hackathonID string) ([]Team, error)

	// Submissions
	SubmissionForTeamRound(ctx context.Context, teamID, roundID string) (*Submission, error)
	// TeamOnTimeRate returns how many of the team's submissions landed before
	// their round's deadline, and the total number of submissions to rounds
	// that have a deadline.
	TeamOnTimeRate(ctx context.Context, teamID string) (onTime, total int, err error)

	// Messages
	TeamMessageCountSince(ctx context.Context, teamID string, since time.Time) (int, error)
	InsertMessage(ctx context.Context, m *Message) error

	// Organizations / users
	OrganizationByID(ctx context.Context, id string) (*Organization, error)
	UserByID(ctx context.Context, id string) (*User, error)
}
