package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store on a pgx connection pool. All queries use
// prepared statements registered in internal/db.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Store = (*Postgres)(nil)

func (p *Postgres) RoundByID(ctx context.Context, id string) (*Round, error) {
	r, err := scanRound(p.pool.QueryRow(ctx, "round_by_id", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("round by id: %w", err)
	}
	return r, nil
}

func (p *Postgres) RoundsWithSchedule(ctx context.Context) ([]Round, error) {
	return p.queryRounds(ctx, "rounds_with_schedule")
}

func (p *Postgres) ActiveRoundsWithDeadline(ctx context.Context) ([]Round, error) {
	return p.queryRounds(ctx, "active_rounds_with_deadline")
}

func (p *Postgres) queryRounds(ctx context.Context, stmt string) ([]Round, error) {
	rows, err := p.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", stmt, err)
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		rounds = append(rounds, *r)
	}
	return rounds, rows.Err()
}

func (p *Postgres) SetRoundActive(ctx context.Context, id string, active bool) error {
	tag, err := p.pool.Exec(ctx, "set_round_active", id, active)
	if err != nil {
		return fmt.Errorf("set round active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) HackathonContainingRound(ctx context.Context, roundID string) (*Hackathon, error) {
	var h Hackathon
	err := p.pool.QueryRow(ctx, "hackathon_containing_round", roundID).
		Scan(&h.ID, &h.Name, &h.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("hackathon containing round: %w", err)
	}
	return &h, nil
}

func (p *Postgres) TeamByID(ctx context.Context, id string) (*Team, error) {
	t, err := scanTeam(p.pool.QueryRow(ctx, "team_by_id", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("team by id: %w", err)
	}
	return t, nil
}

func (p *Postgres) TeamsForHackathon(ctx context.Context, hackathonID string) ([]Team, error) {
	rows, err := p.pool.Query(ctx, "teams_for_hackathon", hackathonID)
	if err != nil {
		return nil, fmt.Errorf("teams for hackathon: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (p *Postgres) SubmissionForTeamRound(ctx context.Context, teamID, roundID string) (*Submission, error) {
	var s Submission
	err := p.pool.QueryRow(ctx, "submission_for_team_round", teamID, roundID).
		Scan(&s.ID, &s.TeamID, &s.RoundID, &s.Link, &s.FileURL, &s.Score, &s.Feedback, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("submission for team round: %w", err)
	}
	return &s, nil
}

func (p *Postgres) TeamOnTimeRate(ctx context.Context, teamID string) (int, int, error) {
	var onTime, total int
	err := p.pool.QueryRow(ctx, "team_on_time_rate", teamID).Scan(&onTime, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("team on-time rate: %w", err)
	}
	return onTime, total, nil
}

func (p *Postgres) TeamMessageCountSince(ctx context.Context, teamID string, since time.Time) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, "team_message_count_since", teamID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("team message count: %w", err)
	}
	return n, nil
}

func (p *Postgres) InsertMessage(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	// System sender is stored as NULL sender_id.
	var senderID *string
	if m.Sender.Kind == SenderUser {
		senderID = &m.Sender.UserID
	}

	_, err := p.pool.Exec(ctx, "insert_message",
		m.ID, m.TeamID, m.OrganizationID, senderID, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (p *Postgres) OrganizationByID(ctx context.Context, id string) (*Organization, error) {
	var o Organization
	err := p.pool.QueryRow(ctx, "organization_by_id", id).Scan(&o.ID, &o.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("organization by id: %w", err)
	}
	return &o, nil
}

func (p *Postgres) UserByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := p.pool.QueryRow(ctx, "user_by_id", id).Scan(&u.ID, &u.Name, &u.OrganizationID, &u.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &u, nil
}

// --------------------------------------------------------------------------
// Row scanning
// --------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (*Round, error) {
	var r Round
	err := row.Scan(&r.ID, &r.HackathonID, &r.Name, &r.Description,
		&r.StartDate, &r.EndDate, &r.IsActive, &r.HideScores)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanTeam(row rowScanner) (*Team, error) {
	var t Team
	err := row.Scan(&t.ID, &t.HackathonID, &t.OrganizationID, &t.Name,
		&t.MemberIDs, &t.MentorID)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
