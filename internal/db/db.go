// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackhub-dev/hackhub-backend/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the store layer uses.
// Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Rounds
		"round_by_id": `
			SELECT id, hackathon_id, name, description, start_date, end_date, is_active, hide_scores
			FROM ` + config.RoundsTable + ` WHERE id = $1`,
		"rounds_with_schedule": `
			SELECT id, hackathon_id, name, description, start_date, end_date, is_active, hide_scores
			FROM ` + config.RoundsTable + `
			WHERE start_date IS NOT NULL OR end_date IS NOT NULL`,
		"active_rounds_with_deadline": `
			SELECT id, hackathon_id, name, description, start_date, end_date, is_active, hide_scores
			FROM ` + config.RoundsTable + `
			WHERE is_active = true AND end_date IS NOT NULL`,
		"set_round_active": "UPDATE " + config.RoundsTable + " SET is_active = $2 WHERE id = $1",

		// Hackathons
		"hackathon_containing_round": `
			SELECT h.id, h.name, h.organization_id
			FROM ` + config.HackathonsTable + ` h
			JOIN ` + config.RoundsTable + ` r ON r.hackathon_id = h.id
			WHERE r.id = $1`,

		// Teams
		"team_by_id": `
			SELECT id, hackathon_id, organization_id, name, member_ids, mentor_id
			FROM ` + config.TeamsTable + ` WHERE id = $1`,
		"teams_for_hackathon": `
			SELECT id, hackathon_id, organization_id, name, member_ids, mentor_id
			FROM ` + config.TeamsTable + ` WHERE hackathon_id = $1
			ORDER BY created_at`,

		// Submissions
		"submission_for_team_round": `
			SELECT id, team_id, round_id, link, file_url, score, feedback, created_at
			FROM ` + config.SubmissionsTable + ` WHERE team_id = $1 AND round_id = $2`,
		"team_on_time_rate": `
			SELECT
				COUNT(*) FILTER (WHERE s.created_at <= r.end_date),
				COUNT(*)
			FROM ` + config.SubmissionsTable + ` s
			JOIN ` + config.RoundsTable + ` r ON r.id = s.round_id
			WHERE s.team_id = $1 AND r.end_date IS NOT NULL`,

		// Messages
		"team_message_count_since": `
			SELECT COUNT(*) FROM ` + config.MessagesTable + `
			WHERE team_id = $1 AND sender_id IS NOT NULL AND created_at >= $2`,
		"insert_message": `
			INSERT INTO ` + config.MessagesTable + ` (id, team_id, organization_id, sender_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,

		// Organizations / users
		"organization_by_id": "SELECT id, name FROM " + config.OrganizationsTable + " WHERE id = $1",
		"user_by_id":         "SELECT id, name, organization_id, role FROM " + config.UsersTable + " WHERE id = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
