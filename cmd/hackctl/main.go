// Command hackctl is the HackHub operations CLI.
//
// Usage:
//
//	hackctl sweep run
//	hackctl sweep round --id r42
//	hackctl assess --team t1 --round r42
//	hackctl at-risk --round r42 --threshold 50
//	hackctl remind --team t1 --round r42
//	hackctl token --user u1 --role admin --ttl 24h
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hackhub-dev/hackhub-backend/internal/auth"
	"github.com/hackhub-dev/hackhub-backend/internal/config"
	"github.com/hackhub-dev/hackhub-backend/internal/db"
	"github.com/hackhub-dev/hackhub-backend/internal/oracle"
	"github.com/hackhub-dev/hackhub-backend/internal/realtime"
	"github.com/hackhub-dev/hackhub-backend/internal/reminder"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/store"
	"github.com/hackhub-dev/hackhub-backend/internal/sweep"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "hackctl",
		Short: "HackHub rounds operations CLI",
	}

	root.AddCommand(sweepCmd())
	root.AddCommand(assessCmd())
	root.AddCommand(atRiskCmd())
	root.AddCommand(remindCmd())
	root.AddCommand(tokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// Shared wiring
// --------------------------------------------------------------------------

type deps struct {
	cfg     *config.Config
	store   store.Store
	engine  *risk.Engine
	sweeper *sweep.Sweeper
}

// run wires config, pool, and components, then invokes fn.
func run(fn func(ctx context.Context, d *deps) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.NewPostgres(pool.Pool)
	oc := oracle.NewClient(cfg.OracleAPIKey, cfg.OracleModel, cfg.OracleTimeout, logger)
	engine := risk.NewEngine(st, oc, logger)
	composer := reminder.NewComposer(st, engine, oc, logger)
	// No live connections in a CLI run; a fresh hub drops published events.
	sweeper := sweep.New(st, engine, composer, realtime.NewHub(logger), sweep.Config{
		RemindersEnabled: cfg.RemindersEnabled,
		Threshold:        cfg.RiskThreshold,
		Workers:          cfg.SweepWorkers,
		AutoActivate:     cfg.LifecycleAutoActivate,
	}, logger)

	return fn(ctx, &deps{cfg: cfg, store: st, engine: engine, sweeper: sweeper})
}

// --------------------------------------------------------------------------
// sweep commands
// --------------------------------------------------------------------------

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run lifecycle and reminder sweeps",
	}
	cmd.AddCommand(sweepRunCmd())
	cmd.AddCommand(sweepRoundCmd())
	return cmd
}

func sweepRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one complete sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, d *deps) error {
				start := time.Now()
				result := d.sweeper.Run(ctx)
				logger.Info("Sweep finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				return nil
			})
		},
	}
}

func sweepRoundCmd() *cobra.Command {
	var roundID string
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Process a single round now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, d *deps) error {
				result, err := d.sweeper.ProcessRound(ctx, roundID)
				if err != nil {
					return err
				}
				logger.Info("Round processed", "round_id", roundID, "summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&roundID, "id", "", "Round ID")
	cmd.MarkFlagRequired("id")
	return cmd
}

// --------------------------------------------------------------------------
// assess / at-risk / remind
// --------------------------------------------------------------------------

func assessCmd() *cobra.Command {
	var teamID, roundID string
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Print the risk assessment for a team/round pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, d *deps) error {
				a, err := d.engine.Assess(ctx, teamID, roundID)
				if err != nil {
					return err
				}
				return printJSON(a)
			})
		},
	}
	cmd.Flags().StringVar(&teamID, "team", "", "Team ID")
	cmd.Flags().StringVar(&roundID, "round", "", "Round ID")
	cmd.MarkFlagRequired("team")
	cmd.MarkFlagRequired("round")
	return cmd
}

func atRiskCmd() *cobra.Command {
	var roundID string
	var threshold int
	cmd := &cobra.Command{
		Use:   "at-risk",
		Short: "Print a round's at-risk teams, ranked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, d *deps) error {
				return printJSON(d.engine.AtRiskTeams(ctx, roundID, threshold))
			})
		},
	}
	cmd.Flags().StringVar(&roundID, "round", "", "Round ID")
	cmd.Flags().IntVar(&threshold, "threshold", risk.DefaultThreshold, "Risk threshold")
	cmd.MarkFlagRequired("round")
	return cmd
}

func remindCmd() *cobra.Command {
	var teamID, roundID string
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send a reminder to one team now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, d *deps) error {
				msg, err := d.sweeper.SendReminderNow(ctx, teamID, roundID)
				if err != nil {
					return err
				}
				logger.Info("Reminder persisted", "message_id", msg.ID, "team_id", msg.TeamID)
				fmt.Println(msg.Content)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&teamID, "team", "", "Team ID")
	cmd.Flags().StringVar(&roundID, "round", "", "Round ID")
	cmd.MarkFlagRequired("team")
	cmd.MarkFlagRequired("round")
	return cmd
}

// --------------------------------------------------------------------------
// token
// --------------------------------------------------------------------------

func tokenCmd() *cobra.Command {
	var userID, orgID, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(cfg.JWTSecret, userID, orgID, role, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User ID (token subject)")
	cmd.Flags().StringVar(&orgID, "org", "", "Organization ID")
	cmd.Flags().StringVar(&role, "role", "member", "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("user")
	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
