// Package handler provides HTTP handlers for the exposed operations. The
// handlers are thin controllers: they validate input and call into the
// sweep, risk, and reminder components.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackhub-dev/hackhub-backend/internal/api/respond"
	"github.com/hackhub-dev/hackhub-backend/internal/config"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/sweep"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool    *pgxpool.Pool
	engine  *risk.Engine
	sweeper *sweep.Sweeper
	cfg     *config.Config
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(pool *pgxpool.Pool, engine *risk.Engine, sweeper *sweep.Sweeper, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		pool:    pool,
		engine:  engine,
		sweeper: sweeper,
		cfg:     cfg,
		logger:  logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "HackHub Rounds API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	var n int
	err := h.pool.QueryRow(r.Context(), "health_check").Scan(&n)
	if err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
