package api

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/hackhub-dev/hackhub-backend/internal/api/handler"
	"github.com/hackhub-dev/hackhub-backend/internal/auth"
	"github.com/hackhub-dev/hackhub-backend/internal/config"
	"github.com/hackhub-dev/hackhub-backend/internal/realtime"
	"github.com/hackhub-dev/hackhub-backend/internal/risk"
	"github.com/hackhub-dev/hackhub-backend/internal/sweep"
)

//go:embed openapi.json
var openAPISpec []byte

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(
	pool *pgxpool.Pool,
	engine *risk.Engine,
	sweeper *sweep.Sweeper,
	hub *realtime.Hub,
	verifier auth.Verifier,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time", "Retry-After"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, engine, sweeper, cfg, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Swagger UI over the embedded OpenAPI document
	r.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openAPISpec)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/openapi.json"),
	))

	// Live fan-out connect (authenticates inside the handler; browser
	// websocket clients cannot set Authorization headers)
	r.Get("/ws", realtime.ServeWS(hub, verifier, logger))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(verifier))

		// Risk
		r.Get("/rounds/{roundID}/teams/{teamID}/risk", h.GetRiskAssessment)
		r.Get("/rounds/{roundID}/at-risk", h.GetAtRiskTeams)

		// Manual reminder trigger
		r.Post("/rounds/{roundID}/teams/{teamID}/remind", h.SendReminderNow)

		// Administrative sweep triggers
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/sweep/run", h.RunSweep)
			r.Post("/sweep/rounds/{roundID}", h.ProcessRound)
		})
	})

	return r
}
