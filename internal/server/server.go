package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
	"github.com/claude/raptorfit/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence the handlers read and write directly.
type Store interface {
	UserResolver
	InsertWorkoutSession(ctx context.Context, userID int, source string, s models.WorkoutSession) (uuid.UUID, int64, error)
	QueryWorkoutSessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error)
	QueryExerciseNames(ctx context.Context, userID int) ([]string, error)
	UpsertRecoveryLog(ctx context.Context, userID int, l models.RecoveryLog) error
	QueryRecoveryLogs(ctx context.Context, start, end time.Time, userID int) ([]models.RecoveryLog, error)
	GetRecoverySummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.RecoverySummaryPeriod, error)
	GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]storage.TrainingSummaryPeriod, error)
	GetProfile(ctx context.Context, userID int) (*storage.Profile, error)
	UpdateProfile(ctx context.Context, userID int, bodyweightKg float64, targetFrequency int) error
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

// Ingester stores a CSV export.
type Ingester interface {
	Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	insights *insights.Service
	alpha    Ingester
	log      *slog.Logger
	apiKey   string
	identity func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured. Requests are attributed
// to the default user until SetTailscale is called.
func New(db Store, svc *insights.Service, alphaProvider Ingester, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		insights: svc,
		alpha:    alphaProvider,
		log:      log,
		apiKey:   apiKey,
		identity: DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale resolves request identity through the tailnet.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.identity = TailscaleIdentity(lc, s.db, s.log)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.withIdentity)

		// Writes (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/workouts", s.handleCreateWorkout)
			r.Post("/ingest/alpha", s.handleAlphaIngest)
			r.Post("/recovery", s.handleCreateRecoveryLog)
			r.Put("/profile", s.handleUpdateProfile)
			r.Post("/refresh", s.handleRefresh)
		})

		// Reads (no API key; tsnet gates access)
		r.Get("/me", s.handleMe)
		r.Get("/profile", s.handleGetProfile)
		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/exercises", s.handleExercises)
		r.Get("/recovery", s.handleQueryRecovery)
		r.Get("/recovery/summary", s.handleRecoverySummary)
		r.Get("/training/summary", s.handleTrainingSummary)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)

		r.Get("/strength-index", s.handleStrengthIndex)
		r.Get("/strength-index/history", s.handleSIHistory)
		r.Get("/growth", s.handleGrowth)
		r.Get("/growth/exercise", s.handleExerciseGrowth)
		r.Get("/anomalies", s.handleAnomalies)
		r.Get("/recovery/score", s.handleRecoveryScore)
		r.Get("/recovery/predict", s.handleRecoveryPredict)
		r.Get("/recommendations/{exercise}", s.handleRecommendation)
		r.Get("/plan", s.handlePlan)
		r.Post("/adherence", s.handleAdherence)
		r.Get("/rest-day", s.handleRestDay)
		r.Get("/readiness", s.handleReadiness)
	})
}

// withIdentity applies the identity middleware current at request time.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identity(next).ServeHTTP(w, r)
	})
}

// MountMCP serves an MCP transport at /mcp behind the identity middleware.
func (s *Server) MountMCP(h http.Handler) {
	s.router.With(s.withIdentity).Handle("/mcp", h)
}

// UserIDFromRequest returns the user ID stored by the identity middleware.
func UserIDFromRequest(r *http.Request) int {
	return userIDFromContext(r)
}
