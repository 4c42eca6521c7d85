package mcp

import (
	"context"
	"time"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/engine/recommend"
	"github.com/claude/raptorfit/internal/engine/recovery"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
)

// DataSource abstracts the analytics layer for MCP tools. Both
// *insights.Service (local) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	StrengthIndex(ctx context.Context, userID int) (*insights.StrengthReport, error)
	SIHistory(ctx context.Context, userID int, start, end time.Time) ([]models.StrengthIndexSnapshot, error)
	Growth(ctx context.Context, userID int, series, strategy string, days int) (*growth.Forecast, error)
	Recovery(ctx context.Context, userID int) (*recovery.Score, error)
	Recommendation(ctx context.Context, userID int, exercise string) (*recommend.Recommendation, error)
	Plan(ctx context.Context, userID int, group models.MuscleGroup) (*insights.PlanReport, error)
	RestDay(ctx context.Context, userID int) (*recommend.RestDecision, error)
	DailyReadiness(ctx context.Context, userID int) (*insights.Readiness, error)
	Workouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSession, error)
}

// Compile-time check: *insights.Service satisfies DataSource.
var _ DataSource = (*insights.Service)(nil)
