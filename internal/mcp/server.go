package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RaptorFit", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("RaptorFit training analytics server. Query the strength index, growth forecasts, recovery readiness and next-session recommendations. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetStrengthIndex, Handler: h.getStrengthIndex},
		server.ServerTool{Tool: toolGetStrengthHistory, Handler: h.getStrengthHistory},
		server.ServerTool{Tool: toolGetGrowthForecast, Handler: h.getGrowthForecast},
		server.ServerTool{Tool: toolGetRecoveryScore, Handler: h.getRecoveryScore},
		server.ServerTool{Tool: toolGetExerciseRecommendation, Handler: h.getExerciseRecommendation},
		server.ServerTool{Tool: toolGetWorkoutPlan, Handler: h.getWorkoutPlan},
		server.ServerTool{Tool: toolGetRestDay, Handler: h.getRestDay},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDailyReadiness, Handler: h.dailyReadiness},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resDailyReadiness = mcp.NewResource(
	"raptorfit://daily_readiness",
	"Daily Readiness",
	mcp.WithResourceDescription("Today's strength index, deload signal, recovery score and rest-day decision"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"raptorfit://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workout sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)
