package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the given number of days
// before now.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// toolResult serializes v, or reports err as a tool error. Too little history
// is not logged.
func (h *handlers) toolResult(tool string, v any, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, growth.ErrInsufficientData) {
		return mcp.NewToolResultError("not enough history yet: " + err.Error()), nil
	}
	if err != nil {
		h.log.Error("mcp "+tool, "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Tool definitions ---

var toolGetStrengthIndex = mcp.NewTool("get_strength_index",
	mcp.WithDescription("Current strength index (SI): best estimated one-rep maxes relative to bodyweight, weighted by muscle group. Returns the total, the per-group breakdown and the best lift per exercise."),
)

var toolGetStrengthHistory = mcp.NewTool("get_strength_history",
	mcp.WithDescription("Stored strength index snapshots over a time range, with the change from the previous snapshot."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 365 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetGrowthForecast = mcp.NewTool("get_growth_forecast",
	mcp.WithDescription("Forecast the strength index or one exercise's estimated 1RM. Returns the fitted trend, projected values, growth score and detected anomalies."),
	mcp.WithString("exercise", mcp.Description("Exercise name. Omit to forecast the strength index.")),
	mcp.WithString("strategy", mcp.Description("Forecast model. Defaults to the server setting."), mcp.Enum("ols", "ewma")),
	mcp.WithNumber("days", mcp.Description("Days to project forward. Defaults to the server setting.")),
)

var toolGetRecoveryScore = mcp.NewTool("get_recovery_score",
	mcp.WithDescription("Recovery readiness (0-100) from recent sleep, training intensity, muscle fatigue and consecutive training days, with a training recommendation and advice."),
)

var toolGetExerciseRecommendation = mcp.NewTool("get_exercise_recommendation",
	mcp.WithDescription("Suggested weight, sets and reps for the next session of an exercise, based on its history, RPE and current recovery."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (e.g. 'Bench Press', 'Squat')")),
)

var toolGetWorkoutPlan = mcp.NewTool("get_workout_plan",
	mcp.WithDescription("Workout plan recommending every recently trained exercise. Flags a deload week when the strength index falls well below its trend."),
	mcp.WithString("muscle_group", mcp.Description("Restrict the plan to one muscle group."), mcp.Enum("chest", "back", "legs", "shoulders", "arms", "core")),
)

var toolGetRestDay = mcp.NewTool("get_rest_day",
	mcp.WithDescription("Whether to rest today and when training is next appropriate, given the weekly target frequency."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Logged workout sessions with exercises and sets."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

// --- Tool handlers ---

func (h *handlers) getStrengthIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.ds.StrengthIndex(ctx, UserIDFromContext(ctx))
	return h.toolResult("get_strength_index", report, err)
}

func (h *handlers) getStrengthHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 365)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	snaps, err := h.ds.SIHistory(ctx, UserIDFromContext(ctx), start, end)
	if snaps == nil {
		snaps = []models.StrengthIndexSnapshot{}
	}
	return h.toolResult("get_strength_history", snaps, err)
}

func (h *handlers) getGrowthForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strategy := req.GetString("strategy", "")
	if strategy != "" {
		if _, err := growth.ParseStrategy(strategy); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	days := req.GetInt("days", 0)
	if days < 0 {
		return mcp.NewToolResultError("days must not be negative"), nil
	}
	series := req.GetString("exercise", "")
	if series == "" {
		series = insights.SeriesSI
	}
	fc, err := h.ds.Growth(ctx, UserIDFromContext(ctx), series, strategy, days)
	return h.toolResult("get_growth_forecast", fc, err)
}

func (h *handlers) getRecoveryScore(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score, err := h.ds.Recovery(ctx, UserIDFromContext(ctx))
	return h.toolResult("get_recovery_score", score, err)
}

func (h *handlers) getExerciseRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil || exercise == "" {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	rec, err := h.ds.Recommendation(ctx, UserIDFromContext(ctx), exercise)
	return h.toolResult("get_exercise_recommendation", rec, err)
}

func (h *handlers) getWorkoutPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var group models.MuscleGroup
	if raw := req.GetString("muscle_group", ""); raw != "" {
		g, ok := models.ParseMuscleGroup(raw)
		if !ok {
			return mcp.NewToolResultError("unknown muscle group: " + raw), nil
		}
		group = g
	}
	plan, err := h.ds.Plan(ctx, UserIDFromContext(ctx), group)
	return h.toolResult("get_workout_plan", plan, err)
}

func (h *handlers) getRestDay(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := h.ds.RestDay(ctx, UserIDFromContext(ctx))
	return h.toolResult("get_rest_day", d, err)
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 7)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	sessions, err := h.ds.Workouts(ctx, UserIDFromContext(ctx), start, end)
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	return h.toolResult("get_workouts", sessions, err)
}
