package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/raptorfit/internal/engine/recovery"
	"github.com/claude/raptorfit/internal/engine/strength"
	"github.com/claude/raptorfit/internal/models"
)

// Trailing windows loaded for the readiness score. Sleep keeps a spare week so
// a gap in logging still yields seven entries.
const (
	sleepWindowDays   = 14
	workoutWindowDays = 8
)

// Recovery scores readiness from recent sleep and training.
func (s *Service) Recovery(ctx context.Context, userID int) (*recovery.Score, error) {
	now := s.now()
	logs, err := s.store.QueryRecoveryLogs(ctx, now.AddDate(0, 0, -sleepWindowDays), now, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recovery logs: %w", err)
	}
	sessions, err := s.store.QueryWorkoutSessions(ctx, now.AddDate(0, 0, -workoutWindowDays), now, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recent workouts: %w", err)
	}

	sleep := make([]recovery.SleepLog, len(logs))
	for i, l := range logs {
		sleep[i] = recovery.SleepFromLog(l)
	}
	intensity := make([]recovery.IntensityLog, len(sessions))
	for i, w := range sessions {
		intensity[i] = recovery.IntensityFromSession(w, strength.ResolveGroup)
	}

	score := recovery.Compute(sleep, intensity, now)
	return &score, nil
}

// RecoveryPrediction estimates when groups trained at rpe are ready again.
func (s *Service) RecoveryPrediction(groups []models.MuscleGroup, rpe float64) recovery.Prediction {
	return recovery.PredictRecoveryTime(groups, rpe, s.now())
}

// fatigueFactor scales load progression by readiness, never below half.
func fatigueFactor(overall int) float64 {
	f := float64(overall) / 100
	if f < 0.5 {
		return 0.5
	}
	if f > 1 {
		return 1
	}
	return f
}

func lastWorkout(sessions []models.WorkoutSession) time.Time {
	var last time.Time
	for _, w := range sessions {
		if w.Date.After(last) {
			last = w.Date
		}
	}
	return last
}
