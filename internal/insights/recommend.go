package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/engine/recommend"
	"github.com/claude/raptorfit/internal/engine/recovery"
	"github.com/claude/raptorfit/internal/models"
)

// Recommendation suggests the next session for one exercise.
func (s *Service) Recommendation(ctx context.Context, userID int, exercise string) (*recommend.Recommendation, error) {
	sessions, err := s.history(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	score, err := s.Recovery(ctx, userID)
	if err != nil {
		return nil, err
	}
	hist := models.ExerciseHistories(sessions)[models.NormalizeExerciseName(exercise)]
	rec := recommend.NextWeight(exercise, hist, fatigueFactor(score.Overall), score.Overall)
	return &rec, nil
}

// PlanReport is a workout plan with the SI figures that shaped it.
type PlanReport struct {
	recommend.WorkoutPlan
	CurrentSI     float64             `json:"currentSI"`
	ExpectedSI    float64             `json:"expectedSI"`
	RecoveryScore int                 `json:"recoveryScore"`
	Deload        growth.DeloadSignal `json:"deload"`
}

// Plan recommends every exercise in the lookback window, optionally restricted
// to one muscle group.
func (s *Service) Plan(ctx context.Context, userID int, group models.MuscleGroup) (*PlanReport, error) {
	now := s.now()
	si, err := s.computeStrength(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	expected, err := s.expectedSI(ctx, userID, si.TotalSI, now)
	if err != nil {
		return nil, err
	}
	score, err := s.Recovery(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.history(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	plan := recommend.GeneratePlan(recommend.PlanInput{
		Histories:       models.ExerciseHistories(sessions),
		CurrentSI:       si.TotalSI,
		ExpectedSI:      expected,
		RecoveryScore:   score.Overall,
		DeloadThreshold: s.cfg.DeloadThreshold,
		FatigueFactor:   fatigueFactor(score.Overall),
		MuscleGroup:     group,
	})
	return &PlanReport{
		WorkoutPlan:   plan,
		CurrentSI:     si.TotalSI,
		ExpectedSI:    round2(expected),
		RecoveryScore: score.Overall,
		Deload:        growth.CheckDeload(si.TotalSI, expected, s.cfg.DeloadThreshold),
	}, nil
}

// Adherence scores a logged exercise against its prescription.
func (s *Service) Adherence(planned, actual recommend.Prescription) recommend.AdherenceResult {
	return recommend.ScoreAdherence(planned, actual)
}

// RestDay decides whether today should be a rest day.
func (s *Service) RestDay(ctx context.Context, userID int) (*recommend.RestDecision, error) {
	now := s.now()
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekStart := recommend.WeekStart(now)
	// Look back far enough to find the last workout before this week began.
	sessions, err := s.store.QueryWorkoutSessions(ctx, weekStart.AddDate(0, 0, -7), now, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recent workouts: %w", err)
	}
	var thisWeek int
	for _, w := range sessions {
		if !w.Date.Before(weekStart) {
			thisWeek++
		}
	}
	d := recommend.NextTrainingDay(lastWorkout(sessions), thisWeek, p.TargetFrequency, now)
	return &d, nil
}

// Readiness is the daily summary combining readiness, rest and strength.
type Readiness struct {
	Date          time.Time              `json:"date"`
	StrengthIndex float64                `json:"strengthIndex"`
	ExpectedSI    float64                `json:"expectedSI"`
	Deload        growth.DeloadSignal    `json:"deload"`
	Recovery      recovery.Score         `json:"recovery"`
	RestDay       recommend.RestDecision `json:"restDay"`
}

// DailyReadiness assembles the daily summary.
func (s *Service) DailyReadiness(ctx context.Context, userID int) (*Readiness, error) {
	now := s.now()
	si, err := s.computeStrength(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	expected, err := s.expectedSI(ctx, userID, si.TotalSI, now)
	if err != nil {
		return nil, err
	}
	score, err := s.Recovery(ctx, userID)
	if err != nil {
		return nil, err
	}
	rest, err := s.RestDay(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Readiness{
		Date:          now,
		StrengthIndex: si.TotalSI,
		ExpectedSI:    round2(expected),
		Deload:        growth.CheckDeload(si.TotalSI, expected, s.cfg.DeloadThreshold),
		Recovery:      *score,
		RestDay:       *rest,
	}, nil
}
