package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/engine/strength"
	"github.com/claude/raptorfit/internal/models"
)

// SeriesSI selects the aggregate strength index series.
const SeriesSI = "si"

// Growth forecasts a series with the named strategy. series is "si" or an
// exercise name; an empty strategy uses the configured one and days > 0
// overrides the forecast horizon.
func (s *Service) Growth(ctx context.Context, userID int, series, strategy string, days int) (*growth.Forecast, error) {
	if strategy == "" {
		strategy = s.cfg.ForecastStrategy
	}
	st, err := growth.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	olsDays, ewmaDays := s.cfg.OLSFutureDays, s.cfg.EWMAFutureDays
	if days > 0 {
		olsDays, ewmaDays = days, days
	}
	f, err := growth.NewForecaster(st, olsDays, ewmaDays)
	if err != nil {
		return nil, err
	}

	points, err := s.series(ctx, userID, series, s.now())
	if err != nil {
		return nil, err
	}
	fc, err := f.Forecast(points)
	if err != nil {
		return nil, fmt.Errorf("forecasting %s: %w", seriesLabel(series), err)
	}
	return fc, nil
}

// ExerciseGrowth compares an exercise's 1RM trend, or the SI series, to its
// logarithmic growth curve.
func (s *Service) ExerciseGrowth(ctx context.Context, userID int, series string, weeks int) (*growth.GrowthAssessment, error) {
	points, err := s.series(ctx, userID, series, s.now())
	if err != nil {
		return nil, err
	}
	if isSI(series) {
		return growth.ForecastSIGrowth(points, weeks)
	}
	return growth.AssessExerciseGrowth(series, points, weeks)
}

// AnomalyReport lists day-over-day spikes with a smoothed overlay.
type AnomalyReport struct {
	Series   string                   `json:"series"`
	Spikes   []growth.Spike           `json:"spikes"`
	Smoothed []models.TimeSeriesPoint `json:"smoothed"`
}

// Anomalies scans a series for spikes and drops.
func (s *Service) Anomalies(ctx context.Context, userID int, series string) (*AnomalyReport, error) {
	points, err := s.series(ctx, userID, series, s.now())
	if err != nil {
		return nil, err
	}
	return &AnomalyReport{
		Series:   seriesLabel(series),
		Spikes:   growth.DetectSpikes(points),
		Smoothed: growth.MovingAverage(points, growth.DefaultMovingAverageWindow),
	}, nil
}

func (s *Service) series(ctx context.Context, userID int, series string, now time.Time) ([]models.TimeSeriesPoint, error) {
	if isSI(series) {
		return s.siSeries(ctx, userID, now)
	}
	sessions, err := s.history(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return ExerciseSeries(sessions, series), nil
}

// ExerciseSeries is the best estimated 1RM of exercise in each session that
// contains it, oldest first.
func ExerciseSeries(sessions []models.WorkoutSession, exercise string) []models.TimeSeriesPoint {
	key := models.NormalizeExerciseName(exercise)
	points := []models.TimeSeriesPoint{}
	for _, perf := range models.ExerciseHistories(sessions)[key] {
		var best float64
		for _, set := range perf.Sets {
			if set.Reps <= 0 || set.Weight <= 0 {
				continue
			}
			if orm := strength.OneRepMax(set.Weight, set.Reps); orm > best {
				best = orm
			}
		}
		if best > 0 {
			points = append(points, models.TimeSeriesPoint{Date: perf.Date, Value: round2(best)})
		}
	}
	return points
}

func isSI(series string) bool {
	s := strings.ToLower(strings.TrimSpace(series))
	return s == "" || s == SeriesSI
}

func seriesLabel(series string) string {
	if isSI(series) {
		return SeriesSI
	}
	return models.NormalizeExerciseName(series)
}
