// Package insights loads a user's training data, runs it through the analytics
// engines and persists strength index snapshots.
package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/claude/raptorfit/internal/config"
	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/engine/strength"
	"github.com/claude/raptorfit/internal/models"
	"github.com/claude/raptorfit/internal/observability"
	"github.com/claude/raptorfit/internal/storage"
)

// snapshotEpsilon is the smallest total change that earns a new snapshot.
const snapshotEpsilon = 0.1

// Store is the persistence the service reads from and writes snapshots to.
type Store interface {
	GetProfile(ctx context.Context, userID int) (*storage.Profile, error)
	QueryWorkoutSessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error)
	QueryRecoveryLogs(ctx context.Context, start, end time.Time, userID int) ([]models.RecoveryLog, error)
	LatestSnapshot(ctx context.Context, userID int) (*models.StrengthIndexSnapshot, error)
	InsertSnapshot(ctx context.Context, userID int, s models.StrengthIndexSnapshot) (int64, error)
	QuerySnapshots(ctx context.Context, start, end time.Time, userID int) ([]models.StrengthIndexSnapshot, error)
}

// Service runs the analytics pipeline for one store.
type Service struct {
	store Store
	cfg   config.AnalyticsConfig
	log   *slog.Logger
	now   func() time.Time
}

// New creates a Service. Zero analytics fields fall back to config defaults.
func New(store Store, cfg config.AnalyticsConfig, log *slog.Logger) *Service {
	def := config.DefaultAnalytics()
	if cfg.BodyweightKg <= 0 {
		cfg.BodyweightKg = def.BodyweightKg
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = def.LookbackDays
	}
	if cfg.DeloadThreshold <= 0 {
		cfg.DeloadThreshold = def.DeloadThreshold
	}
	if cfg.TargetFrequency <= 0 {
		cfg.TargetFrequency = def.TargetFrequency
	}
	if cfg.ForecastStrategy == "" {
		cfg.ForecastStrategy = def.ForecastStrategy
	}
	return &Service{store: store, cfg: cfg, log: log, now: time.Now}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// RefreshResult reports what Refresh computed and whether it was stored.
type RefreshResult struct {
	Snapshot  models.StrengthIndexSnapshot `json:"snapshot"`
	Persisted bool                         `json:"persisted"`
	Unmapped  []string                     `json:"unmapped,omitempty"`
}

// Refresh recomputes the strength index and stores a snapshot unless the total
// moved by no more than 0.1 since the last one.
func (s *Service) Refresh(ctx context.Context, userID int) (*RefreshResult, error) {
	res, err := s.refresh(ctx, userID)
	if err != nil {
		observability.RecordRefresh(observability.OutcomeError)
		return nil, err
	}
	if res.Persisted {
		observability.RecordRefresh(observability.OutcomePersisted)
	} else {
		observability.RecordRefresh(observability.OutcomeUnchanged)
	}
	observability.RecordStrengthIndex(strconv.Itoa(userID), res.Snapshot.TotalSI)
	return res, nil
}

func (s *Service) refresh(ctx context.Context, userID int) (*RefreshResult, error) {
	now := s.now()
	si, err := s.computeStrength(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	if len(si.Unmapped) > 0 {
		s.log.Warn("exercises without muscle group excluded from strength index",
			"user_id", userID, "exercises", si.Unmapped)
		observability.RecordUnmapped(len(si.Unmapped))
	}

	prior, err := s.store.LatestSnapshot(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}

	snap := models.StrengthIndexSnapshot{
		Date:      now,
		TotalSI:   si.TotalSI,
		Breakdown: si.Breakdown,
	}
	if prior != nil {
		snap.Change = round2(si.TotalSI - prior.TotalSI)
		if prior.TotalSI > 0 {
			snap.ChangePercent = round2(snap.Change / prior.TotalSI * 100)
		}
		if math.Abs(snap.Change) <= snapshotEpsilon {
			return &RefreshResult{Snapshot: snap, Unmapped: si.Unmapped}, nil
		}
	}

	id, err := s.store.InsertSnapshot(ctx, userID, snap)
	if err != nil {
		return nil, fmt.Errorf("storing snapshot: %w", err)
	}
	snap.ID = id
	s.log.Info("strength index snapshot stored",
		"user_id", userID, "total_si", snap.TotalSI, "change", snap.Change)
	return &RefreshResult{Snapshot: snap, Persisted: true, Unmapped: si.Unmapped}, nil
}

// StrengthReport is the current strength index with the inputs it was built from.
type StrengthReport struct {
	strength.Result
	BodyweightKg float64   `json:"bodyweightKg"`
	AsOf         time.Time `json:"asOf"`
}

// StrengthIndex computes the index over the lookback window without storing it.
func (s *Service) StrengthIndex(ctx context.Context, userID int) (*StrengthReport, error) {
	now := s.now()
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.history(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return &StrengthReport{
		Result:       strength.Compute(sessions, p.BodyweightKg),
		BodyweightKg: p.BodyweightKg,
		AsOf:         now,
	}, nil
}

// SIHistory returns stored snapshots in [start, end], oldest first.
func (s *Service) SIHistory(ctx context.Context, userID int, start, end time.Time) ([]models.StrengthIndexSnapshot, error) {
	snaps, err := s.store.QuerySnapshots(ctx, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	return snaps, nil
}

// Workouts returns the sessions logged in [start, end].
func (s *Service) Workouts(ctx context.Context, userID int, start, end time.Time) ([]models.WorkoutSession, error) {
	sessions, err := s.store.QueryWorkoutSessions(ctx, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	return sessions, nil
}

func (s *Service) computeStrength(ctx context.Context, userID int, now time.Time) (strength.Result, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return strength.Result{}, err
	}
	sessions, err := s.history(ctx, userID, now)
	if err != nil {
		return strength.Result{}, err
	}
	return strength.Compute(sessions, p.BodyweightKg), nil
}

// profile returns the stored profile, or one built from config defaults when
// the user has none.
func (s *Service) profile(ctx context.Context, userID int) (*storage.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &storage.Profile{
			UserID:          userID,
			BodyweightKg:    s.cfg.BodyweightKg,
			TargetFrequency: s.cfg.TargetFrequency,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if p.BodyweightKg <= 0 {
		p.BodyweightKg = s.cfg.BodyweightKg
	}
	if p.TargetFrequency <= 0 {
		p.TargetFrequency = s.cfg.TargetFrequency
	}
	return p, nil
}

func (s *Service) history(ctx context.Context, userID int, now time.Time) ([]models.WorkoutSession, error) {
	start := now.AddDate(0, 0, -s.cfg.LookbackDays)
	sessions, err := s.store.QueryWorkoutSessions(ctx, start, now, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout history: %w", err)
	}
	return sessions, nil
}

func (s *Service) siSeries(ctx context.Context, userID int, now time.Time) ([]models.TimeSeriesPoint, error) {
	snaps, err := s.store.QuerySnapshots(ctx, now.AddDate(0, 0, -s.cfg.LookbackDays), now, userID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	points := make([]models.TimeSeriesPoint, len(snaps))
	for i, snap := range snaps {
		points[i] = models.TimeSeriesPoint{Date: snap.Date, Value: snap.TotalSI}
	}
	return points, nil
}

// expectedSI is the configured forecaster's fitted value at the last snapshot.
// Too little history yields current so that no deload is signalled.
func (s *Service) expectedSI(ctx context.Context, userID int, current float64, now time.Time) (float64, error) {
	series, err := s.siSeries(ctx, userID, now)
	if err != nil {
		return 0, err
	}
	strategy, err := growth.ParseStrategy(s.cfg.ForecastStrategy)
	if err != nil {
		return 0, err
	}
	f, err := growth.NewForecaster(strategy, s.cfg.OLSFutureDays, s.cfg.EWMAFutureDays)
	if err != nil {
		return 0, err
	}
	fc, err := f.Forecast(series)
	if errors.Is(err, growth.ErrInsufficientData) {
		return current, nil
	}
	if err != nil {
		return 0, err
	}
	return fc.Expected, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
