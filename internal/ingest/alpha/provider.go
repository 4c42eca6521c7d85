package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/models"
	"github.com/claude/raptorfit/internal/observability"
	"github.com/google/uuid"
)

// Source is recorded with every session imported from Alpha Progression.
const Source = "alpha_progression"

// Store is the persistence the provider writes to.
type Store interface {
	DeleteWorkoutSessionsOn(ctx context.Context, userID int, day time.Time) (int64, error)
	InsertWorkoutSession(ctx context.Context, userID int, source string, s models.WorkoutSession) (uuid.UUID, int64, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store Store
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(store Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses a CSV export and stores its sessions. Existing sessions on the
// same dates are replaced so re-imports reflect the latest export.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(parsed)}
	sessions := make([]models.WorkoutSession, 0, len(parsed))
	unmapped := make(map[string]struct{})
	seenDay := make(map[time.Time]bool)
	var days []time.Time

	for _, a := range parsed {
		s, warmups, names := ToWorkoutSession(a)
		result.WarmupsSkipped += warmups
		for _, n := range names {
			unmapped[n] = struct{}{}
		}
		if len(s.Exercises) == 0 {
			continue
		}
		for _, ex := range s.Exercises {
			result.SetsReceived += len(ex.Sets)
		}
		sessions = append(sessions, s)
		y, m, d := s.Date.Date()
		if day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC); !seenDay[day] {
			seenDay[day] = true
			days = append(days, day)
		}
	}

	for _, day := range days {
		n, err := p.store.DeleteWorkoutSessionsOn(ctx, userID, day)
		if err != nil {
			return nil, fmt.Errorf("deleting existing sessions for %s: %w", day.Format("2006-01-02"), err)
		}
		result.SessionsReplaced += n
	}

	for _, s := range sessions {
		_, sets, err := p.store.InsertWorkoutSession(ctx, userID, Source, s)
		if err != nil {
			return nil, fmt.Errorf("inserting session %s: %w", s.Date.Format("2006-01-02"), err)
		}
		result.SessionsInserted++
		result.SetsInserted += sets
	}

	for n := range unmapped {
		result.Unmapped = append(result.Unmapped, n)
	}
	sort.Strings(result.Unmapped)
	if len(result.Unmapped) > 0 {
		p.log.Warn("imported exercises without muscle group", "exercises", result.Unmapped)
	}

	observability.RecordImport(Source, result.SessionsReceived, result.SessionsInserted, time.Now())
	p.log.Info("alpha progression import complete",
		"user_id", userID,
		"sessions", result.SessionsInserted,
		"sets", result.SetsInserted,
		"replaced", result.SessionsReplaced,
	)
	return result, nil
}
