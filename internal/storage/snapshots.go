package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/raptorfit/internal/models"
	"github.com/jackc/pgx/v5"
)

const snapshotColumns = `id, date, total_si, chest, back, legs, shoulders, arms, core, change, change_percent`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (models.StrengthIndexSnapshot, error) {
	var s models.StrengthIndexSnapshot
	err := row.Scan(&s.ID, &s.Date, &s.TotalSI,
		&s.Breakdown.Chest, &s.Breakdown.Back, &s.Breakdown.Legs,
		&s.Breakdown.Shoulders, &s.Breakdown.Arms, &s.Breakdown.Core,
		&s.Change, &s.ChangePercent)
	return s, err
}

// LatestSnapshot returns the most recent strength index snapshot, or ErrNotFound.
func (db *DB) LatestSnapshot(ctx context.Context, userID int) (*models.StrengthIndexSnapshot, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+`
		 FROM strength_snapshots
		 WHERE user_id = $1
		 ORDER BY date DESC, id DESC
		 LIMIT 1`, userID)
	s, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return &s, nil
}

// InsertSnapshot stores a snapshot and returns its ID.
func (db *DB) InsertSnapshot(ctx context.Context, userID int, s models.StrengthIndexSnapshot) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO strength_snapshots (user_id, date, total_si, chest, back, legs, shoulders, arms, core, change, change_percent)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING id`,
		userID, s.Date, s.TotalSI,
		s.Breakdown.Chest, s.Breakdown.Back, s.Breakdown.Legs,
		s.Breakdown.Shoulders, s.Breakdown.Arms, s.Breakdown.Core,
		s.Change, s.ChangePercent,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	return id, nil
}

// QuerySnapshots retrieves snapshots in a time range, oldest first.
func (db *DB) QuerySnapshots(ctx context.Context, start, end time.Time, userID int) ([]models.StrengthIndexSnapshot, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+snapshotColumns+`
		 FROM strength_snapshots
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date ASC, id ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var result []models.StrengthIndexSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
