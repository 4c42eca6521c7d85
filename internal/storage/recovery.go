package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

// UpsertRecoveryLog stores the recovery entry for a day, replacing any earlier
// entry for the same date.
func (db *DB) UpsertRecoveryLog(ctx context.Context, userID int, l models.RecoveryLog) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO recovery_logs (user_id, date, sleep_hours, sleep_quality, soreness, stress)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (user_id, date) DO UPDATE SET
			sleep_hours = EXCLUDED.sleep_hours,
			sleep_quality = EXCLUDED.sleep_quality,
			soreness = EXCLUDED.soreness,
			stress = EXCLUDED.stress,
			updated_at = NOW()`,
		userID, l.Date, l.SleepHours, l.SleepQuality, l.Soreness, l.Stress)
	if err != nil {
		return fmt.Errorf("upserting recovery log %s: %w", l.Date.Format("2006-01-02"), err)
	}
	return nil
}

// QueryRecoveryLogs retrieves recovery entries in a date range, newest first.
func (db *DB) QueryRecoveryLogs(ctx context.Context, start, end time.Time, userID int) ([]models.RecoveryLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date, sleep_hours, sleep_quality, soreness, stress
		 FROM recovery_logs
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recovery logs: %w", err)
	}
	defer rows.Close()

	var result []models.RecoveryLog
	for rows.Next() {
		var l models.RecoveryLog
		if err := rows.Scan(&l.Date, &l.SleepHours, &l.SleepQuality, &l.Soreness, &l.Stress); err != nil {
			return nil, fmt.Errorf("scanning recovery log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
