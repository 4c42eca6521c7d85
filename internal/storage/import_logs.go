package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Import log statuses.
const (
	ImportRunning = "running"
	ImportSuccess = "success"
	ImportError   = "error"
)

// ImportLog records one ingest of workout data, from the API or a CSV file.
type ImportLog struct {
	ID               int64            `json:"id" db:"id"`
	UserID           int              `json:"user_id" db:"user_id"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	Source           string           `json:"source" db:"source"`
	Status           string           `json:"status" db:"status"`
	SessionsReceived int              `json:"sessions_received" db:"sessions_received"`
	SessionsInserted int              `json:"sessions_inserted" db:"sessions_inserted"`
	SetsInserted     int64            `json:"sets_inserted" db:"sets_inserted"`
	DurationMs       *int             `json:"duration_ms" db:"duration_ms"`
	ErrorMessage     *string          `json:"error_message" db:"error_message"`
	Metadata         *json.RawMessage `json:"metadata" db:"metadata"`
}

// Finish stamps the elapsed time and marks the entry succeeded, or failed
// with err's message.
func (l *ImportLog) Finish(err error, elapsed time.Duration) {
	ms := int(elapsed.Milliseconds())
	l.DurationMs = &ms
	l.Status = ImportSuccess
	l.ErrorMessage = nil
	if err != nil {
		msg := err.Error()
		l.Status = ImportError
		l.ErrorMessage = &msg
	}
}

func (l ImportLog) args() pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_id":           l.UserID,
		"source":            l.Source,
		"status":            l.Status,
		"sessions_received": l.SessionsReceived,
		"sessions_inserted": l.SessionsInserted,
		"sets_inserted":     l.SetsInserted,
		"duration_ms":       l.DurationMs,
		"error_message":     l.ErrorMessage,
		"metadata":          l.Metadata,
	}
}

func (db *DB) InsertImportLog(ctx context.Context, l ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (user_id, source, status, sessions_received, sessions_inserted,
		   sets_inserted, duration_ms, error_message, metadata)
		 VALUES (@user_id, @source, @status, @sessions_received, @sessions_inserted,
		   @sets_inserted, @duration_ms, @error_message, @metadata)
		 RETURNING id`, l.args()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog overwrites the outcome columns of a running entry.
func (db *DB) UpdateImportLog(ctx context.Context, id int64, l ImportLog) error {
	args := l.args()
	args["id"] = id
	tag, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET status = @status,
		   sessions_received = @sessions_received, sessions_inserted = @sessions_inserted,
		   sets_inserted = @sets_inserted, duration_ms = @duration_ms,
		   error_message = @error_message, metadata = COALESCE(@metadata, metadata)
		 WHERE id = @id`, args)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating import log %d: %w", id, ErrNotFound)
	}
	return nil
}

// QueryImportLogs returns a user's newest import logs first. limit defaults to 50.
func (db *DB) QueryImportLogs(ctx context.Context, userID, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, source, status, sessions_received, sessions_inserted,
		   sets_inserted, duration_ms, error_message, metadata
		 FROM import_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, pgx.RowToStructByName[ImportLog])
	if err != nil {
		return nil, fmt.Errorf("scanning import logs: %w", err)
	}
	return logs, nil
}
