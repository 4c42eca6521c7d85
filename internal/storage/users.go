package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Profile holds the per-user settings the analytics depend on.
type Profile struct {
	UserID          int     `json:"user_id"`
	Login           string  `json:"login"`
	DisplayName     string  `json:"display_name"`
	BodyweightKg    float64 `json:"bodyweight_kg"`
	TargetFrequency int     `json:"target_frequency"`
}

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upserting user %q: %w", login, err)
	}
	return id, nil
}

// GetProfile returns the profile of a user, or ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	p := &Profile{UserID: userID}
	err := db.Pool.QueryRow(ctx,
		`SELECT login, display_name, bodyweight_kg, target_frequency FROM users WHERE id = $1`, userID,
	).Scan(&p.Login, &p.DisplayName, &p.BodyweightKg, &p.TargetFrequency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// UpdateProfile sets bodyweight and weekly target frequency. Zero values leave
// the stored value unchanged.
func (db *DB) UpdateProfile(ctx context.Context, userID int, bodyweightKg float64, targetFrequency int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE users SET
			bodyweight_kg = COALESCE(NULLIF($2, 0::double precision), bodyweight_kg),
			target_frequency = COALESCE(NULLIF($3, 0), target_frequency)
		 WHERE id = $1`,
		userID, bodyweightKg, targetFrequency)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
