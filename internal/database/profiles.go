package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nexusquery/auth-gateway/internal/models"
)

// ErrProfileNotFound is returned when no profile matches.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository handles profile database operations
type ProfileRepository struct {
	db  *DB
	now func() time.Time
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db, now: time.Now}
}

// EnsureProfile inserts a profile for uid or refreshes its email and
// last-seen time when it already exists.
func (r *ProfileRepository) EnsureProfile(ctx context.Context, uid, email string) error {
	query := `
		INSERT INTO profiles (id, firebase_uid, email, role, created_at, last_seen_at)
		VALUES ($1, $2, $3, 'user', $4, $4)
		ON CONFLICT (firebase_uid) DO UPDATE
		SET email = EXCLUDED.email, last_seen_at = EXCLUDED.last_seen_at
	`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), uid, email, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// GetByUID retrieves a profile by identity provider uid
func (r *ProfileRepository) GetByUID(ctx context.Context, uid string) (*models.Profile, error) {
	p := &models.Profile{}
	query := `
		SELECT id, firebase_uid, email, role, created_at, last_seen_at
		FROM profiles
		WHERE firebase_uid = $1
	`

	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&p.ID,
		&p.FirebaseUID,
		&p.Email,
		&p.Role,
		&p.CreatedAt,
		&p.LastSeenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// List returns the most recently seen profiles, newest first.
func (r *ProfileRepository) List(ctx context.Context, limit int) ([]*models.Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, firebase_uid, email, role, created_at, last_seen_at
		FROM profiles
		ORDER BY last_seen_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.FirebaseUID, &p.Email, &p.Role, &p.CreatedAt, &p.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return out, nil
}

// Delete removes the profile for uid.
func (r *ProfileRepository) Delete(ctx context.Context, uid string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE firebase_uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
