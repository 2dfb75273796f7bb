package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the session does not exist or was ended.
var ErrNotFound = errors.New("session: not found")

// Record is a stored login session.
type Record struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store persists sessions.
type Store interface {
	Create(ctx context.Context, rec Record) error
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
}

// PGStore implements Store backed by PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgxpool-backed session store.
func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Create inserts rec.
func (s *PGStore) Create(ctx context.Context, rec Record) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("session: parse id: %w", err)
	}

	const insertSQL = `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.pool.Exec(ctx, insertSQL, id, rec.UserID, rec.CreatedAt, rec.ExpiresAt); err != nil {
		return fmt.Errorf("session: create: %w", err)
	}
	return nil
}

// Get fetches a session by id.
func (s *PGStore) Get(ctx context.Context, id string) (Record, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Record{}, ErrNotFound
	}

	const selectSQL = `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`

	var (
		rec   Record
		rowID uuid.UUID
	)
	err = s.pool.QueryRow(ctx, selectSQL, parsed).Scan(&rowID, &rec.UserID, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("session: get: %w", err)
	}
	rec.ID = rowID.String()
	return rec, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, parsed); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
