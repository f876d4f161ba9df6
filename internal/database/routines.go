package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RoutineDocument is the persistent daily routine for one user. The store
// holds at most one row per user_id; every regeneration replaces the routine
// wholesale and bumps updated_at, while created_at is written once.
type RoutineDocument struct {
	UserID    string    `json:"userId"`
	Routine   []string  `json:"routine"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const upsertRoutineQuery = `
INSERT INTO user_routines (user_id, routine, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (user_id)
DO UPDATE SET routine = EXCLUDED.routine, updated_at = now()
RETURNING user_id, routine, created_at, updated_at`

const getRoutineQuery = `
SELECT user_id, routine, created_at, updated_at
FROM user_routines
WHERE user_id = $1`

// UpsertRoutine writes the routine for a user with create-or-replace
// semantics. The single-statement ON CONFLICT upsert makes concurrent writes
// to the same user_id last-write-wins without application-level locking.
func (s *service) UpsertRoutine(ctx context.Context, userID string, routine []string) (RoutineDocument, error) {
	var doc RoutineDocument
	err := s.dbpool.QueryRow(ctx, upsertRoutineQuery, userID, routine).
		Scan(&doc.UserID, &doc.Routine, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return RoutineDocument{}, fmt.Errorf("failed to upsert routine: %w", err)
	}
	return doc, nil
}

// GetRoutine fetches the current routine document for a user.
func (s *service) GetRoutine(ctx context.Context, userID string) (RoutineDocument, error) {
	var doc RoutineDocument
	err := s.dbpool.QueryRow(ctx, getRoutineQuery, userID).
		Scan(&doc.UserID, &doc.Routine, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RoutineDocument{}, ErrNotFound
	}
	if err != nil {
		return RoutineDocument{}, fmt.Errorf("failed to fetch routine: %w", err)
	}
	return doc, nil
}
