package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"optionstracker/internal/domain"
)

// PostgresViewStateRepository stores view states as JSONB rows
type PostgresViewStateRepository struct {
	db *pgxpool.Pool
}

// NewPostgresViewStateRepository creates a new PostgresViewStateRepository
func NewPostgresViewStateRepository(db *pgxpool.Pool) *PostgresViewStateRepository {
	return &PostgresViewStateRepository{db: db}
}

// Get retrieves the state of a session
func (r *PostgresViewStateRepository) Get(ctx context.Context, sessionID uuid.UUID) (*domain.ViewState, error) {
	query := `
		SELECT state, updated_at
		FROM view_states
		WHERE session_id = $1
	`

	var (
		raw       []byte
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, sessionID).Scan(&raw, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrViewStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view state: %w", err)
	}

	st := &domain.ViewState{}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, fmt.Errorf("failed to decode view state: %w", err)
	}
	st.SessionID = sessionID
	st.UpdatedAt = updatedAt
	return st, nil
}

// Save upserts the state of state.SessionID
func (r *PostgresViewStateRepository) Save(ctx context.Context, state *domain.ViewState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode view state: %w", err)
	}

	query := `
		INSERT INTO view_states (session_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(ctx, query, state.SessionID, raw, state.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

// DeleteIdle removes rows not updated since before
func (r *PostgresViewStateRepository) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM view_states WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle view states: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the pool
func (r *PostgresViewStateRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
