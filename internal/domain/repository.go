package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PositionGateway is the positions backend as seen by the dashboard
type PositionGateway interface {
	// ListPositions returns the current snapshot of one bucket
	ListPositions(ctx context.Context, bucket Bucket) ([]Position, error)

	// CreatePosition submits a draft and returns the bucket the new position landed in
	CreatePosition(ctx context.Context, draft PositionDraft) (Bucket, error)

	// DeletePosition removes a position and returns the bucket it belonged to
	DeletePosition(ctx context.Context, id PositionID) (Bucket, error)

	// Ping checks that the backend answers
	Ping(ctx context.Context) error
}

// ViewStateRepository persists per-session dashboard state
type ViewStateRepository interface {
	// Get returns the stored state or ErrViewStateNotFound
	Get(ctx context.Context, sessionID uuid.UUID) (*ViewState, error)

	// Save creates or replaces the state of state.SessionID
	Save(ctx context.Context, state *ViewState) error

	// DeleteIdle removes states not updated since before and returns how many were removed
	DeleteIdle(ctx context.Context, before time.Time) (int64, error)

	// Ping checks the underlying store
	Ping(ctx context.Context) error
}
