package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"optionstracker/internal/domain"
	"optionstracker/internal/table"
)

// DashboardService owns the per-session snapshots and sort states behind the
// positions tables.
type DashboardService struct {
	gateway domain.PositionGateway
	states  domain.ViewStateRepository
	engine  *table.Engine
	logger  *zap.Logger

	// requests of one session are serialised; sessions hash onto a stripe
	locks [64]sync.Mutex
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	gateway domain.PositionGateway,
	states domain.ViewStateRepository,
	engine *table.Engine,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		gateway: gateway,
		states:  states,
		engine:  engine,
		logger:  logger,
	}
}

func (s *DashboardService) lock(sessionID uuid.UUID) func() {
	m := &s.locks[int(sessionID[15])%len(s.locks)]
	m.Lock()
	return m.Unlock
}

// state returns the stored view state of a session or a fresh one
func (s *DashboardService) state(ctx context.Context, sessionID uuid.UUID) (*domain.ViewState, error) {
	st, err := s.states.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrViewStateNotFound) {
		return domain.NewViewState(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load view state: %w", err)
	}
	if st.Snapshots == nil {
		st.Snapshots = make(map[domain.Bucket][]domain.Position, len(domain.Buckets))
	}
	if st.Sorts == nil {
		st.Sorts = make(map[domain.TableID]domain.SortState, len(domain.Buckets))
	}
	return st, nil
}

func (s *DashboardService) save(ctx context.Context, st *domain.ViewState) error {
	st.UpdatedAt = time.Now()
	if err := s.states.Save(ctx, st); err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

// refresh replaces the snapshot of bucket with a fresh fetch ordered by the
// table's current sort state. On failure the old snapshot stays.
func (s *DashboardService) refresh(ctx context.Context, st *domain.ViewState, bucket domain.Bucket) error {
	positions, err := s.gateway.ListPositions(ctx, bucket)
	if err != nil {
		s.logger.Error("error fetching positions",
			zap.String("session_id", st.SessionID.String()),
			zap.String("bucket", string(bucket)),
			zap.Error(err),
		)
		return err
	}
	sorts := table.SortStates(st.Sorts)
	st.Snapshots[bucket] = s.engine.Sort(positions, sorts.Get(domain.TableFor(bucket)))
	return nil
}

// Load fetches every bucket for the session. Buckets that fail to load keep
// their previous snapshot; the returned state is usable even with an error.
func (s *DashboardService) Load(ctx context.Context, sessionID uuid.UUID) (*domain.ViewState, error) {
	defer s.lock(sessionID)()

	st, err := s.state(ctx, sessionID)
	if err != nil {
		return domain.NewViewState(sessionID), err
	}

	var errs []error
	for _, b := range domain.Buckets {
		if err := s.refresh(ctx, st, b); err != nil {
			errs = append(errs, err)
		}
	}
	st.Loaded = st.Loaded || len(errs) == 0
	if err := s.save(ctx, st); err != nil {
		errs = append(errs, err)
	}
	return st, errors.Join(errs...)
}

// View returns the session's current state, loading it on first use
func (s *DashboardService) View(ctx context.Context, sessionID uuid.UUID) (*domain.ViewState, error) {
	unlock := s.lock(sessionID)
	st, err := s.state(ctx, sessionID)
	unlock()
	if err != nil {
		return domain.NewViewState(sessionID), err
	}
	if !st.Loaded {
		return s.Load(ctx, sessionID)
	}
	return st, nil
}

// Sort applies a header click on column key of table id and returns the
// re-rendered table.
func (s *DashboardService) Sort(ctx context.Context, sessionID uuid.UUID, id domain.TableID, key domain.Field) (table.Grid, error) {
	bucket, err := id.Bucket()
	if err != nil {
		return table.Grid{}, fmt.Errorf("%w: %q", err, id)
	}

	defer s.lock(sessionID)()

	st, err := s.state(ctx, sessionID)
	if err != nil {
		return table.Grid{}, err
	}

	sorts, next := table.SortStates(st.Sorts).Toggle(id, key)
	st.Sorts = sorts
	st.Snapshots[bucket] = s.engine.Sort(st.Snapshots[bucket], next)

	if err := s.save(ctx, st); err != nil {
		return table.Grid{}, err
	}
	return s.engine.Render(id, st.Snapshots[bucket], next)
}

// Create validates draft, submits it and re-fetches the bucket named by the
// backend. An incomplete draft returns *domain.ValidationError without
// contacting the backend.
func (s *DashboardService) Create(ctx context.Context, sessionID uuid.UUID, draft domain.PositionDraft) (domain.Bucket, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		s.logger.Info("rejected incomplete position draft", zap.Error(err))
		return "", err
	}

	bucket, err := s.gateway.CreatePosition(ctx, draft)
	if err != nil {
		s.logger.Error("error adding position", zap.String("ticker", draft.Ticker), zap.Error(err))
		return "", err
	}

	defer s.lock(sessionID)()

	st, err := s.state(ctx, sessionID)
	if err != nil {
		return bucket, err
	}
	if err := s.refresh(ctx, st, bucket); err != nil {
		return bucket, err
	}
	return bucket, s.save(ctx, st)
}

// Delete removes a position through the backend and drops it from the
// snapshot of the bucket the backend reports.
func (s *DashboardService) Delete(ctx context.Context, sessionID uuid.UUID, id domain.PositionID) (domain.Bucket, error) {
	s.logger.Info("deleting position", zap.String("position_id", string(id)))

	bucket, err := s.gateway.DeletePosition(ctx, id)
	if err != nil {
		s.logger.Error("error deleting position", zap.String("position_id", string(id)), zap.Error(err))
		return "", err
	}

	defer s.lock(sessionID)()

	st, err := s.state(ctx, sessionID)
	if err != nil {
		return bucket, err
	}

	remaining, removed := removePosition(st.Snapshots[bucket], id)
	if !removed {
		s.logger.Warn("deleted position not in reported bucket snapshot",
			zap.String("position_id", string(id)),
			zap.String("bucket", string(bucket)),
		)
		return bucket, nil
	}
	st.Snapshots[bucket] = remaining
	return bucket, s.save(ctx, st)
}

// Grid renders one table from the session state
func (s *DashboardService) Grid(st *domain.ViewState, id domain.TableID) (table.Grid, error) {
	bucket, err := id.Bucket()
	if err != nil {
		return table.Grid{}, fmt.Errorf("%w: %q", err, id)
	}
	return s.engine.Render(id, st.Snapshots[bucket], table.SortStates(st.Sorts).Get(id))
}

// Grids renders every configured table in display order
func (s *DashboardService) Grids(st *domain.ViewState) ([]table.Grid, error) {
	ids := s.engine.Registry.Tables()
	grids := make([]table.Grid, 0, len(ids))
	for _, id := range ids {
		g, err := s.Grid(st, id)
		if err != nil {
			return nil, err
		}
		grids = append(grids, g)
	}
	return grids, nil
}

// PruneIdle drops view states untouched for longer than maxIdle
func (s *DashboardService) PruneIdle(ctx context.Context, maxIdle time.Duration) (int64, error) {
	n, err := s.states.DeleteIdle(ctx, time.Now().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("failed to prune view states: %w", err)
	}
	return n, nil
}

// removePosition returns a copy of positions without id
func removePosition(positions []domain.Position, id domain.PositionID) ([]domain.Position, bool) {
	idx := slices.IndexFunc(positions, func(p domain.Position) bool { return p.PositionID == id })
	if idx < 0 {
		return positions, false
	}
	out := make([]domain.Position, 0, len(positions)-1)
	out = append(out, positions[:idx]...)
	return append(out, positions[idx+1:]...), true
}
