package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// TableID is the stable identifier of a rendered positions table. It is
// independent of the table's display title.
type TableID string

// Table ids; one table per bucket
const (
	TableActive  TableID = "active"
	TableExpired TableID = "expired"
)

// TableFor returns the table that displays bucket b.
func TableFor(b Bucket) TableID {
	return TableID(b)
}

// Bucket returns the bucket displayed by table t.
func (t TableID) Bucket() (Bucket, error) {
	switch t {
	case TableActive:
		return BucketActive, nil
	case TableExpired:
		return BucketExpired, nil
	}
	return "", ErrUnknownTable
}

// SortDirection is asc or desc
type SortDirection string

// SortDirection constants
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortState governs one table's current ordering.
type SortState struct {
	Key       Field         `json:"key"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortState is the initial ordering of every table.
var DefaultSortState = SortState{Key: FieldExpirationDate, Direction: SortAsc}

// ViewState is everything one dashboard session sees: a snapshot per bucket
// and the sort state of each table.
type ViewState struct {
	SessionID uuid.UUID             `json:"session_id"`
	Snapshots map[Bucket][]Position `json:"snapshots"`
	Sorts     map[TableID]SortState `json:"sorts"`
	Loaded    bool                  `json:"loaded"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewViewState returns an empty view state for sessionID.
func NewViewState(sessionID uuid.UUID) *ViewState {
	return &ViewState{
		SessionID: sessionID,
		Snapshots: make(map[Bucket][]Position, len(Buckets)),
		Sorts:     make(map[TableID]SortState, len(Buckets)),
		UpdatedAt: time.Now(),
	}
}

// Clone returns a copy that shares no slices or maps with v.
func (v *ViewState) Clone() *ViewState {
	out := *v
	out.Snapshots = make(map[Bucket][]Position, len(v.Snapshots))
	for b, ps := range v.Snapshots {
		out.Snapshots[b] = slices.Clone(ps)
	}
	out.Sorts = maps.Clone(v.Sorts)
	if out.Sorts == nil {
		out.Sorts = make(map[TableID]SortState, len(Buckets))
	}
	return &out
}
