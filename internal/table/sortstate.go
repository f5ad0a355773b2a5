package table

import (
	"maps"
	"slices"

	"optionstracker/internal/domain"
)

// SortStates maps each table to its current sort state. Values are never
// modified in place; Toggle returns an updated copy.
type SortStates map[domain.TableID]domain.SortState

// Get returns the state of a table, or the default when none is recorded
func (s SortStates) Get(id domain.TableID) domain.SortState {
	if st, ok := s[id]; ok {
		return st
	}
	return domain.DefaultSortState
}

// Toggle applies a header click on column key of table id and returns the
// new states together with the table's new state.
func (s SortStates) Toggle(id domain.TableID, key domain.Field) (SortStates, domain.SortState) {
	next := Next(s.Get(id), key)
	out := make(SortStates, len(s)+1)
	maps.Copy(out, s)
	out[id] = next
	return out, next
}

// Next is the toggle transition: a new column starts ascending, the current
// column flips between asc and desc.
func Next(cur domain.SortState, key domain.Field) domain.SortState {
	if cur.Key != key {
		return domain.SortState{Key: key, Direction: domain.SortAsc}
	}
	if cur.Direction == domain.SortAsc {
		return domain.SortState{Key: key, Direction: domain.SortDesc}
	}
	return domain.SortState{Key: key, Direction: domain.SortAsc}
}

// Sort returns a newly ordered copy of positions. Ties keep their previous
// relative order; the input slice is left untouched.
func Sort(positions []domain.Position, state domain.SortState, c *Comparator) []domain.Position {
	out := slices.Clone(positions)
	slices.SortStableFunc(out, func(a, b domain.Position) int {
		return c.Compare(a, b, state.Key, state.Direction)
	})
	return out
}
