package table

import (
	"go.uber.org/zap"

	"optionstracker/internal/domain"
)

// Header is one column header with its sort indicator state
type Header struct {
	Key        domain.Field `json:"key"`
	Label      string       `json:"label"`
	AscActive  bool         `json:"asc_active"`
	DescActive bool         `json:"desc_active"`
}

// Row is one rendered position
type Row struct {
	PositionID domain.PositionID `json:"position_id"`
	Ticker     string            `json:"ticker"`
	Cells      []string          `json:"cells"`
}

// Grid is a fully rendered table
type Grid struct {
	Table   domain.TableID   `json:"table"`
	Title   string           `json:"title"`
	Sort    domain.SortState `json:"sort"`
	Headers []Header         `json:"headers"`
	Rows    []Row            `json:"rows"`
}

// Empty reports whether the grid has no rows
func (g Grid) Empty() bool {
	return len(g.Rows) == 0
}

// Engine bundles the table components built from one registry
type Engine struct {
	Registry   *Registry
	Formatter  *Formatter
	Comparator *Comparator
}

// NewEngine wires a formatter and comparator to registry
func NewEngine(registry *Registry, logger *zap.Logger) *Engine {
	return &Engine{
		Registry:   registry,
		Formatter:  NewFormatter(registry.CurrencyFields()...),
		Comparator: NewComparator(registry, logger),
	}
}

// Sort orders positions with the engine's comparator
func (e *Engine) Sort(positions []domain.Position, state domain.SortState) []domain.Position {
	return Sort(positions, state, e.Comparator)
}

// Render lays positions out in the configured columns of table id. Rows keep
// the order of positions; sorting is the caller's job.
func (e *Engine) Render(id domain.TableID, positions []domain.Position, state domain.SortState) (Grid, error) {
	cols, err := e.Registry.Columns(id)
	if err != nil {
		return Grid{}, err
	}
	title, err := e.Registry.Title(id)
	if err != nil {
		return Grid{}, err
	}

	g := Grid{
		Table:   id,
		Title:   title,
		Sort:    state,
		Headers: make([]Header, len(cols)),
		Rows:    make([]Row, 0, len(positions)),
	}
	for i, c := range cols {
		g.Headers[i] = Header{
			Key:        c.Key,
			Label:      c.Label,
			AscActive:  state.Key == c.Key && state.Direction == domain.SortAsc,
			DescActive: state.Key == c.Key && state.Direction == domain.SortDesc,
		}
	}
	for _, p := range positions {
		row := Row{
			PositionID: p.PositionID,
			Ticker:     p.Ticker,
			Cells:      make([]string, len(cols)),
		}
		for i, c := range cols {
			raw, _ := p.Value(c.Key)
			row.Cells[i] = e.Formatter.Format(c.Key, raw)
		}
		g.Rows = append(g.Rows, row)
	}
	return g, nil
}
