// Package table is the configuration-driven positions-table engine: column
// registry, value formatter, comparator, sort-state store and renderer.
package table

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"optionstracker/internal/domain"
)

// ColumnType declares how a column's values compare
type ColumnType int

// ColumnType values
const (
	TypeString ColumnType = iota
	TypeNumber
	TypeCurrency
	TypeDate
)

func (t ColumnType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeCurrency:
		return "currency"
	case TypeDate:
		return "date"
	}
	return "string"
}

// Column describes one displayable field
type Column struct {
	Key   domain.Field `json:"key"`
	Label string       `json:"label"`
	Type  ColumnType   `json:"-"`
}

// Variant is one table: its identity, title and the columns it shows on top
// of the base columns.
type Variant struct {
	Table domain.TableID
	Title string
	Extra []Column
}

// RegistryConfig is the raw column configuration
type RegistryConfig struct {
	Base       []Column
	Variants   []Variant
	FieldOrder []domain.Field
}

// Registry resolves a table id to its ordered column set. It is immutable
// after construction.
type Registry struct {
	variants map[domain.TableID]Variant
	tables   []domain.TableID
	base     []Column
	rank     map[domain.Field]int
	columns  map[domain.Field]Column
}

// NewRegistry validates cfg. Every column key must appear in FieldOrder, a
// key may appear only once per table and every variant needs a unique id.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if len(cfg.Variants) == 0 {
		return nil, errors.New("table config: no variants")
	}

	r := &Registry{
		variants: make(map[domain.TableID]Variant, len(cfg.Variants)),
		rank:     make(map[domain.Field]int, len(cfg.FieldOrder)),
		columns:  make(map[domain.Field]Column),
	}
	for i, key := range cfg.FieldOrder {
		if _, dup := r.rank[key]; dup {
			return nil, fmt.Errorf("table config: %q listed twice in field order", key)
		}
		r.rank[key] = i
	}

	register := func(c Column) error {
		if _, ok := r.rank[c.Key]; !ok {
			return fmt.Errorf("table config: column %q missing from field order", c.Key)
		}
		if prev, ok := r.columns[c.Key]; ok && prev != c {
			return fmt.Errorf("table config: conflicting definitions for column %q", c.Key)
		}
		r.columns[c.Key] = c
		return nil
	}

	for _, c := range cfg.Base {
		if err := register(c); err != nil {
			return nil, err
		}
	}
	r.base = append([]Column(nil), cfg.Base...)

	for _, v := range cfg.Variants {
		if v.Table == "" {
			return nil, errors.New("table config: variant without id")
		}
		if _, dup := r.variants[v.Table]; dup {
			return nil, fmt.Errorf("table config: duplicate table %q", v.Table)
		}
		seen := make(map[domain.Field]bool, len(cfg.Base)+len(v.Extra))
		for _, c := range append(append([]Column(nil), cfg.Base...), v.Extra...) {
			if seen[c.Key] {
				return nil, fmt.Errorf("table config: column %q repeated in table %q", c.Key, v.Table)
			}
			seen[c.Key] = true
		}
		if len(seen) == 0 {
			return nil, fmt.Errorf("table config: table %q has no columns", v.Table)
		}
		for _, c := range v.Extra {
			if err := register(c); err != nil {
				return nil, err
			}
		}
		v.Extra = append([]Column(nil), v.Extra...)
		r.variants[v.Table] = v
		r.tables = append(r.tables, v.Table)
	}

	return r, nil
}

// MustNewRegistry is NewRegistry for static configuration
func MustNewRegistry(cfg RegistryConfig) *Registry {
	r, err := NewRegistry(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultConfig is the dashboard's column layout
func DefaultConfig() RegistryConfig {
	return RegistryConfig{
		Base: []Column{
			{Key: domain.FieldTicker, Label: "Ticker", Type: TypeString},
			{Key: domain.FieldContractType, Label: "Type", Type: TypeString},
			{Key: domain.FieldQuantity, Label: "Quantity", Type: TypeNumber},
			{Key: domain.FieldTradeDirection, Label: "Trade Direction", Type: TypeString},
			{Key: domain.FieldStrikePrice, Label: "Strike Price", Type: TypeCurrency},
			{Key: domain.FieldExpirationDate, Label: "Expiration Date", Type: TypeDate},
			{Key: domain.FieldPremium, Label: "Premium", Type: TypeCurrency},
			{Key: domain.FieldOpenPrice, Label: "Open Price", Type: TypeCurrency},
			{Key: domain.FieldOpenDate, Label: "Open Date", Type: TypeDate},
			{Key: domain.FieldPositionStatus, Label: "Position Status", Type: TypeString},
		},
		Variants: []Variant{
			{
				Table: domain.TableActive,
				Title: "Active Positions",
				Extra: []Column{
					{Key: domain.FieldCurrentPrice, Label: "Current Price", Type: TypeCurrency},
				},
			},
			{
				Table: domain.TableExpired,
				Title: "Expired Positions",
				Extra: []Column{
					{Key: domain.FieldClosePrice, Label: "Close Price", Type: TypeCurrency},
					{Key: domain.FieldProfit, Label: "Profit", Type: TypeCurrency},
				},
			},
		},
		FieldOrder: []domain.Field{
			domain.FieldTicker,
			domain.FieldContractType,
			domain.FieldExpirationDate,
			domain.FieldStrikePrice,
			domain.FieldTradeDirection,
			domain.FieldQuantity,
			domain.FieldPremium,
			domain.FieldOpenPrice,
			domain.FieldOpenDate,
			domain.FieldPositionStatus,
			domain.FieldCurrentPrice,
			domain.FieldClosePrice,
			domain.FieldProfit,
		},
	}
}

// DefaultRegistry returns the registry built from DefaultConfig
func DefaultRegistry() *Registry {
	return MustNewRegistry(DefaultConfig())
}

// Columns returns the base and extra columns of a table ordered by field
// order. The returned slice is owned by the caller.
func (r *Registry) Columns(id domain.TableID) ([]Column, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTable, id)
	}

	cols := make([]Column, 0, len(r.base)+len(v.Extra))
	cols = append(cols, r.base...)
	cols = append(cols, v.Extra...)
	slices.SortStableFunc(cols, func(a, b Column) int {
		return cmp.Compare(r.rank[a.Key], r.rank[b.Key])
	})
	return cols, nil
}

// Title returns a table's display title
func (r *Registry) Title(id domain.TableID) (string, error) {
	v, ok := r.variants[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTable, id)
	}
	return v.Title, nil
}

// Tables returns the configured table ids in configuration order
func (r *Registry) Tables() []domain.TableID {
	return append([]domain.TableID(nil), r.tables...)
}

// Column looks up a column definition by key across all tables
func (r *Registry) Column(key domain.Field) (Column, bool) {
	c, ok := r.columns[key]
	return c, ok
}

// CurrencyFields returns every key declared as currency
func (r *Registry) CurrencyFields() []domain.Field {
	var out []domain.Field
	for _, key := range r.orderedKeys() {
		if r.columns[key].Type == TypeCurrency {
			out = append(out, key)
		}
	}
	return out
}

func (r *Registry) orderedKeys() []domain.Field {
	keys := make([]domain.Field, len(r.rank))
	for k, i := range r.rank {
		keys[i] = k
	}
	out := keys[:0]
	for _, k := range keys {
		if _, ok := r.columns[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
