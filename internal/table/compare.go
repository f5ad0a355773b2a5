package table

import (
	"cmp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"optionstracker/internal/domain"
)

// Comparator orders positions by a column, dispatching on the column's
// declared type. It is safe for concurrent use.
type Comparator struct {
	registry *Registry
	logger   *zap.Logger

	mu       sync.Mutex // guards collator
	collator *collate.Collator
}

// NewComparator creates a comparator for the columns in registry
func NewComparator(registry *Registry, logger *zap.Logger) *Comparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparator{
		registry: registry,
		logger:   logger,
		collator: collate.New(language.AmericanEnglish),
	}
}

// Compare returns a negative number when a sorts before b, positive when
// after and zero when they tie. desc inverts the asc result.
func (c *Comparator) Compare(a, b domain.Position, key domain.Field, dir domain.SortDirection) int {
	va, _ := a.Value(key)
	vb, _ := b.Value(key)

	var r int
	col, ok := c.registry.Column(key)
	if !ok {
		c.logger.Warn("sorting by unknown key", zap.String("key", string(key)))
		r = c.compareText(plainText(va), plainText(vb))
	} else {
		switch col.Type {
		case TypeDate:
			r = compareDates(plainText(va), plainText(vb))
		case TypeNumber, TypeCurrency:
			r = compareNumbers(va, vb)
		default:
			r = c.compareText(plainText(va), plainText(vb))
		}
	}

	if dir == domain.SortDesc {
		return -r
	}
	return r
}

func (c *Comparator) compareText(a, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collator.CompareString(a, b)
}

// compareNumbers orders null values before any number
func compareNumbers(a, b any) int {
	da, okA := toDecimal(a)
	db, okB := toDecimal(b)
	switch {
	case okA && okB:
		return da.Cmp(db)
	case okA:
		return 1
	case okB:
		return -1
	}
	return 0
}

// compareDates orders chronologically; unparseable dates sort after every
// valid date and among themselves by text.
func compareDates(a, b string) int {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return cmp.Compare(a, b)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
