package table

import (
	"testing"

	"github.com/shopspring/decimal"

	"optionstracker/internal/domain"
)

func TestEngine_Render(t *testing.T) {
	engine := NewEngine(DefaultRegistry(), nil)
	positions := []domain.Position{{
		PositionID:     "42",
		Ticker:         "AAPL",
		ContractType:   "Call",
		TradeDirection: "Long",
		Quantity:       2,
		StrikePrice:    decimal.RequireFromString("1234.5"),
		ExpirationDate: "2024-06-01",
		Premium:        decimal.RequireFromString("5.2"),
		OpenPrice:      decimal.RequireFromString("180"),
		OpenDate:       "2024-01-02",
		PositionStatus: "Open",
		CurrentPrice:   decimal.NewNullDecimal(decimal.RequireFromString("6.75")),
	}}
	state := domain.SortState{Key: domain.FieldPremium, Direction: domain.SortDesc}

	g, err := engine.Render(domain.TableActive, positions, state)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if g.Title != "Active Positions" || g.Empty() {
		t.Fatalf("grid = %+v", g)
	}

	want := []string{"AAPL", "Call", "2024-06-01", "$1,234.50", "Long", "2", "$5.20", "$180.00", "2024-01-02", "Open", "$6.75"}
	row := g.Rows[0]
	if row.PositionID != "42" || len(row.Cells) != len(want) {
		t.Fatalf("row = %+v", row)
	}
	for i := range want {
		if row.Cells[i] != want[i] {
			t.Fatalf("cell %d (%s) = %q, want %q", i, g.Headers[i].Key, row.Cells[i], want[i])
		}
	}

	for _, h := range g.Headers {
		isPremium := h.Key == domain.FieldPremium
		if h.DescActive != isPremium || h.AscActive {
			t.Fatalf("header %s indicators asc=%v desc=%v", h.Key, h.AscActive, h.DescActive)
		}
	}
}

func TestEngine_RenderEmpty(t *testing.T) {
	engine := NewEngine(DefaultRegistry(), nil)
	g, err := engine.Render(domain.TableExpired, nil, domain.DefaultSortState)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !g.Empty() || len(g.Headers) != 12 {
		t.Fatalf("empty grid headers=%d rows=%d", len(g.Headers), len(g.Rows))
	}
	if !g.Headers[2].AscActive || g.Headers[2].Key != domain.FieldExpirationDate {
		t.Fatalf("default indicator on %+v", g.Headers[2])
	}
}

func TestEngine_RenderUnknownTable(t *testing.T) {
	engine := NewEngine(DefaultRegistry(), nil)
	if _, err := engine.Render("closed", nil, domain.DefaultSortState); err == nil {
		t.Fatalf("expected error")
	}
}
