package domain

import (
	"errors"
	"strings"
	"testing"
)

func completeDraft() PositionDraft {
	return PositionDraft{
		Ticker:         "aapl ",
		ContractType:   "Call",
		TradeDirection: "Long",
		Quantity:       "1",
		StrikePrice:    "190",
		ExpirationDate: "2025-06-20",
		Premium:        "4.10",
		OpenPrice:      "185.5",
		OpenDate:       "2025-05-01",
	}
}

func TestPositionDraft_Validate(t *testing.T) {
	if err := completeDraft().Validate(); err != nil {
		t.Fatalf("complete draft: %v", err)
	}

	d := completeDraft()
	d.StrikePrice = ""
	d.OpenDate = "   "
	err := d.Validate()

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Missing) != 2 || verr.Missing[0] != FieldStrikePrice || verr.Missing[1] != FieldOpenDate {
		t.Fatalf("missing = %v", verr.Missing)
	}
	if !strings.Contains(err.Error(), "Missing: strike_price, open_date") {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestPositionDraft_Normalize(t *testing.T) {
	d := completeDraft().Normalize()
	if d.Ticker != "AAPL" {
		t.Fatalf("ticker = %q", d.Ticker)
	}
}
