package domain

import (
	"fmt"
	"strings"
)

// PositionDraft is the create payload collected from the add-position form.
// Values stay raw strings; the backend owns parsing and validation.
type PositionDraft struct {
	Ticker         string `json:"ticker" form:"ticker"`
	ContractType   string `json:"contract_type" form:"contract_type"`
	TradeDirection string `json:"trade_direction" form:"trade_direction"`
	Quantity       string `json:"quantity" form:"quantity"`
	StrikePrice    string `json:"strike_price" form:"strike_price"`
	ExpirationDate string `json:"expiration_date" form:"expiration_date"`
	Premium        string `json:"premium" form:"premium"`
	OpenPrice      string `json:"open_price" form:"open_price"`
	OpenDate       string `json:"open_date" form:"open_date"`
}

// DraftFields lists the fields a draft must carry, in form order.
var DraftFields = []Field{
	FieldTicker,
	FieldContractType,
	FieldTradeDirection,
	FieldQuantity,
	FieldStrikePrice,
	FieldExpirationDate,
	FieldPremium,
	FieldOpenPrice,
	FieldOpenDate,
}

func (d PositionDraft) value(f Field) string {
	switch f {
	case FieldTicker:
		return d.Ticker
	case FieldContractType:
		return d.ContractType
	case FieldTradeDirection:
		return d.TradeDirection
	case FieldQuantity:
		return d.Quantity
	case FieldStrikePrice:
		return d.StrikePrice
	case FieldExpirationDate:
		return d.ExpirationDate
	case FieldPremium:
		return d.Premium
	case FieldOpenPrice:
		return d.OpenPrice
	case FieldOpenDate:
		return d.OpenDate
	}
	return ""
}

// Normalize trims every value and upper-cases the ticker.
func (d PositionDraft) Normalize() PositionDraft {
	return PositionDraft{
		Ticker:         strings.ToUpper(strings.TrimSpace(d.Ticker)),
		ContractType:   strings.TrimSpace(d.ContractType),
		TradeDirection: strings.TrimSpace(d.TradeDirection),
		Quantity:       strings.TrimSpace(d.Quantity),
		StrikePrice:    strings.TrimSpace(d.StrikePrice),
		ExpirationDate: strings.TrimSpace(d.ExpirationDate),
		Premium:        strings.TrimSpace(d.Premium),
		OpenPrice:      strings.TrimSpace(d.OpenPrice),
		OpenDate:       strings.TrimSpace(d.OpenDate),
	}
}

// Validate reports every blank required field, or nil when the draft is complete.
func (d PositionDraft) Validate() error {
	var missing []Field
	for _, f := range DraftFields {
		if strings.TrimSpace(d.value(f)) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidationError is returned when a draft is incomplete
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("Please fill out all fields. Missing: %s", strings.Join(names, ", "))
}
