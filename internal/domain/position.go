package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Field identifies one displayable attribute of a Position.
type Field string

// Position fields, named after their wire keys
const (
	FieldPositionID     Field = "position_id"
	FieldTicker         Field = "ticker"
	FieldContractType   Field = "contract_type"
	FieldTradeDirection Field = "trade_direction"
	FieldQuantity       Field = "quantity"
	FieldStrikePrice    Field = "strike_price"
	FieldExpirationDate Field = "expiration_date"
	FieldPremium        Field = "premium"
	FieldOpenPrice      Field = "open_price"
	FieldOpenDate       Field = "open_date"
	FieldPositionStatus Field = "position_status"
	FieldCurrentPrice   Field = "current_price"
	FieldClosePrice     Field = "close_price"
	FieldProfit         Field = "profit"
)

// ContractType constants
const (
	ContractCall = "Call"
	ContractPut  = "Put"
)

// TradeDirection constants
const (
	DirectionLong  = "Long"
	DirectionShort = "Short"
)

// PositionStatus constants
const (
	PositionOpen   = "Open"
	PositionClosed = "Closed"
)

// DateLayout is the calendar-date format used by the backend for
// expiration_date and open_date.
const DateLayout = "2006-01-02"

// Position represents one options trade as reported by the positions backend.
// Bucket-only fields are null when the backend does not send them.
type Position struct {
	PositionID     PositionID          `json:"position_id"`
	Ticker         string              `json:"ticker"`
	ContractType   string              `json:"contract_type"`
	TradeDirection string              `json:"trade_direction"`
	Quantity       Quantity            `json:"quantity"`
	StrikePrice    decimal.Decimal     `json:"strike_price"`
	ExpirationDate string              `json:"expiration_date"`
	Premium        decimal.Decimal     `json:"premium"`
	OpenPrice      decimal.Decimal     `json:"open_price"`
	OpenDate       string              `json:"open_date"`
	PositionStatus string              `json:"position_status"`
	CurrentPrice   decimal.NullDecimal `json:"current_price"`
	ClosePrice     decimal.NullDecimal `json:"close_price"`
	Profit         decimal.NullDecimal `json:"profit"`
}

// Value returns the raw value stored under field. The dynamic type is string,
// int, decimal.Decimal or decimal.NullDecimal depending on the field.
func (p Position) Value(field Field) (any, bool) {
	switch field {
	case FieldPositionID:
		return string(p.PositionID), true
	case FieldTicker:
		return p.Ticker, true
	case FieldContractType:
		return p.ContractType, true
	case FieldTradeDirection:
		return p.TradeDirection, true
	case FieldQuantity:
		return int(p.Quantity), true
	case FieldStrikePrice:
		return p.StrikePrice, true
	case FieldExpirationDate:
		return p.ExpirationDate, true
	case FieldPremium:
		return p.Premium, true
	case FieldOpenPrice:
		return p.OpenPrice, true
	case FieldOpenDate:
		return p.OpenDate, true
	case FieldPositionStatus:
		return p.PositionStatus, true
	case FieldCurrentPrice:
		return p.CurrentPrice, true
	case FieldClosePrice:
		return p.ClosePrice, true
	case FieldProfit:
		return p.Profit, true
	}
	return nil, false
}

// PositionID is the opaque, server-assigned identity of a position. The
// backend emits it as a JSON number today; strings are accepted as well.
type PositionID string

// UnmarshalJSON accepts both numeric and string ids
func (id *PositionID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid position_id: %w", err)
		}
		*id = PositionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid position_id: %w", err)
	}
	*id = PositionID(n.String())
	return nil
}

// Quantity is a contract count. The Python backend may serialise it as an
// integral float ("2.0") or a numeric string.
type Quantity int

// UnmarshalJSON accepts integers, integral floats and numeric strings
func (q *Quantity) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("invalid quantity %q: not a whole number", s)
	}
	*q = Quantity(d.IntPart())
	return nil
}
