package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"optionstracker/internal/domain"
)

// Formatter renders raw field values for display
type Formatter struct {
	currency map[domain.Field]bool
}

// NewFormatter returns a formatter that renders the given keys as USD
func NewFormatter(currencyFields ...domain.Field) *Formatter {
	f := &Formatter{currency: make(map[domain.Field]bool, len(currencyFields))}
	for _, key := range currencyFields {
		f.currency[key] = true
	}
	return f
}

// IsCurrency reports whether key is rendered as currency
func (f *Formatter) IsCurrency(key domain.Field) bool {
	return f.currency[key]
}

// Format renders raw for the column key. Currency keys become en-US dollar
// amounts; everything else is shown as received.
func (f *Formatter) Format(key domain.Field, raw any) string {
	if !f.currency[key] {
		return plainText(raw)
	}
	d, ok := toDecimal(raw)
	if !ok {
		return plainText(raw)
	}
	return FormatUSD(d)
}

// FormatUSD renders d as "$1,234.50" with two fraction digits, rounding half
// away from zero. Negative amounts render as "-$5.00".
func FormatUSD(d decimal.Decimal) string {
	rounded := d.Round(2)
	digits := rounded.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	b.WriteString(groupThousands(intPart))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// plainText renders a raw value without any formatting
func plainText(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.String()
	case decimal.NullDecimal:
		if !v.Valid {
			return ""
		}
		return v.Decimal.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(raw)
}

// toDecimal converts the numeric shapes a Position field can take. Null
// currency values and non-numeric strings report false.
func toDecimal(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, true
	case decimal.NullDecimal:
		return v.Decimal, v.Valid
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}
