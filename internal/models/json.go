package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Text is a vendor string field. Values that are not JSON strings
// (numbers, objects, null) decode to the empty Text instead of failing.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Text(s)
	return nil
}

// Blank reports whether the value is empty after trimming.
func (t Text) Blank() bool {
	return strings.TrimSpace(string(t)) == ""
}

// Key returns the grouping key for the value: trimmed and lower-cased,
// "unknown" when blank.
func (t Text) Key() string {
	k := strings.ToLower(strings.TrimSpace(string(t)))
	if k == "" {
		return UnknownKey
	}
	return k
}

// UnknownKey is the group that collects blank sources and nationalities.
const UnknownKey = "unknown"

// Amount is a money value that the vendor sends either as a JSON number or
// as a numeric string. Anything unparsable decodes to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount builds an Amount from a float, mostly for tests and adapters.
func NewAmount(v float64) Amount {
	return Amount{decimal.NewFromFloat(v)}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Decimal = decimal.Zero
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	a.Decimal = d
	return nil
}

// MarshalJSON writes the amount as a plain JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// DatePart returns the YYYY-MM-DD portion of a vendor date or datetime
// ("2025-08-10 14:00", "2025-08-10T14:00:00").
func DatePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		s = s[:i]
	}
	return s
}
