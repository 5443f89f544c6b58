package adapter

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// flexNumber decodes a JSON number or numeric string.
// Missing, null, empty and unparsable values decode to zero.
type flexNumber struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *flexNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = d
	return nil
}

// Float returns the value as a float64.
func (n flexNumber) Float() float64 {
	return n.InexactFloat64()
}

// Int returns the integer part of the value.
func (n flexNumber) Int() int {
	return int(n.IntPart())
}

// flexString decodes a JSON string or a bare number into its text form.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	*s = flexString(b)
	return nil
}

// lineTotal multiplies a unit price by a quantity without float drift.
func lineTotal(unitPrice decimal.Decimal, quantity int) float64 {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// timeLayouts are the timestamp formats providers are known to send.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02 Jan 2006, 03:04 PM",
	"2 Jan 2006, 03:04 PM",
	"2006-01-02",
}

// parseTime parses s with the first matching layout and returns it in UTC.
// Layouts without an offset are read in loc. It returns the zero time when s
// is empty or matches no layout.
func parseTime(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// notAvailable treats the placeholder values some checkouts write as missing.
func notAvailable(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "N/A") {
		return ""
	}
	return s
}

// rawFields decodes a provider record into a generic map for detail views.
func rawFields(data []byte) map[string]any {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return raw
}
