package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Zaqui712/B-FO/internal/domain/model"
)

// Date is a calendar date encoded as YYYY-MM-DD. Full RFC 3339 timestamps
// are accepted on input and truncated to their date.
type Date struct {
	time.Time
}

// NewDate wraps t, dropping the clock part.
func NewDate(t time.Time) *Date {
	y, m, d := t.Date()
	return &Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// DateFrom returns nil for a nil time.
func DateFrom(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	return NewDate(*t)
}

// Ptr returns the wrapped time, nil-safe.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(model.DateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(model.DateLayout, raw); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD", raw)
	}
	*d = *NewDate(t)
	return nil
}
