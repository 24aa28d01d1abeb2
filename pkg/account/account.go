// Package account holds the Account record as exposed by the remote
// accounts API, the request bodies sent to it, and the presence/format
// checks applied to form input before anything is submitted.
package account

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a bank account record as returned by the accounts API.
// The client never treats it as authoritative; it is a copy of the last
// server response and is replaced on every re-fetch.
type Account struct {
	ID            int64           `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	OwnerName     string          `json:"ownerName"`
	Email         string          `json:"email"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     Timestamp       `json:"createdAt"`
	UpdatedAt     Timestamp       `json:"updatedAt"`
}

// IDString returns the identifier in its path form.
func (a Account) IDString() string {
	return strconv.FormatInt(a.ID, 10)
}

// DisplayLayout is the layout used when rendering timestamps to people.
const DisplayLayout = "2006-01-02 15:04:05"

// timestampLayouts lists accepted wire formats. The backend emits local
// date-times without a zone; fractional seconds are accepted by every
// layout when parsing.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is a time.Time that tolerates the zone-less ISO date-times
// produced by the accounts API. A JSON null decodes to the zero value.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s using the accepted wire layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("account: unrecognised timestamp %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("account: timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Display renders the timestamp for people, or "" when unset.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayLayout)
}
