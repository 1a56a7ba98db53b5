package v1

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used by query parameters and
// serialized daily results.
const DateLayout = "2006-01-02"

// EndTimeLayout is the wall-clock format of the end_time CSV column.
const EndTimeLayout = "15:04:05"

// CdrRecord is one logged phone-call event. Records enter the system only
// through bulk CSV ingestion and are never updated or deleted afterwards.
type CdrRecord struct {
	// Reference is the unique identifier of the call and the primary key in
	// the store. A batch containing an already-stored reference is rejected
	// as a whole.
	Reference string `json:"reference"`

	// CallerID is the originating party. May be empty; empty callers are
	// excluded from the top-callers ranking.
	CallerID string `json:"callerId"`

	// Recipient is the destination party.
	Recipient string `json:"recipient"`

	// CallDate carries only its calendar-day component (midnight UTC).
	// Time-of-day is not significant for any aggregation.
	CallDate time.Time `json:"callDate"`

	// EndTime is the wall-clock end of the call in "15:04:05" form.
	// Validated on ingest, carried through unchanged, read by nothing else.
	EndTime string `json:"endTime"`

	// Duration of the call in seconds. Expected >= 0, not enforced.
	Duration int `json:"duration"`

	// Cost of the call. Decimal with 3-digit precision; all aggregate math
	// stays in exact decimal arithmetic.
	Cost decimal.Decimal `json:"cost"`

	// Currency is an ISO-like currency code. Duplicate or unknown codes are
	// accepted as-is.
	Currency string `json:"currency"`
}

// Validate ensures a record parsed from CSV carries the fields every
// aggregate depends on.
func (r *CdrRecord) Validate() error {
	if r.Reference == "" {
		return fmt.Errorf("reference is required")
	}

	if r.CallDate.IsZero() {
		return fmt.Errorf("call date is required")
	}

	if r.EndTime != "" {
		if _, err := time.Parse(EndTimeLayout, r.EndTime); err != nil {
			return fmt.Errorf("invalid end time %q: %w", r.EndTime, err)
		}
	}

	return nil
}

// Day truncates t to its calendar-day component in UTC.
// All date grouping and range comparisons go through this.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
