package postgres

import (
	"fmt"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecordRow scans a cdr_records row into a CdrRecord. NUMERIC comes back
// as text and is parsed into an exact decimal; DATE is normalized to midnight
// UTC. Compatible with both sql.Row and sql.Rows.
func scanRecordRow(row scanner) (*v1.CdrRecord, error) {
	var rec v1.CdrRecord
	var cost string

	err := row.Scan(
		&rec.Reference,
		&rec.CallerID,
		&rec.Recipient,
		&rec.CallDate,
		&rec.EndTime,
		&rec.Duration,
		&cost,
		&rec.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan record row: %w", err)
	}

	rec.Cost, err = decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cost %q: %w", cost, err)
	}

	rec.CallDate = v1.Day(rec.CallDate)
	return &rec, nil
}
