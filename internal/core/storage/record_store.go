package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/shopspring/decimal"
)

// ErrDuplicate is returned when a batch contains a reference that already
// exists in the store. The whole batch is rejected.
var ErrDuplicate = errors.New("record reference already exists")

// RecordStore is the persistence contract for CDR records: append-only batch
// writes from ingestion, full-snapshot reads for the insights engine.
type RecordStore interface {
	// SaveRecords persists a batch atomically. Either every record is stored
	// or none is; a duplicate reference returns ErrDuplicate.
	SaveRecords(ctx context.Context, records []*v1.CdrRecord) error

	// ListRecords returns the full record snapshot at call time.
	ListRecords(ctx context.Context) ([]*v1.CdrRecord, error)
}

// AggregateReader is an optional store capability. Stores that can group and
// reduce natively (SQL GROUP BY) implement it; the insights engine discovers
// it by type assertion and delegates instead of scanning the snapshot in
// process. Semantics must match the in-process fallback exactly.
type AggregateReader interface {
	// AverageCost returns the exact decimal mean of all record costs,
	// decimal.Zero on an empty store.
	AverageCost(ctx context.Context) (decimal.Decimal, error)

	// MaxCostRecord returns the record with the greatest cost, nil on an
	// empty store.
	MaxCostRecord(ctx context.Context) (*v1.CdrRecord, error)

	// LongestCall returns the record with the greatest duration, nil on an
	// empty store.
	LongestCall(ctx context.Context) (*v1.CdrRecord, error)

	// AverageCallsPerDay returns the mean of per-calendar-day call counts,
	// 0 on an empty store.
	AverageCallsPerDay(ctx context.Context) (float64, error)

	// TotalCostByCurrency returns one entry per distinct currency, ordered
	// by currency code ascending.
	TotalCostByCurrency(ctx context.Context) ([]v1.CostByCurrency, error)

	// TopCallers ranks non-empty caller ids descending by call count,
	// ties broken by caller id ascending, truncated to n. n <= 0 returns an
	// empty result.
	TopCallers(ctx context.Context, n int) ([]v1.TopCaller, error)

	// DailySummary returns one entry per distinct calendar day, ascending.
	DailySummary(ctx context.Context) ([]v1.DailySummary, error)

	// CallCountInRange counts records with start <= call date <= end.
	// start > end returns 0.
	CallCountInRange(ctx context.Context, start, end time.Time) (int, error)

	// TotalDurationByRecipient sums durations of calls to recipient,
	// 0 when nothing matches.
	TotalDurationByRecipient(ctx context.Context, recipient string) (int, error)
}
