package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/cdrlab/cdr-insights/internal/core/aggregation"
	"github.com/cdrlab/cdr-insights/internal/core/storage"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Service is the insights engine: stateless read-only aggregates over the
// record snapshot at call time. No caching, no memoization — repeated calls
// with unchanged data return identical results.
//
// When the store implements storage.AggregateReader (postgres), operations
// delegate to its SQL reductions. Otherwise (memory store) the snapshot is
// loaded once per call and reduced in process with the core/aggregation
// combinators.
type Service struct {
	store storage.RecordStore

	// reads coalesces identical concurrent aggregate queries into a single
	// store round-trip. Safe because every operation is a pure read.
	reads singleflight.Group
}

// NewService creates the insights engine over its single owned data source.
func NewService(store storage.RecordStore) *Service {
	if store == nil {
		panic("insights: store must not be nil")
	}
	return &Service{store: store}
}

func (s *Service) aggregateReader() (storage.AggregateReader, bool) {
	reader, ok := s.store.(storage.AggregateReader)
	return reader, ok
}

// snapshot loads the full record set for the in-process reduction path.
func (s *Service) snapshot(ctx context.Context) ([]*v1.CdrRecord, error) {
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load record snapshot: %w", err)
	}
	return records, nil
}

// AverageCost returns the exact decimal mean of all record costs.
// An empty store yields decimal.Zero, keeping the operation consistent with
// every other aggregate instead of failing on division by zero.
func (s *Service) AverageCost(ctx context.Context) (decimal.Decimal, error) {
	result, err := s.coalesce("average-cost", func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.AverageCost(ctx)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		costs := make([]decimal.Decimal, len(records))
		for i, record := range records {
			costs[i] = record.Cost
		}
		return aggregation.Mean(costs), nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.(decimal.Decimal), nil
}

// MaxCostRecord returns the record with the greatest cost. Ties keep the
// first record in snapshot iteration order. Returns nil on an empty store;
// the facade maps that to 404.
func (s *Service) MaxCostRecord(ctx context.Context) (*v1.CdrRecord, error) {
	return s.pickRecord(ctx, "max-cost",
		storage.AggregateReader.MaxCostRecord,
		func(r *v1.CdrRecord) decimal.Decimal { return r.Cost },
	)
}

// LongestCall returns the record with the greatest duration, nil on an
// empty store. Same tie rule as MaxCostRecord.
func (s *Service) LongestCall(ctx context.Context) (*v1.CdrRecord, error) {
	return s.pickRecord(ctx, "longest-call",
		storage.AggregateReader.LongestCall,
		func(r *v1.CdrRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Duration)) },
	)
}

func (s *Service) pickRecord(
	ctx context.Context,
	key string,
	delegate func(storage.AggregateReader, context.Context) (*v1.CdrRecord, error),
	value func(*v1.CdrRecord) decimal.Decimal,
) (*v1.CdrRecord, error) {
	result, err := s.coalesce(key, func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return delegate(reader, ctx)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		best, ok := aggregation.MaxBy(records, value)
		if !ok {
			return (*v1.CdrRecord)(nil), nil
		}
		return best, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*v1.CdrRecord), nil
}

// AverageCallsPerDay returns the mean of per-calendar-day call counts,
// 0 on an empty store. For N records over D distinct days this is N/D.
func (s *Service) AverageCallsPerDay(ctx context.Context) (float64, error) {
	result, err := s.coalesce("average-calls-per-day", func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.AverageCallsPerDay(ctx)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		perDay := aggregation.GroupBy(records,
			func(r *v1.CdrRecord) time.Time { return v1.Day(r.CallDate) },
			func(*v1.CdrRecord) decimal.Decimal { return decimal.Zero },
			aggregation.Count,
		)
		counts := make([]decimal.Decimal, 0, len(perDay))
		for _, count := range perDay {
			counts = append(counts, count)
		}
		return aggregation.Mean(counts).InexactFloat64(), nil
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

// TotalCostByCurrency sums cost per distinct currency. One entry per
// currency present, ordered by currency code ascending on both the SQL
// and in-process paths.
func (s *Service) TotalCostByCurrency(ctx context.Context) ([]v1.CostByCurrency, error) {
	result, err := s.coalesce("total-cost-by-currency", func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.TotalCostByCurrency(ctx)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		sums := aggregation.GroupBy(records,
			func(r *v1.CdrRecord) string { return r.Currency },
			func(r *v1.CdrRecord) decimal.Decimal { return r.Cost },
			aggregation.Sum,
		)
		totals := make([]v1.CostByCurrency, 0, len(sums))
		for currency, total := range sums {
			totals = append(totals, v1.CostByCurrency{Currency: currency, TotalCost: total})
		}
		sort.Slice(totals, func(i, j int) bool {
			return totals[i].Currency < totals[j].Currency
		})
		return totals, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]v1.CostByCurrency), nil
}

// TopCallers ranks callers descending by call count, ties broken by caller
// id ascending, truncated to n. Records with an empty caller id are excluded.
// n <= 0 returns an empty result without touching the store.
func (s *Service) TopCallers(ctx context.Context, n int) ([]v1.TopCaller, error) {
	if n <= 0 {
		return []v1.TopCaller{}, nil
	}

	result, err := s.coalesce(fmt.Sprintf("top-callers:%d", n), func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.TopCallers(ctx, n)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		attributed := make([]*v1.CdrRecord, 0, len(records))
		for _, record := range records {
			if record.CallerID != "" {
				attributed = append(attributed, record)
			}
		}
		counts := aggregation.GroupBy(attributed,
			func(r *v1.CdrRecord) string { return r.CallerID },
			func(*v1.CdrRecord) decimal.Decimal { return decimal.Zero },
			aggregation.Count,
		)

		callers := make([]v1.TopCaller, 0, len(counts))
		for caller, count := range counts {
			callers = append(callers, v1.TopCaller{CallerID: caller, CallCount: int(count.IntPart())})
		}
		sort.Slice(callers, func(i, j int) bool {
			if callers[i].CallCount != callers[j].CallCount {
				return callers[i].CallCount > callers[j].CallCount
			}
			return callers[i].CallerID < callers[j].CallerID
		})
		if len(callers) > n {
			callers = callers[:n]
		}
		return callers, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]v1.TopCaller), nil
}

// DailySummary returns call count, total duration and total cost per
// distinct calendar day, ascending by date.
func (s *Service) DailySummary(ctx context.Context) ([]v1.DailySummary, error) {
	result, err := s.coalesce("daily-summary", func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.DailySummary(ctx)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}

		day := func(r *v1.CdrRecord) time.Time { return v1.Day(r.CallDate) }
		calls := aggregation.GroupBy(records, day,
			func(*v1.CdrRecord) decimal.Decimal { return decimal.Zero }, aggregation.Count)
		durations := aggregation.GroupBy(records, day,
			func(r *v1.CdrRecord) decimal.Decimal { return decimal.NewFromInt(int64(r.Duration)) }, aggregation.Sum)
		costs := aggregation.GroupBy(records, day,
			func(r *v1.CdrRecord) decimal.Decimal { return r.Cost }, aggregation.Sum)

		summaries := make([]v1.DailySummary, 0, len(calls))
		for date, count := range calls {
			summaries = append(summaries, v1.DailySummary{
				Date:          date,
				TotalCalls:    int(count.IntPart()),
				TotalDuration: int(durations[date].IntPart()),
				TotalCost:     costs[date],
			})
		}
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].Date.Before(summaries[j].Date)
		})
		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]v1.DailySummary), nil
}

// CallCountInRange counts records whose call date falls within [start, end],
// inclusive on both ends at calendar-day granularity. start > end yields 0.
func (s *Service) CallCountInRange(ctx context.Context, start, end time.Time) (int, error) {
	startDay, endDay := v1.Day(start), v1.Day(end)
	if startDay.After(endDay) {
		return 0, nil
	}

	key := fmt.Sprintf("count:%s:%s", startDay.Format(v1.DateLayout), endDay.Format(v1.DateLayout))
	result, err := s.coalesce(key, func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.CallCountInRange(ctx, startDay, endDay)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		count := 0
		for _, record := range records {
			day := v1.Day(record.CallDate)
			if !day.Before(startDay) && !day.After(endDay) {
				count++
			}
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// TotalDurationByRecipient sums durations of calls whose recipient exactly
// matches the input. An unknown recipient yields 0, not an error.
func (s *Service) TotalDurationByRecipient(ctx context.Context, recipient string) (int, error) {
	result, err := s.coalesce("total-duration:"+recipient, func() (interface{}, error) {
		if reader, ok := s.aggregateReader(); ok {
			return reader.TotalDurationByRecipient(ctx, recipient)
		}

		records, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, record := range records {
			if record.Recipient == recipient {
				total += record.Duration
			}
		}
		return total, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

// coalesce deduplicates concurrent identical reads. The winning call's
// context serves every waiter, which is acceptable for these short
// read-only queries.
func (s *Service) coalesce(key string, fn func() (interface{}, error)) (interface{}, error) {
	result, err, _ := s.reads.Do(key, fn)
	return result, err
}
