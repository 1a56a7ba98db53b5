package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/shopspring/decimal"
)

// storage.AggregateReader implementation. Every operation is one SQL
// reduction; empty-store fallbacks (0 / empty set) come from COALESCE or the
// natural result of aggregating zero rows.

// AverageCost returns the exact mean of all costs, decimal.Zero when the
// store is empty.
func (a *Adapter) AverageCost(ctx context.Context) (decimal.Decimal, error) {
	var avg string
	if err := a.stmts["averageCost"].QueryRowContext(ctx).Scan(&avg); err != nil {
		return decimal.Zero, fmt.Errorf("failed to query average cost: %w", err)
	}

	value, err := decimal.NewFromString(avg)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse average cost %q: %w", avg, err)
	}
	return value, nil
}

// MaxCostRecord returns the record with the greatest cost, nil when the
// store is empty.
func (a *Adapter) MaxCostRecord(ctx context.Context) (*v1.CdrRecord, error) {
	return a.pickRecord(ctx, "maxCostRecord")
}

// LongestCall returns the record with the greatest duration, nil when the
// store is empty.
func (a *Adapter) LongestCall(ctx context.Context) (*v1.CdrRecord, error) {
	return a.pickRecord(ctx, "longestCall")
}

func (a *Adapter) pickRecord(ctx context.Context, stmt string) (*v1.CdrRecord, error) {
	record, err := scanRecordRow(a.stmts[stmt].QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", stmt, err)
	}
	return record, nil
}

// AverageCallsPerDay returns the mean of per-day call counts, 0 when the
// store is empty.
func (a *Adapter) AverageCallsPerDay(ctx context.Context) (float64, error) {
	var avg float64
	if err := a.stmts["averageCallsPerDay"].QueryRowContext(ctx).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to query average calls per day: %w", err)
	}
	return avg, nil
}

// TotalCostByCurrency returns the summed cost per distinct currency.
func (a *Adapter) TotalCostByCurrency(ctx context.Context) ([]v1.CostByCurrency, error) {
	rows, err := a.stmts["totalCostByCurrency"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost by currency: %w", err)
	}
	defer rows.Close()

	totals := []v1.CostByCurrency{}
	for rows.Next() {
		var entry v1.CostByCurrency
		var total string
		if err := rows.Scan(&entry.Currency, &total); err != nil {
			return nil, fmt.Errorf("failed to scan currency total: %w", err)
		}
		if entry.TotalCost, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse currency total %q: %w", total, err)
		}
		totals = append(totals, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency totals: %w", err)
	}
	return totals, nil
}

// TopCallers ranks non-empty caller ids by call count, descending, truncated
// to n. n <= 0 short-circuits to an empty result without touching the store.
func (a *Adapter) TopCallers(ctx context.Context, n int) ([]v1.TopCaller, error) {
	if n <= 0 {
		return []v1.TopCaller{}, nil
	}

	rows, err := a.stmts["topCallers"].QueryContext(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top callers: %w", err)
	}
	defer rows.Close()

	callers := []v1.TopCaller{}
	for rows.Next() {
		var entry v1.TopCaller
		if err := rows.Scan(&entry.CallerID, &entry.CallCount); err != nil {
			return nil, fmt.Errorf("failed to scan top caller: %w", err)
		}
		callers = append(callers, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top callers: %w", err)
	}
	return callers, nil
}

// DailySummary returns per-day call count, total duration and total cost,
// ascending by date.
func (a *Adapter) DailySummary(ctx context.Context) ([]v1.DailySummary, error) {
	rows, err := a.stmts["dailySummary"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	defer rows.Close()

	summaries := []v1.DailySummary{}
	for rows.Next() {
		var entry v1.DailySummary
		var cost string
		if err := rows.Scan(&entry.Date, &entry.TotalCalls, &entry.TotalDuration, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		if entry.TotalCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("failed to parse daily cost %q: %w", cost, err)
		}
		entry.Date = v1.Day(entry.Date)
		summaries = append(summaries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily summaries: %w", err)
	}
	return summaries, nil
}

// CallCountInRange counts records whose call date falls in [start, end],
// both ends inclusive at calendar-day granularity.
func (a *Adapter) CallCountInRange(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := a.stmts["callCountInRange"].QueryRowContext(ctx, v1.Day(start), v1.Day(end)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query call count in range: %w", err)
	}
	return count, nil
}

// TotalDurationByRecipient sums durations for an exact recipient match,
// 0 when nothing matches.
func (a *Adapter) TotalDurationByRecipient(ctx context.Context, recipient string) (int, error) {
	var total int
	err := a.stmts["totalDurationByRecipient"].QueryRowContext(ctx, recipient).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to query duration by recipient: %w", err)
	}
	return total, nil
}
