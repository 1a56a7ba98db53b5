package aggregation

import (
	"github.com/shopspring/decimal"
)

// Reducer defines the fold semantics of an aggregation operator.
// The grouping helpers below are generic over the key and element types;
// adding a new aggregate means implementing this interface, not writing
// another hand-rolled scan.
type Reducer interface {
	// Initial returns the aggregate value after the very first element of a
	// group. count → 1; sum/max → the incoming value itself.
	Initial(incoming decimal.Decimal) decimal.Decimal

	// Apply folds an incoming value into an existing aggregate.
	Apply(current, incoming decimal.Decimal) decimal.Decimal
}

var (
	// Count increments by 1 per element. The incoming value is ignored.
	Count Reducer = countReducer{}

	// Sum accumulates the sum of incoming values.
	Sum Reducer = sumReducer{}

	// Max tracks the greatest value seen.
	Max Reducer = maxReducer{}
)

type countReducer struct{}

func (countReducer) Initial(_ decimal.Decimal) decimal.Decimal { return decimal.NewFromInt(1) }
func (countReducer) Apply(cur, _ decimal.Decimal) decimal.Decimal {
	return cur.Add(decimal.NewFromInt(1))
}

type sumReducer struct{}

func (sumReducer) Initial(v decimal.Decimal) decimal.Decimal      { return v }
func (sumReducer) Apply(cur, inc decimal.Decimal) decimal.Decimal { return cur.Add(inc) }

type maxReducer struct{}

func (maxReducer) Initial(v decimal.Decimal) decimal.Decimal { return v }
func (maxReducer) Apply(cur, inc decimal.Decimal) decimal.Decimal {
	if inc.GreaterThan(cur) {
		return inc
	}
	return cur
}

// GroupBy partitions items by key and folds each partition with r.
// A single pass; the resulting map has one entry per distinct key.
func GroupBy[T any, K comparable](items []T, key func(T) K, value func(T) decimal.Decimal, r Reducer) map[K]decimal.Decimal {
	groups := make(map[K]decimal.Decimal)
	for _, item := range items {
		k := key(item)
		if cur, ok := groups[k]; ok {
			groups[k] = r.Apply(cur, value(item))
		} else {
			groups[k] = r.Initial(value(item))
		}
	}
	return groups
}

// Mean returns the exact decimal mean of values, decimal.Zero for empty input.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total.Div(decimal.NewFromInt(int64(len(values))))
}

// MaxBy returns the item with the greatest value. Ties keep the first
// encountered item. ok is false when items is empty.
func MaxBy[T any](items []T, value func(T) decimal.Decimal) (best T, ok bool) {
	var bestVal decimal.Decimal
	for _, item := range items {
		v := value(item)
		if !ok || v.GreaterThan(bestVal) {
			best, bestVal, ok = item, v, true
		}
	}
	return best, ok
}
