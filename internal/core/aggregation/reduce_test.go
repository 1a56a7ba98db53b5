package aggregation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestReducers_InitialAndApply(t *testing.T) {
	tests := []struct {
		name        string
		reducer     Reducer
		incoming    decimal.Decimal
		current     decimal.Decimal
		next        decimal.Decimal
		wantInitial decimal.Decimal
		wantApply   decimal.Decimal
	}{
		{
			name:        "count ignores values",
			reducer:     Count,
			incoming:    decimal.NewFromInt(123),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(456),
			wantInitial: decimal.NewFromInt(1),
			wantApply:   decimal.NewFromInt(10),
		},
		{
			name:        "sum",
			reducer:     Sum,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(4),
			wantInitial: decimal.NewFromInt(3),
			wantApply:   decimal.NewFromInt(13),
		},
		{
			name:        "max keeps higher current",
			reducer:     Max,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(9),
			next:        decimal.NewFromInt(4),
			wantInitial: decimal.NewFromInt(3),
			wantApply:   decimal.NewFromInt(9),
		},
		{
			name:        "max takes higher incoming",
			reducer:     Max,
			incoming:    decimal.NewFromInt(3),
			current:     decimal.NewFromInt(4),
			next:        decimal.NewFromInt(9),
			wantInitial: decimal.NewFromInt(3),
			wantApply:   decimal.NewFromInt(9),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.wantInitial.Equal(tc.reducer.Initial(tc.incoming)))
			require.True(t, tc.wantApply.Equal(tc.reducer.Apply(tc.current, tc.next)))
		})
	}
}

type labeled struct {
	label string
	value int64
}

func TestGroupBy(t *testing.T) {
	items := []labeled{
		{"gbp", 10},
		{"eur", 3},
		{"gbp", 5},
		{"eur", 2},
		{"aud", 7},
	}

	sums := GroupBy(items,
		func(l labeled) string { return l.label },
		func(l labeled) decimal.Decimal { return decimal.NewFromInt(l.value) },
		Sum,
	)

	require.Len(t, sums, 3)
	require.True(t, decimal.NewFromInt(15).Equal(sums["gbp"]))
	require.True(t, decimal.NewFromInt(5).Equal(sums["eur"]))
	require.True(t, decimal.NewFromInt(7).Equal(sums["aud"]))

	counts := GroupBy(items,
		func(l labeled) string { return l.label },
		func(labeled) decimal.Decimal { return decimal.Zero },
		Count,
	)

	require.True(t, decimal.NewFromInt(2).Equal(counts["gbp"]))
	require.True(t, decimal.NewFromInt(2).Equal(counts["eur"]))
	require.True(t, decimal.NewFromInt(1).Equal(counts["aud"]))
}

func TestGroupBy_Empty(t *testing.T) {
	groups := GroupBy(nil,
		func(l labeled) string { return l.label },
		func(l labeled) decimal.Decimal { return decimal.NewFromInt(l.value) },
		Sum,
	)
	require.Empty(t, groups)
}

func TestMean(t *testing.T) {
	require.True(t, decimal.Zero.Equal(Mean(nil)))

	values := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.NewFromInt(3),
		decimal.NewFromInt(5),
	}
	require.True(t, decimal.NewFromInt(3).Equal(Mean(values)))

	// Exact decimal arithmetic, not float approximation.
	exact := []decimal.Decimal{
		decimal.RequireFromString("0.1"),
		decimal.RequireFromString("0.2"),
	}
	require.True(t, decimal.RequireFromString("0.15").Equal(Mean(exact)))
}

func TestMaxBy(t *testing.T) {
	_, ok := MaxBy(nil, func(l labeled) decimal.Decimal { return decimal.NewFromInt(l.value) })
	require.False(t, ok)

	items := []labeled{{"a", 4}, {"b", 9}, {"c", 9}, {"d", 1}}
	best, ok := MaxBy(items, func(l labeled) decimal.Decimal { return decimal.NewFromInt(l.value) })
	require.True(t, ok)
	require.Equal(t, "b", best.label) // first of the tied pair wins
}
