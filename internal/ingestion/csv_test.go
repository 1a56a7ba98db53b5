package ingestion

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const sampleCsv = `reference,caller_id,recipient,call_date,end_time,duration,cost,currency
C5DA9724701EEBBA95CA2CC5617BA93E4,441216000000,448000000000,16/08/2016,14:21:33,43,0.000,GBP
C50B5A7BDB8D68B8512BB14A9D363CAA1,442036000000,44800833833,16/08/2016,14:00:47,244,0.000,GBP
C639B85BFEF5A0D3AD3D3A4F8A4ABF823,447900000000,44973000000,17/08/2016,16:10:13,301,0.084,GBP
`

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords(strings.NewReader(sampleCsv))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	require.Equal(t, "C5DA9724701EEBBA95CA2CC5617BA93E4", first.Reference)
	require.Equal(t, "441216000000", first.CallerID)
	require.Equal(t, "448000000000", first.Recipient)
	require.Equal(t, time.Date(2016, 8, 16, 0, 0, 0, 0, time.UTC), first.CallDate)
	require.Equal(t, "14:21:33", first.EndTime)
	require.Equal(t, 43, first.Duration)
	require.True(t, decimal.RequireFromString("0.000").Equal(first.Cost))
	require.Equal(t, "GBP", first.Currency)

	require.True(t, decimal.RequireFromString("0.084").Equal(records[2].Cost))
}

func TestParseRecords_ColumnOrderIsFree(t *testing.T) {
	csv := `cost,reference,currency,caller_id,recipient,call_date,end_time,duration
1.500,ref-1,EUR,A,B,01/02/2026,09:30:00,120
`
	records, err := ParseRecords(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "ref-1", records[0].Reference)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), records[0].CallDate)
	require.True(t, decimal.RequireFromString("1.5").Equal(records[0].Cost))
}

func TestParseRecords_BadRowFailsWholeBatch(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{"bad date", "ref-1,A,B,2016-08-16,14:00:00,10,0.1,GBP", "invalid call_date"},
		{"bad end time", "ref-1,A,B,16/08/2016,2pm,10,0.1,GBP", "invalid end_time"},
		{"bad duration", "ref-1,A,B,16/08/2016,14:00:00,ten,0.1,GBP", "invalid duration"},
		{"bad cost", "ref-1,A,B,16/08/2016,14:00:00,10,free,GBP", "invalid cost"},
		{"missing reference", ",A,B,16/08/2016,14:00:00,10,0.1,GBP", "reference is required"},
	}

	header := "reference,caller_id,recipient,call_date,end_time,duration,cost,currency\n"
	goodRow := "ref-0,A,B,15/08/2016,13:00:00,5,0.2,GBP\n"

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records, err := ParseRecords(strings.NewReader(header + goodRow + tc.row + "\n"))
			require.ErrorContains(t, err, tc.wantErr)
			require.ErrorContains(t, err, "line 3")
			require.Nil(t, records)
		})
	}
}

func TestParseRecords_MissingColumn(t *testing.T) {
	csv := `reference,caller_id,recipient,call_date,end_time,duration,cost
ref-1,A,B,16/08/2016,14:00:00,10,0.1
`
	_, err := ParseRecords(strings.NewReader(csv))
	require.ErrorContains(t, err, `missing csv column "currency"`)
}

func TestParseRecords_EmptyStream(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(""))
	require.ErrorContains(t, err, "empty")
}

func TestParseRecords_HeaderOnly(t *testing.T) {
	csv := "reference,caller_id,recipient,call_date,end_time,duration,cost,currency\n"
	records, err := ParseRecords(strings.NewReader(csv))
	require.NoError(t, err)
	require.Empty(t, records)
}
