package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/cdrlab/cdr-insights/internal/core/storage"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newMockAdapter builds an adapter over a sqlmock connection with all read
// statements prepared. Expectations are matched out of order because
// statement preparation iterates a map.
func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)

	for _, query := range preparedQueries {
		mock.ExpectPrepare(regexp.QuoteMeta(query))
	}

	stmts, err := prepareStatements(db)
	require.NoError(t, err)

	return &Adapter{db: db, stmts: stmts}, mock, db
}

func recordColumns() []string {
	return []string{
		"reference", "caller_id", "recipient", "call_date",
		"end_time", "duration", "cost", "currency",
	}
}

func testRecord(ref string) *v1.CdrRecord {
	return &v1.CdrRecord{
		Reference: ref,
		CallerID:  "441216000000",
		Recipient: "448000000000",
		CallDate:  time.Date(2016, 8, 16, 0, 0, 0, 0, time.UTC),
		EndTime:   "14:21:33",
		Duration:  43,
		Cost:      decimal.RequireFromString("0.084"),
		Currency:  "GBP",
	}
}

func TestAdapter_SaveRecords(t *testing.T) {
	tests := []struct {
		name       string
		records    []*v1.CdrRecord
		mockResult func(mock sqlmock.Sqlmock)
		assertions func(t *testing.T, err error)
	}{
		{
			name:    "batch commits atomically",
			records: []*v1.CdrRecord{testRecord("ref-1"), testRecord("ref-2")},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertRecord)).
					WithArgs("ref-1", "441216000000", "448000000000", sqlmock.AnyArg(),
						"14:21:33", 43, sqlmock.AnyArg(), "GBP").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertRecord)).
					WithArgs("ref-2", "441216000000", "448000000000", sqlmock.AnyArg(),
						"14:21:33", 43, sqlmock.AnyArg(), "GBP").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
		{
			name:    "unique violation maps to ErrDuplicate and rolls back",
			records: []*v1.CdrRecord{testRecord("ref-dup")},
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectPrepare(regexp.QuoteMeta(queryInsertRecord))
				mock.ExpectExec(regexp.QuoteMeta(queryInsertRecord)).
					WillReturnError(&pq.Error{Code: pqUniqueViolation})
				mock.ExpectRollback()
			},
			assertions: func(t *testing.T, err error) {
				require.ErrorIs(t, err, storage.ErrDuplicate)
				require.ErrorContains(t, err, "ref-dup")
			},
		},
		{
			name:    "empty batch is a no-op",
			records: nil,
			assertions: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			if tc.mockResult != nil {
				tc.mockResult(mock)
			}

			err := adapter.SaveRecords(context.Background(), tc.records)
			tc.assertions(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_ListRecords(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	callDate := time.Date(2016, 8, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(queryListRecords)).
		WillReturnRows(sqlmock.NewRows(recordColumns()).
			AddRow("ref-1", "A", "B", callDate, "14:21:33", 43, "0.084", "GBP").
			AddRow("ref-2", "C", "D", callDate, "15:00:00", 10, "1.250", "EUR"))

	records, err := adapter.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "ref-1", records[0].Reference)
	require.Equal(t, callDate, records[0].CallDate)
	require.True(t, decimal.RequireFromString("0.084").Equal(records[0].Cost))
	require.True(t, decimal.RequireFromString("1.250").Equal(records[1].Cost))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ListRecords_BadCost(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryListRecords)).
		WillReturnRows(sqlmock.NewRows(recordColumns()).
			AddRow("ref-1", "A", "B", time.Now(), "14:21:33", 43, "not-a-number", "GBP"))

	_, err := adapter.ListRecords(context.Background())
	require.ErrorContains(t, err, "failed to parse cost")
}
