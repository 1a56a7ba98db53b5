package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	"github.com/shopspring/decimal"
)

// callDateLayout is the dd/MM/yyyy form of the call_date CSV column.
const callDateLayout = "02/01/2006"

// csvColumns are the required header names. Column order is free; fields are
// mapped by header name.
var csvColumns = []string{
	"reference", "caller_id", "recipient", "call_date",
	"end_time", "duration", "cost", "currency",
}

// ParseRecords decodes a CSV stream into typed records using the fixed
// column mapping. Any row that cannot be parsed fails the whole batch —
// there is no partial-row recovery.
func ParseRecords(r io.Reader) ([]*v1.CdrRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv stream is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []*v1.CdrRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		record, err := parseRow(row, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, record)
	}

	return records, nil
}

// mapColumns resolves each required column name to its index in the header.
func mapColumns(header []string) (map[string]int, error) {
	indices := make(map[string]int, len(header))
	for i, name := range header {
		indices[strings.TrimSpace(strings.ToLower(name))] = i
	}

	columns := make(map[string]int, len(csvColumns))
	for _, name := range csvColumns {
		idx, ok := indices[name]
		if !ok {
			return nil, fmt.Errorf("missing csv column %q", name)
		}
		columns[name] = idx
	}
	return columns, nil
}

func parseRow(row []string, columns map[string]int) (*v1.CdrRecord, error) {
	field := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	callDate, err := time.Parse(callDateLayout, field("call_date"))
	if err != nil {
		return nil, fmt.Errorf("invalid call_date %q: %w", field("call_date"), err)
	}

	endTime := field("end_time")
	if _, err := time.Parse(v1.EndTimeLayout, endTime); err != nil {
		return nil, fmt.Errorf("invalid end_time %q: %w", endTime, err)
	}

	duration, err := strconv.Atoi(field("duration"))
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", field("duration"), err)
	}

	cost, err := decimal.NewFromString(field("cost"))
	if err != nil {
		return nil, fmt.Errorf("invalid cost %q: %w", field("cost"), err)
	}

	record := &v1.CdrRecord{
		Reference: field("reference"),
		CallerID:  field("caller_id"),
		Recipient: field("recipient"),
		CallDate:  v1.Day(callDate),
		EndTime:   endTime,
		Duration:  duration,
		Cost:      cost,
		Currency:  field("currency"),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}
