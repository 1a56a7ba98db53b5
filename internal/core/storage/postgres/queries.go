package postgres

// SQL for CDR record storage and the SQL-side aggregate implementations.
// Aggregates are expressed as GROUP BY / reductions in the database rather
// than snapshot scans in Go; their semantics must stay in lockstep with the
// in-process fallback in internal/insights.

const (
	// queryInsertRecord appends one record. reference is the primary key;
	// a unique violation aborts the whole batch transaction.
	queryInsertRecord = `
		INSERT INTO cdr_records (
			reference, caller_id, recipient, call_date,
			end_time, duration, cost, currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// queryListRecords returns the full snapshot. Ordered by reference so
	// snapshot iteration order is deterministic across reads.
	queryListRecords = `
		SELECT reference, caller_id, recipient, call_date,
		       end_time, duration, cost, currency
		FROM cdr_records
		ORDER BY reference ASC
	`

	// COALESCE keeps the empty-store result at 0 instead of NULL.
	queryAverageCost = `
		SELECT COALESCE(AVG(cost), 0) FROM cdr_records
	`

	// Secondary reference ordering makes cost ties deterministic and matches
	// the in-process fallback, which scans records in reference order.
	queryMaxCostRecord = `
		SELECT reference, caller_id, recipient, call_date,
		       end_time, duration, cost, currency
		FROM cdr_records
		ORDER BY cost DESC, reference ASC
		LIMIT 1
	`

	queryLongestCall = `
		SELECT reference, caller_id, recipient, call_date,
		       end_time, duration, cost, currency
		FROM cdr_records
		ORDER BY duration DESC, reference ASC
		LIMIT 1
	`

	queryAverageCallsPerDay = `
		SELECT COALESCE(AVG(cnt), 0)
		FROM (
			SELECT COUNT(*) AS cnt
			FROM cdr_records
			GROUP BY call_date
		) AS daily
	`

	queryTotalCostByCurrency = `
		SELECT currency, SUM(cost)
		FROM cdr_records
		GROUP BY currency
		ORDER BY currency ASC
	`

	// Empty caller ids are excluded from the ranking. calls DESC with
	// caller_id ASC keeps count ties stable.
	queryTopCallers = `
		SELECT caller_id, COUNT(*) AS calls
		FROM cdr_records
		WHERE caller_id <> ''
		GROUP BY caller_id
		ORDER BY calls DESC, caller_id ASC
		LIMIT $1
	`

	queryDailySummary = `
		SELECT call_date, COUNT(*), SUM(duration), SUM(cost)
		FROM cdr_records
		GROUP BY call_date
		ORDER BY call_date ASC
	`

	// Inclusive on both ends; start > end simply matches nothing.
	queryCallCountInRange = `
		SELECT COUNT(*)
		FROM cdr_records
		WHERE call_date >= $1 AND call_date <= $2
	`

	queryTotalDurationByRecipient = `
		SELECT COALESCE(SUM(duration), 0)
		FROM cdr_records
		WHERE recipient = $1
	`
)
