// Package query maps a subcommand and its options to the field schema and
// the aggregate queries a run will execute.
//
// Field and table identifiers are interpolated without escaping; a caller
// passing names with whitespace or reserved words owns the consequences.
package query

import (
	"fmt"
	"strings"

	"accesstop/internal/extract"
)

// Table is the name of the single table every run stores records in.
const Table = "log"

// Options carries the display knobs that shape the default queries.
type Options struct {
	GroupBy string
	Having  uint64
	Limit   uint64
	OrderBy string
}

// Plan is the resolved outcome of a subcommand: the fields the schema needs
// and the queries to run against it. Plans are built once per run and never
// mutated afterwards.
type Plan struct {
	Fields  []string
	Queries []string
}

// Default builds the two-query summary report: one overall bucket row and
// one row per group-by value, filtered by the having threshold.
func Default(opts Options) Plan {
	fields := []string{extract.FieldStatusType, extract.FieldBytesSent}
	if !contains(fields, opts.GroupBy) {
		fields = append(fields, opts.GroupBy)
	}

	summary := fmt.Sprintf(`SELECT COUNT(*) AS count,
AVG(bytes_sent) AS avg_bytes_sent,
COUNT(CASE WHEN status_type = 2 THEN 1 END) AS "2XX",
COUNT(CASE WHEN status_type = 3 THEN 1 END) AS "3XX",
COUNT(CASE WHEN status_type = 4 THEN 1 END) AS "4XX",
COUNT(CASE WHEN status_type = 5 THEN 1 END) AS "5XX"
FROM %s
ORDER BY %s DESC
LIMIT %d`, Table, opts.OrderBy, opts.Limit)

	detailed := fmt.Sprintf(`SELECT %s,
COUNT(*) AS count,
AVG(bytes_sent) AS avg_bytes_sent,
COUNT(CASE WHEN status_type = 2 THEN 1 END) AS "2XX",
COUNT(CASE WHEN status_type = 3 THEN 1 END) AS "3XX",
COUNT(CASE WHEN status_type = 4 THEN 1 END) AS "4XX",
COUNT(CASE WHEN status_type = 5 THEN 1 END) AS "5XX"
FROM %s
GROUP BY %s
HAVING COUNT(*) >= %d
ORDER BY %s DESC
LIMIT %d`, opts.GroupBy, Table, opts.GroupBy, opts.Having, opts.OrderBy, opts.Limit)

	return Plan{Fields: fields, Queries: []string{summary, detailed}}
}

// Avg selects the average of every given field.
func Avg(fields []string) Plan {
	return aggregate("AVG", fields)
}

// Sum selects the sum of every given field.
func Sum(fields []string) Plan {
	return aggregate("SUM", fields)
}

// Print lists the distinct combinations of the given fields.
func Print(fields []string) Plan {
	selections := strings.Join(fields, ", ")
	q := fmt.Sprintf("SELECT %s FROM %s GROUP BY %s", selections, Table, selections)
	return Plan{Fields: fields, Queries: []string{q}}
}

// Top builds one ranking query per field: its most frequent values in
// descending count order, capped at limit rows.
func Top(fields []string, limit uint64) Plan {
	queries := make([]string, 0, len(fields))
	for _, f := range fields {
		queries = append(queries, fmt.Sprintf(
			"SELECT %s, COUNT(*) AS count FROM %s GROUP BY %s ORDER BY count DESC LIMIT %d",
			f, Table, f, limit))
	}
	return Plan{Fields: fields, Queries: queries}
}

// Custom passes a user-supplied query through verbatim.
func Custom(fields []string, query string) Plan {
	return Plan{Fields: fields, Queries: []string{query}}
}

func aggregate(fn string, fields []string) Plan {
	selections := make([]string, 0, len(fields))
	for _, f := range fields {
		selections = append(selections, fmt.Sprintf("%s(%s)", fn, f))
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selections, ", "), Table)
	return Plan{Fields: fields, Queries: []string{q}}
}

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
