// Package extract turns matched log lines into typed records.
package extract

import (
	"runtime"
	"strconv"
	"sync"

	"accesstop/internal/logfmt"
)

// Derived field names. Any other requested field resolves to the raw capture
// of the same name.
const (
	FieldStatusType  = "status_type"
	FieldBytesSent   = "bytes_sent"
	FieldRequestPath = "request_path"
)

// Record holds one matched line's values, aligned with the extractor's field
// list. Values are int64 for the numeric derived fields and string otherwise.
type Record []any

// Extractor resolves a fixed field list against matched lines. It holds only
// immutable state and is safe for concurrent use.
type Extractor struct {
	matcher *logfmt.Matcher
	fields  []string
}

// New creates an Extractor for the given matcher and requested fields.
func New(matcher *logfmt.Matcher, fields []string) *Extractor {
	return &Extractor{matcher: matcher, fields: fields}
}

// Fields returns the requested field names in output order.
func (e *Extractor) Fields() []string { return e.fields }

// Extract resolves one line into a Record. A line that does not match the
// format produces no record and no error; malformed lines must never abort
// a batch.
func (e *Extractor) Extract(line string) (Record, bool) {
	caps, ok := e.matcher.Match(line)
	if !ok {
		return nil, false
	}

	rec := make(Record, 0, len(e.fields))
	for _, field := range e.fields {
		switch field {
		case FieldStatusType:
			rec = append(rec, statusType(caps["status"]))
		case FieldBytesSent:
			rec = append(rec, parseCount(caps["body_bytes_sent"]))
		case FieldRequestPath:
			rec = append(rec, requestPath(caps))
		default:
			rec = append(rec, caps[field])
		}
	}
	return rec, true
}

// ExtractAll runs Extract over all lines with one worker per CPU. Workers
// share the immutable matcher and field list and write only their own chunk;
// result order is unspecified, which is fine because downstream aggregation
// is order-independent.
func (e *Extractor) ExtractAll(lines []string) []Record {
	workers := runtime.NumCPU()
	if workers > len(lines) {
		workers = len(lines)
	}
	if workers <= 1 {
		return e.extractChunk(lines)
	}

	chunks := make([][]Record, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * len(lines) / workers
		hi := (w + 1) * len(lines) / workers
		wg.Add(1)
		go func(w int, part []string) {
			defer wg.Done()
			chunks[w] = e.extractChunk(part)
		}(w, lines[lo:hi])
	}
	wg.Wait()

	var records []Record
	for _, c := range chunks {
		records = append(records, c...)
	}
	return records
}

func (e *Extractor) extractChunk(lines []string) []Record {
	records := make([]Record, 0, len(lines))
	for _, line := range lines {
		if rec, ok := e.Extract(line); ok {
			records = append(records, rec)
		}
	}
	return records
}

// statusType buckets an HTTP status capture into its hundreds class.
// An absent or unparsable status maps to class 0.
func statusType(status string) int64 {
	n, err := strconv.ParseUint(status, 10, 16)
	if err != nil {
		return 0
	}
	return int64(n / 100)
}

// parseCount parses an unsigned numeric capture, mapping absent or
// unparsable input to 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return int64(n)
}

// requestPath prefers a dedicated request_uri capture and falls back to the
// full request line, verbatim in both cases. Splitting out method and
// protocol is deliberately not done here.
func requestPath(caps map[string]string) string {
	if uri, ok := caps["request_uri"]; ok {
		return uri
	}
	return caps["request"]
}
