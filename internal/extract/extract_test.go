package extract

import (
	"fmt"
	"reflect"
	"sort"
	"testing"

	"accesstop/internal/logfmt"
)

const sampleLine = `66.249.65.3 - - [06/Nov/2014:19:11:24 +0600] "GET / HTTP/1.1" 200 4223 "-" "User-Agent"`

func combinedMatcher(t *testing.T) *logfmt.Matcher {
	t.Helper()
	m, err := logfmt.Compile(logfmt.FormatCombined)
	if err != nil {
		t.Fatalf("Compile(combined): %v", err)
	}
	return m
}

func TestExtractDerivedFields(t *testing.T) {
	ex := New(combinedMatcher(t), []string{FieldStatusType, FieldBytesSent, FieldRequestPath})

	rec, ok := ex.Extract(sampleLine)
	if !ok {
		t.Fatalf("Extract did not match %q", sampleLine)
	}
	want := Record{int64(2), int64(4223), "GET / HTTP/1.1"}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("Extract = %v, want %v", rec, want)
	}
}

func TestStatusType(t *testing.T) {
	for _, tc := range []struct {
		status string
		want   int64
	}{
		{"404", 4},
		{"204", 2},
		{"", 0},
		{"abc", 0},
		{"503", 5},
	} {
		if got := statusType(tc.status); got != tc.want {
			t.Errorf("statusType(%q) = %d, want %d", tc.status, got, tc.want)
		}
	}
}

func TestBytesSentUnparsable(t *testing.T) {
	// "-" is what nginx logs for a zero-byte body.
	line := `66.249.65.3 - - [06/Nov/2014:19:11:24 +0600] "GET / HTTP/1.1" 304 - "-" "UA"`
	ex := New(combinedMatcher(t), []string{FieldBytesSent})

	rec, ok := ex.Extract(line)
	if !ok {
		t.Fatalf("Extract did not match %q", line)
	}
	if rec[0] != int64(0) {
		t.Errorf("bytes_sent = %v, want 0", rec[0])
	}
}

func TestRequestPathPrefersRequestURI(t *testing.T) {
	m, err := logfmt.Compile(`$remote_addr "$request_uri" $status`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ex := New(m, []string{FieldRequestPath})

	rec, ok := ex.Extract(`1.2.3.4 "/index.html?q=1" 200`)
	if !ok {
		t.Fatal("Extract did not match")
	}
	if rec[0] != "/index.html?q=1" {
		t.Errorf("request_path = %q, want request_uri verbatim", rec[0])
	}
}

func TestRequestPathFallsBackToRequestLine(t *testing.T) {
	ex := New(combinedMatcher(t), []string{FieldRequestPath})

	rec, ok := ex.Extract(sampleLine)
	if !ok {
		t.Fatal("Extract did not match")
	}
	if rec[0] != "GET / HTTP/1.1" {
		t.Errorf("request_path = %q, want the full request line unmodified", rec[0])
	}
}

func TestExtractRawField(t *testing.T) {
	ex := New(combinedMatcher(t), []string{"remote_addr", "http_user_agent"})

	rec, ok := ex.Extract(sampleLine)
	if !ok {
		t.Fatal("Extract did not match")
	}
	if rec[0] != "66.249.65.3" || rec[1] != "User-Agent" {
		t.Errorf("raw captures = %v", rec)
	}
}

func TestExtractSkipsUnmatchedLine(t *testing.T) {
	ex := New(combinedMatcher(t), []string{FieldStatusType})
	if _, ok := ex.Extract("garbage line"); ok {
		t.Error("Extract produced a record for an unmatched line")
	}
}

func TestExtractAllMatchesSerialExtraction(t *testing.T) {
	ex := New(combinedMatcher(t), []string{FieldStatusType, FieldBytesSent, "remote_addr"})

	lines := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		if i%7 == 0 {
			lines = append(lines, "not a log line")
			continue
		}
		lines = append(lines, fmt.Sprintf(
			`10.0.0.%d - - [06/Nov/2014:19:11:24 +0600] "GET /p%d HTTP/1.1" %d %d "-" "UA"`,
			i%250, i, 200+i%400, i*10))
	}

	var serial []Record
	for _, l := range lines {
		if rec, ok := ex.Extract(l); ok {
			serial = append(serial, rec)
		}
	}
	parallel := ex.ExtractAll(lines)

	if len(parallel) != len(serial) {
		t.Fatalf("ExtractAll produced %d records, serial produced %d", len(parallel), len(serial))
	}

	// Completion order is unconstrained, so compare as multisets.
	key := func(r Record) string { return fmt.Sprint(r...) }
	a := make([]string, len(serial))
	b := make([]string, len(parallel))
	for i := range serial {
		a[i] = key(serial[i])
		b[i] = key(parallel[i])
	}
	sort.Strings(a)
	sort.Strings(b)
	if !reflect.DeepEqual(a, b) {
		t.Error("parallel extraction yielded different records than serial extraction")
	}
}
