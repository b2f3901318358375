package query

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultDedupesGroupByField(t *testing.T) {
	p := Default(Options{GroupBy: "request_path", Having: 1, Limit: 10, OrderBy: "count"})
	want := []string{"status_type", "bytes_sent", "request_path"}
	if !reflect.DeepEqual(p.Fields, want) {
		t.Errorf("Fields = %v, want %v", p.Fields, want)
	}

	p = Default(Options{GroupBy: "bytes_sent", Having: 1, Limit: 10, OrderBy: "count"})
	want = []string{"status_type", "bytes_sent"}
	if !reflect.DeepEqual(p.Fields, want) {
		t.Errorf("Fields with duplicate group-by = %v, want %v", p.Fields, want)
	}
}

func TestDefaultQueries(t *testing.T) {
	p := Default(Options{GroupBy: "request_path", Having: 3, Limit: 7, OrderBy: "count"})
	if len(p.Queries) != 2 {
		t.Fatalf("Default produced %d queries, want 2", len(p.Queries))
	}

	summary, detailed := p.Queries[0], p.Queries[1]
	for _, frag := range []string{"COUNT(*) AS count", "AVG(bytes_sent)", `"5XX"`, "LIMIT 7"} {
		if !strings.Contains(summary, frag) {
			t.Errorf("summary query missing %q:\n%s", frag, summary)
		}
	}
	for _, frag := range []string{"GROUP BY request_path", "HAVING COUNT(*) >= 3", "ORDER BY count DESC"} {
		if !strings.Contains(detailed, frag) {
			t.Errorf("detailed query missing %q:\n%s", frag, detailed)
		}
	}
}

func TestAvgAndSum(t *testing.T) {
	p := Avg([]string{"bytes_sent", "status_type"})
	if got := p.Queries[0]; got != "SELECT AVG(bytes_sent), AVG(status_type) FROM log" {
		t.Errorf("Avg query = %q", got)
	}
	p = Sum([]string{"bytes_sent"})
	if got := p.Queries[0]; got != "SELECT SUM(bytes_sent) FROM log" {
		t.Errorf("Sum query = %q", got)
	}
}

func TestPrint(t *testing.T) {
	p := Print([]string{"remote_addr", "status_type"})
	want := "SELECT remote_addr, status_type FROM log GROUP BY remote_addr, status_type"
	if got := p.Queries[0]; got != want {
		t.Errorf("Print query = %q, want %q", got, want)
	}
}

func TestTopBuildsOneQueryPerField(t *testing.T) {
	p := Top([]string{"remote_addr", "request_path"}, 3)
	if len(p.Queries) != 2 {
		t.Fatalf("Top produced %d queries, want 2", len(p.Queries))
	}
	want := "SELECT remote_addr, COUNT(*) AS count FROM log GROUP BY remote_addr ORDER BY count DESC LIMIT 3"
	if p.Queries[0] != want {
		t.Errorf("Top query = %q, want %q", p.Queries[0], want)
	}
}

func TestCustomPassesQueryVerbatim(t *testing.T) {
	q := "SELECT status_type FROM log WHERE bytes_sent > 100"
	p := Custom([]string{"status_type", "bytes_sent"}, q)
	if len(p.Queries) != 1 || p.Queries[0] != q {
		t.Errorf("Custom queries = %v, want the supplied string untouched", p.Queries)
	}
}
