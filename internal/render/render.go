// Package render formats query results as column-aligned tables and owns
// the small amount of terminal control follow mode needs.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"accesstop/internal/store"
)

// EncodingError reports a binary result value that is not valid text.
type EncodingError struct {
	Column string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("render: column %s holds binary data that is not valid UTF-8", e.Column)
}

// Report writes every result set as a tab-aligned table, one header line
// per set, in query declaration order. A value that cannot be rendered
// aborts the whole report.
func Report(w io.Writer, results []*store.Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	for _, res := range results {
		fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))
		for _, row := range res.Rows {
			cells := make([]string, 0, len(row))
			for i, val := range row {
				cell, err := formatValue(val, res.Columns[i])
				if err != nil {
					return err
				}
				cells = append(cells, cell)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
	}
	return tw.Flush()
}

// formatValue dispatches on the dynamic type a database/sql scan produces.
func formatValue(val any, column string) (string, error) {
	switch v := val.(type) {
	case nil:
		return "null", nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	case float64:
		return fmt.Sprintf("%.2f", v), nil
	case string:
		return v, nil
	case []byte:
		if !utf8.Valid(v) {
			return "", &EncodingError{Column: column}
		}
		return string(v), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// Terminal control sequences for follow mode. The cursor position saved
// before the first report is restored after every redraw, so refreshes
// repaint in place instead of scrolling.
const (
	saveCursor    = "\x1b7"
	restoreCursor = "\x1b8"
	clearScreen   = "\x1b[2J\x1b[H"
)

// SaveCursor remembers the current cursor position.
func SaveCursor(w io.Writer) {
	fmt.Fprint(w, saveCursor)
}

// RestoreCursor moves the cursor back to the saved position.
func RestoreCursor(w io.Writer) {
	fmt.Fprint(w, restoreCursor)
}

// ClearScreen erases the display and homes the cursor.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, clearScreen)
}
