// Package config holds the resolved run configuration. The CLI layer builds
// one Options value at startup; nothing mutates it afterwards.
package config

import (
	"errors"
	"os"
	"time"

	"golang.org/x/term"
)

// StdinSource is the sentinel source identifier for standard input.
const StdinSource = "STDIN"

// Options is the full configuration of one run.
type Options struct {
	AccessLog string        // path to the access log; empty means stdin when piped
	Format    string        // built-in format name or a literal template
	GroupBy   string        // group-by field for the default report
	Having    uint64        // minimum per-group count in the default report
	Interval  time.Duration // refresh interval in follow mode
	Follow    bool          // tail the file instead of reading it once
	Limit     uint64        // row limit per query
	OrderBy   string        // ordering field for the default queries
	Verbose   bool          // log the generated statements
}

var (
	// ErrStdinIsTTY means no source was given and nothing is piped in.
	ErrStdinIsTTY = errors.New("config: no access log given and stdin is a TTY")

	// ErrFollowStdin means follow mode was requested on standard input.
	ErrFollowStdin = errors.New("config: cannot follow standard input")
)

// ResolveSource decides where input comes from: the configured file, or
// stdin when it is redirected. Follow mode requires a real file.
func (o Options) ResolveSource() (string, error) {
	source := o.AccessLog
	if source == "" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return "", ErrStdinIsTTY
		}
		source = StdinSource
	}
	if o.Follow && source == StdinSource {
		return "", ErrFollowStdin
	}
	return source, nil
}
