// Package tail follows a growing file and forwards appended lines.
package tail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// pollInterval is how long the tailer sleeps when no complete line is
// available.
const pollInterval = 100 * time.Millisecond

// lineBuffer sizes the outbound channel. Ingestion rates are assumed modest,
// so a generous fixed buffer stands in for an unbounded queue.
const lineBuffer = 50_000

// Tailer reads lines appended to a file after it attaches. Content that
// exists before Run seeks to end-of-file is never forwarded.
type Tailer struct {
	path   string
	lines  chan string
	stop   chan struct{}
	done   chan struct{}
	offset atomic.Int64
}

// New creates a Tailer for the given path. Nothing is opened until Run.
func New(path string) *Tailer {
	return &Tailer{
		path:  path,
		lines: make(chan string, lineBuffer),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Lines returns the channel carrying forwarded lines. It is closed when the
// tailer exits, whether by Stop or by an I/O error.
func (t *Tailer) Lines() <-chan string { return t.lines }

// Offset reports the byte position the tailer has consumed up to.
func (t *Tailer) Offset() int64 { return t.offset.Load() }

// Stop asks a running tailer to exit and returns once it has acknowledged.
// The stop channel is unbuffered on purpose: the send is a rendezvous with
// the poll loop, observed at its next iteration.
func (t *Tailer) Stop() {
	select {
	case t.stop <- struct{}{}:
	case <-t.done:
	}
}

// Run opens the file, seeks to its current end, and polls for appended
// lines until Stop is called. Partial lines stay buffered until their
// terminator arrives. Any read error is returned, not swallowed.
func (t *Tailer) Run() error {
	defer close(t.done)
	defer close(t.lines)

	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("tail: %w", err)
	}
	defer f.Close()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("tail %s: %w", t.path, err)
	}
	t.offset.Store(offset)

	reader := bufio.NewReader(f)
	var partial strings.Builder

	for {
		select {
		case <-t.stop:
			return nil
		default:
		}

		chunk, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("tail %s: %w", t.path, err)
		}
		t.offset.Add(int64(len(chunk)))

		if strings.HasSuffix(chunk, "\n") {
			line := strings.TrimRight(partial.String()+chunk, "\r\n")
			partial.Reset()
			// The send also honors the stop rendezvous, so Stop cannot
			// hang behind a full buffer once the receiver is gone.
			select {
			case t.lines <- line:
			case <-t.stop:
				return nil
			}
			continue
		}

		// No terminated line yet. Keep what we read and wait for more.
		partial.WriteString(chunk)
		time.Sleep(pollInterval)
	}
}
