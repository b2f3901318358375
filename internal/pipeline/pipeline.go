// Package pipeline schedules ingestion and reporting. Static mode reads a
// finite source once; follow mode keeps a tailer and a refresh timer running
// until an interrupt arrives.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"accesstop/internal/extract"
	"accesstop/internal/render"
	"accesstop/internal/store"
	"accesstop/internal/tail"
)

// Runner owns the store handle and drives one run. The store is only ever
// touched from the goroutine calling RunStatic or Follow.
type Runner struct {
	store     *store.Store
	extractor *extract.Extractor
	queries   []string
	out       io.Writer
	verbose   bool
}

// New assembles a Runner. The store must already have its schema created
// for the extractor's field list.
func New(st *store.Store, ex *extract.Extractor, queries []string, out io.Writer) *Runner {
	return &Runner{store: st, extractor: ex, queries: queries, out: out}
}

// SetVerbose enables statement logging.
func (r *Runner) SetVerbose(v bool) { r.verbose = v }

// RunStatic reads the whole source, extracts records across all CPUs,
// inserts them, and renders every query once.
func (r *Runner) RunStatic(src io.Reader) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("pipeline: reading source: %w", err)
	}

	records := r.extractor.ExtractAll(lines)
	if r.verbose {
		log.Printf("pipeline: %d of %d lines matched", len(records), len(lines))
	}
	if err := r.store.Insert(records); err != nil {
		return err
	}
	return r.report(false)
}

// Follow tails the file and re-renders the report at every tick. It returns
// when an interrupt arrives, propagating any error the tailer hit. The
// interrupt only sets a flag; the loop notices it at its next iteration,
// which bounds shutdown latency at one tick or one line.
func (r *Runner) Follow(path string, interval time.Duration) error {
	render.SaveCursor(r.out)

	running := &atomic.Bool{}
	running.Store(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		running.Store(false)
	}()

	tailer := tail.New(path)
	var g errgroup.Group
	g.Go(tailer.Run)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for running.Load() {
		select {
		case line, ok := <-tailer.Lines():
			if !ok {
				// The tailer died on its own; surface its error.
				return g.Wait()
			}
			if err := r.ingest(line); err != nil {
				tailer.Stop()
				_ = g.Wait()
				return err
			}
		case <-ticker.C:
			render.ClearScreen(r.out)
			if err := r.report(true); err != nil {
				tailer.Stop()
				_ = g.Wait()
				return err
			}
		}
	}

	tailer.Stop()
	return g.Wait()
}

// ingest extracts and inserts a single tailed line. Unmatched lines are
// dropped, never reported.
func (r *Runner) ingest(line string) error {
	rec, ok := r.extractor.Extract(line)
	if !ok {
		if r.verbose {
			log.Printf("pipeline: dropped unmatched line: %q", line)
		}
		return nil
	}
	return r.store.Insert([]extract.Record{rec})
}

// report runs every configured query and renders the combined result. A
// failing query aborts the whole report; partial output is never shown as
// success.
func (r *Runner) report(restore bool) error {
	results := make([]*store.Result, 0, len(r.queries))
	for _, q := range r.queries {
		if r.verbose {
			log.Printf("pipeline: running query: %s", q)
		}
		res, err := r.store.Run(q)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if err := render.Report(r.out, results); err != nil {
		return err
	}
	if restore {
		render.RestoreCursor(r.out)
	}
	return nil
}
