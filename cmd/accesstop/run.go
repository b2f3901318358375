package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"accesstop/internal/config"
	"accesstop/internal/extract"
	"accesstop/internal/logfmt"
	"accesstop/internal/pipeline"
	"accesstop/internal/query"
	"accesstop/internal/store"
)

// run wires one full pipeline: resolve the source and format, build the
// plan, create the schema, then hand off to the scheduler. A nil plan means
// the default summary report.
func run(opts config.Options, plan *query.Plan) error {
	source, err := opts.ResolveSource()
	if err != nil {
		return err
	}

	template, err := logfmt.Resolve(opts.Format)
	if err != nil {
		return err
	}
	matcher, err := logfmt.Compile(template)
	if err != nil {
		return err
	}

	if plan == nil {
		p := query.Default(query.Options{
			GroupBy: opts.GroupBy,
			Having:  opts.Having,
			Limit:   opts.Limit,
			OrderBy: opts.OrderBy,
		})
		plan = &p
	}
	if len(plan.Fields) == 0 {
		return fmt.Errorf("config: resolved field list is empty")
	}

	if opts.Verbose {
		log.Printf("access log: %s", source)
		log.Printf("access log format: %s", opts.Format)
	}

	st, err := store.Open()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.CreateSchema(plan.Fields); err != nil {
		return err
	}

	runner := pipeline.New(st, extract.New(matcher, plan.Fields), plan.Queries, os.Stdout)
	runner.SetVerbose(opts.Verbose)

	if opts.Follow {
		return runner.Follow(source, opts.Interval)
	}

	var in io.Reader
	if source == config.StdinSource {
		in = os.Stdin
	} else {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("opening %s: %w", source, err)
		}
		defer f.Close()
		in = f
	}
	return runner.RunStatic(in)
}
