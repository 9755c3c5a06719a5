// Package session owns the per-session normalization state.
//
// A Session explicitly constructs and wires one file resolver and one
// diagnostic index (no process-wide singletons), loads result logs, runs the
// resolution sweeps, and answers the index's re-normalization requests when
// the resolver's mapping state changes.
package session

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/sarifnav/internal/diagnostics"
	"github.com/standardbeagle/sarifnav/internal/debug"
	"github.com/standardbeagle/sarifnav/internal/normalize"
	"github.com/standardbeagle/sarifnav/internal/resolver"
	"github.com/standardbeagle/sarifnav/internal/sarif"
	"github.com/standardbeagle/sarifnav/internal/types"
)

// Options configures a Session.
type Options struct {
	// Roots are the persisted root search paths.
	Roots []string

	// Prompter drives the interactive resolution fallback; nil disables it.
	Prompter resolver.Prompter

	// Sink receives synchronized diagnostics; nil keeps the index
	// in-memory only.
	Sink diagnostics.Sink

	// MaxPerFile caps displayed entries per file; 0 uses the default.
	MaxPerFile int

	// Include/Exclude filter prompt suggestions (doublestar globs).
	Include []string
	Exclude []string
}

// runState pairs a loaded run with its normalizer.
type runState struct {
	run        *sarif.Run
	logPath    string
	normalizer *normalize.Normalizer
}

// Session is the top-level object consumers hold.
type Session struct {
	resolver *resolver.Resolver
	index    *diagnostics.Index

	mu        sync.Mutex
	runs      map[int]*runState
	nextRunID int
}

// New constructs a fully wired Session.
func New(opts Options) *Session {
	s := &Session{runs: make(map[int]*runState)}

	s.resolver = resolver.New(resolver.Options{
		Roots:    opts.Roots,
		Prompter: opts.Prompter,
		Include:  opts.Include,
		Exclude:  opts.Exclude,
	})
	s.index = diagnostics.New(diagnostics.Options{
		MaxPerFile: opts.MaxPerFile,
		Sink:       opts.Sink,
		Renorm:     s,
	})

	// Every mapping the resolver learns re-resolves the unmapped records.
	s.resolver.OnMappingChanged(func() {
		s.index.MappingChanged(context.Background())
	})

	return s
}

// Resolver exposes the session's file resolver (for root-path updates).
func (s *Session) Resolver() *resolver.Resolver { return s.resolver }

// Index exposes the session's diagnostic index.
func (s *Session) Index() *diagnostics.Index { return s.index }

// LoadLog reads, gates, and normalizes one result log. Results are resolved
// sequentially within a single sweep so that rewrite rules learned from one
// artifact apply to the next. A schema or decode failure aborts this log
// only.
func (s *Session) LoadLog(ctx context.Context, path string) error {
	log, err := sarif.ReadFile(path)
	if err != nil {
		return err
	}
	return s.AddLog(ctx, path, log)
}

// AddLog normalizes an already decoded log.
func (s *Session) AddLog(ctx context.Context, path string, log *sarif.Log) error {
	sweep, err := s.resolver.BeginSweep()
	if err != nil {
		return err
	}
	defer sweep.End()

	for r := range log.Runs {
		run := &log.Runs[r]

		s.mu.Lock()
		runID := s.nextRunID
		s.nextRunID++
		state := &runState{
			run:        run,
			logPath:    path,
			normalizer: normalize.New(run, runID, path, s.resolver),
		}
		s.runs[runID] = state
		s.mu.Unlock()

		for i := range run.Results {
			if err := ctx.Err(); err != nil {
				// Rules learned so far stay valid; cache writes are
				// atomic per artifact, so stopping here corrupts nothing.
				return err
			}
			rec := state.normalizer.Result(ctx, &run.Results[i], i, sweep)
			s.index.Add(&rec)
		}
	}

	s.index.Sync()
	debug.Printf("session: loaded %s (%d runs)", path, len(log.Runs))
	return nil
}

// LoadLogs decodes several logs in parallel, then normalizes them one at a
// time; sweeps against the shared resolver state are strictly sequential.
// Per-log failures are collected; loading continues for the rest.
func (s *Session) LoadLogs(ctx context.Context, paths []string) []error {
	logs := make([]*sarif.Log, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			logs[i], errs[i] = sarif.ReadFile(path)
			return nil
		})
	}
	g.Wait()

	for i, log := range logs {
		if log == nil {
			continue
		}
		if err := s.AddLog(ctx, paths[i], log); err != nil {
			errs[i] = err
		}
	}

	out := errs[:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

// CloseLog removes every record loaded from the given log file.
func (s *Session) CloseLog(path string) {
	s.mu.Lock()
	for id, state := range s.runs {
		if state.logPath == path {
			delete(s.runs, id)
		}
	}
	s.mu.Unlock()
	s.index.RemoveRuns(path)
}

// Renormalize re-runs normalization for one record, non-interactively (a
// nil sweep disables prompting). Implements diagnostics.Renormalizer.
func (s *Session) Renormalize(ctx context.Context, id types.ResultID) (types.NormalizedResult, bool) {
	s.mu.Lock()
	state, ok := s.runs[id.RunID]
	s.mu.Unlock()
	if !ok {
		return types.NormalizedResult{}, false
	}
	if id.ResultIndex < 0 || id.ResultIndex >= len(state.run.Results) {
		return types.NormalizedResult{}, false
	}
	rec := state.normalizer.Result(ctx, &state.run.Results[id.ResultIndex], id.ResultIndex, nil)
	return rec, true
}

// SetRoots forwards new root search paths to the resolver; previously
// failed artifacts become retryable and unmapped records re-resolve.
func (s *Session) SetRoots(roots []string) {
	s.resolver.SetRoots(roots)
}
