// Package reconciler merges the manual dataset and the remote feed into one
// deduplicated, ordered list of peer-review entries.
//
// The pipeline:
//
//  1. Normalize every manual record into an index keyed by id. Records that
//     are not objects are skipped; a later record with the same id replaces
//     an earlier one.
//  2. Normalize every remote record and look for its manual counterpart.
//  3. Merge matched pairs and consume the manual id; pass unmatched remote
//     entries through.
//  4. Append the manual entries that were never consumed, in index order.
//  5. Re-derive years and lastReviewed, then sort.
//
// A run shares no state with other runs, so a Reconciler may be used from
// several goroutines at once.
package reconciler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/peerreviews/pkg/entries"
	"github.com/agentstation/peerreviews/pkg/matcher"
)

// Reconciler aggregates raw manual and remote records.
type Reconciler interface {
	// Entries runs the pipeline. Nil inputs are treated as empty.
	Entries(manual, remote []any) *Result
	// Strategy returns the identity matching strategy in use.
	Strategy() matcher.StrategyType
}

type reconciler struct {
	strategy matcher.StrategyType
	merger   Merger
	logger   *zerolog.Logger
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		strategy: o.strategy,
		merger:   o.merger,
		logger:   o.logger,
	}, nil
}

// Aggregate runs the default pipeline and returns the ordered entries.
func Aggregate(manual, remote []any) []entries.Entry {
	r, _ := New()
	return r.Entries(manual, remote).Entries
}

func (r *reconciler) Strategy() matcher.StrategyType {
	return r.strategy
}

func (r *reconciler) Entries(manual, remote []any) *Result {
	start := time.Now()
	stats := Stats{ManualInput: len(manual), RemoteInput: len(remote)}

	index := matcher.NewIndex()
	for i, raw := range manual {
		e, ok := entries.Normalize(raw, entries.SourceManual)
		if !ok {
			stats.ManualSkipped++
			r.logger.Debug().Int("position", i).Msg("Skipping manual record that is not an object")
			continue
		}
		if pos := index.Position(e.ID); pos >= 0 {
			r.logger.Debug().
				Str("id", e.ID).
				Int("position", i).
				Int("replaces", pos).
				Msg("Manual record overrides an earlier record with the same id")
		}
		index.Set(e)
	}

	m := matcher.New(r.strategy, index)
	out := make([]entries.Entry, 0, index.Len()+len(remote))
	consumed := make(map[string]struct{}, index.Len())

	for i, raw := range remote {
		e, ok := entries.Normalize(raw, entries.SourceRemote)
		if !ok {
			stats.RemoteSkipped++
			r.logger.Debug().Int("position", i).Msg("Skipping remote record that is not an object")
			continue
		}

		match, ok := m.Match(e)
		if !ok {
			stats.RemoteOnly++
			out = append(out, e)
			continue
		}

		stats.Matched++
		consumed[match.ID] = struct{}{}
		r.logger.Debug().
			Str("remote_id", e.ID).
			Str("manual_id", match.ID).
			Msg("Merged remote entry with manual entry")
		out = append(out, r.merger.Merge(match, e))
	}

	for _, e := range index.Entries() {
		if _, ok := consumed[e.ID]; ok {
			continue
		}
		stats.ManualOnly++
		out = append(out, e)
	}

	for i := range out {
		out[i] = out[i].Normalized()
	}
	Sort(out)

	stats.Total = len(out)
	return &Result{
		Entries:  out,
		Stats:    stats,
		Strategy: r.strategy,
		Duration: time.Since(start),
	}
}
