/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batch

import (
	"context"
	"fmt"
)

// Outcome is what one submit call reports back to the engine. The three
// sets partition the submitted requests: resolved entries, entries the
// store declined and returned verbatim for resubmission, and entries it
// rejected terminally (a failed conditional check, a malformed item).
type Outcome[R Request] struct {
	Completed   []Completion[R]
	Unprocessed []R
	Failed      []Failure[R]
}

// Submit issues one batch call for the given requests. It is the engine's
// only integration point with the store. Unprocessed entries in the
// returned Outcome must be the original requests, untransformed, because
// the engine resubmits them as-is on the next attempt.
//
// A returned error applies to the whole call: the engine retries the full
// request set when the error is classified retryable and aborts the chunk
// otherwise. Per-entry problems belong in Outcome.Failed instead.
type Submit[R Request] func(ctx context.Context, requests []R) (Outcome[R], error)

// ChunkResult is the terminal state of one chunk after the retry loop has
// finished with it. Attempts counts submit calls made for the chunk.
type ChunkResult[R Request] struct {
	Completed []Completion[R]
	Failures  []Failure[R]
	Attempts  int
}

// Result merges every chunk's terminal state into the one value returned
// to the caller. It is immutable once built.
type Result[R Request] struct {
	// Completed holds every request the store resolved, with returned data
	// for reads.
	Completed []Completion[R]

	// Failures holds every request that did not complete, in first-seen
	// order, each with its terminal reason.
	Failures []Failure[R]

	// Counts tallies completed requests by Category.
	Counts map[string]int

	// Attempts is the total number of submit calls across all chunks.
	Attempts int

	// Success is true iff every request completed.
	Success bool

	// Err is set only when nothing completed at all, carrying the single
	// top-level explanation for a run that produced no work.
	Err error
}

// Records returns the decoded value of every completed read that found a
// record, in completion order.
func (r Result[R]) Records() []any {
	var records []any
	for _, c := range r.Completed {
		if c.Value != nil {
			records = append(records, c.Value)
		}
	}
	return records
}

// Missing returns the completed read requests for which the store held no
// record. A miss is a completed request: the store answered, the answer
// was "not there".
func (r Result[R]) Missing() []R {
	var missing []R
	for _, c := range r.Completed {
		if c.Value == nil {
			missing = append(missing, c.Request)
		}
	}
	return missing
}

// Aggregate folds per-chunk results into one Result. It is pure: calling
// it twice over the same inputs yields identical values, and the inputs
// are never mutated.
func Aggregate[R Request](results []ChunkResult[R]) Result[R] {
	agg := Result[R]{Counts: make(map[string]int)}
	for _, cr := range results {
		agg.Completed = append(agg.Completed, cr.Completed...)
		agg.Failures = append(agg.Failures, cr.Failures...)
		agg.Attempts += cr.Attempts
	}
	for _, c := range agg.Completed {
		agg.Counts[c.Request.Category()]++
	}
	agg.Success = len(agg.Failures) == 0
	if len(agg.Completed) == 0 && len(agg.Failures) > 0 {
		first := agg.Failures[0]
		if first.Err != nil {
			agg.Err = fmt.Errorf("no entries completed: %w", first.Err)
		} else {
			agg.Err = fmt.Errorf("no entries completed: %s", first.Reason)
		}
	}
	return agg
}
