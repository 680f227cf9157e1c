/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	storeerrors "github.com/lakefront/batchstore/errors"
)

// DefaultChunkSize is the chunk size used when none is configured. It
// matches the tightest common store ceiling, the 25-item write batch;
// read-side bindings raise it.
const DefaultChunkSize = 25

// ErrEmptyInput is returned by Run when there is nothing to do. An empty
// request list is rejected before any chunk is created or store call made.
var ErrEmptyInput = fmt.Errorf("request list must not be empty: %w", storeerrors.ErrInvalidInput)

type settings struct {
	chunkSize   int
	policy      RetryPolicy
	concurrency int
	retryable   func(error) bool
	logger      zerolog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures an Engine.
type Option func(*settings)

// WithChunkSize sets the maximum number of requests per store call. It
// must match the store's own ceiling; the store rejects oversized calls.
func WithChunkSize(n int) Option {
	return func(s *settings) { s.chunkSize = n }
}

// WithRetryPolicy sets the retry policy applied to every chunk.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *settings) { s.policy = p }
}

// WithConcurrency sets how many chunks may be in flight at once. The
// default of 1 executes chunks sequentially in input order.
func WithConcurrency(n int) Option {
	return func(s *settings) { s.concurrency = n }
}

// WithRetryable sets the classifier deciding whether a submit error is
// transient. The default retries only errors exposing Retryable() true;
// store bindings install their own classifier.
func WithRetryable(fn func(error) bool) Option {
	return func(s *settings) { s.retryable = fn }
}

// WithLogger sets the logger used for per-attempt diagnostics. The engine
// is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// DefaultRetryable reports whether err exposes Retryable() true anywhere
// in its chain. Context errors are never retryable.
func DefaultRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}

// Engine drives batches of requests through a store's partial-completion
// contract. An Engine is safe for concurrent use; all state lives in the
// chunk being executed.
type Engine[R Request] struct {
	submit Submit[R]
	settings
}

// NewEngine builds an engine around the given submit function.
func NewEngine[R Request](submit Submit[R], opts ...Option) (*Engine[R], error) {
	if submit == nil {
		return nil, storeerrors.NewValidationError("submit", "must not be nil")
	}

	s := settings{
		chunkSize:   DefaultChunkSize,
		policy:      DefaultRetryPolicy(),
		concurrency: 1,
		retryable:   DefaultRetryable,
		logger:      zerolog.Nop(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	if err := s.policy.Validate(); err != nil {
		return nil, err
	}
	if s.concurrency < 1 {
		return nil, storeerrors.NewValidationError("concurrency", "must be at least 1")
	}
	if s.retryable == nil {
		s.retryable = DefaultRetryable
	}

	return &Engine[R]{submit: submit, settings: s}, nil
}

// Run validates the input, splits it into chunks, executes every chunk and
// returns the merged result. The returned error is non-nil only when the
// input is rejected before any store call; once chunks exist, every
// outcome including total failure is reported through the Result.
func (e *Engine[R]) Run(ctx context.Context, requests []R) (Result[R], error) {
	if len(requests) == 0 {
		return Result[R]{}, ErrEmptyInput
	}

	chunks, err := Split(requests, e.chunkSize)
	if err != nil {
		return Result[R]{}, err
	}

	results := make([]ChunkResult[R], len(chunks))
	if e.concurrency > 1 && len(chunks) > 1 {
		var g errgroup.Group
		g.SetLimit(e.concurrency)
		for i, chunk := range chunks {
			i, chunk := i, chunk // per-iteration copies; module builds as go 1.21
			g.Go(func() error {
				results[i] = e.ExecuteChunk(ctx, chunk)
				return nil
			})
		}
		// Workers report through results, never through errors.
		_ = g.Wait()
	} else {
		for i, chunk := range chunks {
			results[i] = e.ExecuteChunk(ctx, chunk)
		}
	}

	result := Aggregate(results)
	e.logger.Debug().
		Int("requests", len(requests)).
		Int("chunks", len(chunks)).
		Int("completed", len(result.Completed)).
		Int("failed", len(result.Failures)).
		Int("attempts", result.Attempts).
		Bool("success", result.Success).
		Msg("batch run finished")
	return result, nil
}

// ExecuteChunk drives one chunk through the retry loop and returns its
// terminal state. Every request in the chunk appears in exactly one of
// the result's completed or failure sets.
//
// Attempts are strictly sequential: each attempt's unprocessed set is the
// next attempt's input. A transient submit error retries the full pending
// set and consumes an attempt; a non-retryable error ends the chunk at
// once, failing everything still pending.
func (e *Engine[R]) ExecuteChunk(ctx context.Context, chunk []R) ChunkResult[R] {
	var res ChunkResult[R]
	pending := chunk
	var lastErr error

	for attempt := 0; attempt < e.policy.MaxAttempts && len(pending) > 0; attempt++ {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, failAll(pending, ReasonCancelled, err)...)
			return res
		}

		outcome, err := e.submit(ctx, pending)
		res.Attempts++
		if err != nil {
			if isContextErr(err) {
				res.Failures = append(res.Failures, failAll(pending, ReasonCancelled, err)...)
				return res
			}
			if !e.retryable(err) {
				e.logger.Warn().Err(err).Int("attempt", attempt).Int("pending", len(pending)).
					Msg("chunk aborted on non-retryable fault")
				res.Failures = append(res.Failures, failAll(pending, ReasonFault, err)...)
				return res
			}
			lastErr = err
			e.logger.Debug().Err(err).Int("attempt", attempt).Int("pending", len(pending)).
				Msg("transient fault, will retry")
		} else {
			// A finished call's results are applied even if the caller's
			// deadline passed while it was in flight; completed work is
			// never discarded.
			res.Completed = append(res.Completed, outcome.Completed...)
			res.Failures = append(res.Failures, outcome.Failed...)
			pending = outcome.Unprocessed
			lastErr = nil
		}

		if len(pending) > 0 && attempt+1 < e.policy.MaxAttempts {
			delay := e.policy.Delay(attempt)
			e.logger.Debug().Int("attempt", attempt).Int("pending", len(pending)).
				Dur("backoff", delay).Msg("retrying unprocessed entries")
			if err := e.sleep(ctx, delay); err != nil {
				res.Failures = append(res.Failures, failAll(pending, ReasonCancelled, err)...)
				return res
			}
		}
	}

	if len(pending) > 0 {
		cause := lastErr
		if cause == nil {
			// The store answered every call but kept declining these
			// entries; there is no fault to surface, only the sentinel.
			cause = storeerrors.ErrUnprocessed
		}
		e.logger.Warn().Err(cause).Int("attempts", res.Attempts).Int("pending", len(pending)).
			Msg("retry budget exhausted")
		res.Failures = append(res.Failures, failAll(pending, ReasonMaxAttempts, cause)...)
	}
	return res
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
