/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batch

// Request is a single operation destined for one batch call. Implementations
// are small value types; the engine copies them freely between attempt sets.
type Request interface {
	// Key returns a stable identity used to match store responses back to
	// requests and to deduplicate input.
	Key() string

	// Category returns the logical grouping the request is tallied under in
	// the aggregate result, such as "profile" or "episode".
	Category() string
}

// Completion pairs a request with the value the store returned for it. For
// writes Value is nil; for reads a nil Value means the store answered and
// the record does not exist.
type Completion[R Request] struct {
	Request R
	Value   any
}

// FailureReason names the terminal state of a request that did not complete.
type FailureReason string

const (
	// ReasonMaxAttempts marks entries still unprocessed when the retry
	// budget ran out.
	ReasonMaxAttempts FailureReason = "max attempts exceeded"

	// ReasonCancelled marks entries abandoned because the caller's context
	// ended before they could be submitted again.
	ReasonCancelled FailureReason = "cancelled"

	// ReasonConditionFailed marks entries rejected by a store-side
	// conditional check, such as a counter that would go negative.
	ReasonConditionFailed FailureReason = "condition failed"

	// ReasonFault marks entries aborted by a non-retryable store fault,
	// such as a malformed item or an authorization failure.
	ReasonFault FailureReason = "non-retryable fault"
)

// Failure records a request that reached a terminal state without
// completing. Err carries the underlying store error when one exists.
type Failure[R Request] struct {
	Request R
	Reason  FailureReason
	Err     error
}

func failAll[R Request](requests []R, reason FailureReason, err error) []Failure[R] {
	failures := make([]Failure[R], 0, len(requests))
	for _, r := range requests {
		failures = append(failures, Failure[R]{Request: r, Reason: reason, Err: err})
	}
	return failures
}
