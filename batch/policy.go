/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batch

import (
	"time"

	"github.com/lakefront/batchstore/errors"
)

// RetryPolicy governs how the engine retries unprocessed entries and
// transient store faults.
type RetryPolicy struct {
	// MaxAttempts is the total number of submit calls allowed per chunk,
	// including the first. Must be at least 1.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt; it doubles after
	// every further attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff regardless of attempt count.
	MaxDelay time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured:
// 3 attempts, 100ms base delay, 5s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
	}
}

// Delay returns the backoff to sleep after the given zero-based attempt:
// BaseDelay * 2^attempt, capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// Shifting past 62 bits overflows time.Duration long before any
	// realistic MaxDelay is reached.
	if attempt > 32 {
		return p.MaxDelay
	}
	d := p.BaseDelay << uint(attempt)
	if d > p.MaxDelay || d < p.BaseDelay {
		return p.MaxDelay
	}
	return d
}

// Validate reports whether the policy is usable.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return errors.NewValidationError("maxAttempts", "must be at least 1")
	}
	if p.BaseDelay < 0 {
		return errors.NewValidationError("baseDelay", "must not be negative")
	}
	if p.MaxDelay < p.BaseDelay {
		return errors.NewValidationError("maxDelay", "must be at least baseDelay")
	}
	return nil
}
