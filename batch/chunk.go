/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batch

import (
	"fmt"

	"github.com/lakefront/batchstore/errors"
)

// ErrInvalidChunkSize is returned when a chunk size below 1 is requested.
var ErrInvalidChunkSize = fmt.Errorf("chunk size must be at least 1: %w", errors.ErrInvalidInput)

// Split partitions requests into chunks of at most maxSize entries each.
// Input order is preserved: concatenating the chunks yields the input
// exactly, so diagnostics stay reproducible. An empty input produces no
// chunks.
func Split[R any](requests []R, maxSize int) ([][]R, error) {
	if maxSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	if len(requests) == 0 {
		return nil, nil
	}

	chunks := make([][]R, 0, (len(requests)+maxSize-1)/maxSize)
	for start := 0; start < len(requests); start += maxSize {
		end := start + maxSize
		if end > len(requests) {
			end = len(requests)
		}
		chunks = append(chunks, requests[start:end])
	}
	return chunks, nil
}
