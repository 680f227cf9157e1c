/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakefront/batchstore/errors"
)

func TestSplit(t *testing.T) {
	t.Run("EvenSplit", func(t *testing.T) {
		chunks, err := Split([]int{1, 2, 3, 4, 5, 6}, 2)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5, 6}}, chunks)
	})

	t.Run("Remainder", func(t *testing.T) {
		chunks, err := Split([]int{1, 2, 3, 4, 5}, 2)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunks)
	})

	t.Run("SingleChunk", func(t *testing.T) {
		chunks, err := Split([]int{1, 2, 3}, 100)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{1, 2, 3}}, chunks)
	})

	t.Run("ChunkSizeOne", func(t *testing.T) {
		chunks, err := Split([]int{1, 2, 3}, 1)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{1}, {2}, {3}}, chunks)
	})

	t.Run("Empty", func(t *testing.T) {
		chunks, err := Split([]int(nil), 10)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("InvalidSize", func(t *testing.T) {
		_, err := Split([]int{1}, 0)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
		assert.True(t, errors.IsValidationError(err))

		_, err = Split([]int{1}, -3)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})
}

// No chunk may exceed maxSize and the chunks must concatenate back to the
// input exactly, for any size.
func TestSplit_SizeInvariant(t *testing.T) {
	input := make([]int, 137)
	for i := range input {
		input[i] = i
	}

	for _, maxSize := range []int{1, 2, 3, 25, 100, 137, 500} {
		chunks, err := Split(input, maxSize)
		require.NoError(t, err)

		var flattened []int
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), maxSize)
			assert.NotEmpty(t, c)
			flattened = append(flattened, c...)
		}
		assert.Equal(t, input, flattened, "maxSize=%d", maxSize)
	}
}
