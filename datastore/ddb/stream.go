/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/batch"
	"github.com/lakefront/batchstore/registry"
	"github.com/lakefront/batchstore/storagemodels"
)

// Stream performs a streaming query against DynamoDB with configurable options
func (d *Store[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	// Apply options
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	// Create buffered result channel
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)

	// Start streaming in background
	go d.streamWorker(ctx, params, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *Store[T]) streamWorker(
	ctx context.Context,
	params *storagemodels.QueryParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	// Initialize progress tracking
	var itemIndex int64
	var pageNumber int
	startTime := time.Now()
	var pageErrors []error
	var mu sync.Mutex

	// Progress reporting helper
	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: atomic.LoadInt64(&itemIndex),
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			Errors:         pageErrors,
			StartTime:      startTime,
		}

		// Calculate rate
		elapsed := time.Since(startTime).Seconds()
		if elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}

		options.ProgressHandler(progress)
	}

	// Build query input. The store's table name wins over params.
	input := &sdk.QueryInput{
		TableName:                 &d.tableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     aws.Int32(options.PageSize),
		ScanIndexForward:          params.ScanIndexForward,
	}

	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return
		default:
		}

		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		// Execute query with retry logic
		out, err := d.queryWithRetry(ctx, input, options.Retry)
		if err != nil {
			// Handle error with error handler if provided
			if options.ErrorHandler != nil {
				if !options.ErrorHandler(err) {
					// Error handler says to stop
					resultCh <- storagemodels.StreamResult[T]{
						Error: fmt.Errorf("query failed after retries: %w", err),
						Meta: storagemodels.StreamMeta{
							Index:      atomic.LoadInt64(&itemIndex),
							PageNumber: pageNumber,
							Timestamp:  time.Now(),
						},
					}
					return
				}
			} else {
				// No error handler, send error and stop
				resultCh <- storagemodels.StreamResult[T]{
					Error: fmt.Errorf("query failed: %w", err),
					Meta: storagemodels.StreamMeta{
						Index:      atomic.LoadInt64(&itemIndex),
						PageNumber: pageNumber,
						Timestamp:  time.Now(),
					},
				}
				return
			}

			// Record error and continue
			mu.Lock()
			pageErrors = append(pageErrors, err)
			mu.Unlock()
			continue
		}

		pageNumber++

		// Process items in current page
		for _, item := range out.Items {
			select {
			case <-ctx.Done():
				return
			default:
			}

			result := d.processItem(item, atomic.LoadInt64(&itemIndex), pageNumber)
			atomic.AddInt64(&itemIndex, 1)

			// Send result
			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}

			// Record any item-level errors
			if result.Error != nil {
				mu.Lock()
				pageErrors = append(pageErrors, result.Error)
				mu.Unlock()
			}
		}

		// Report progress after each page
		reportProgress(out.LastEvaluatedKey)

		// Check for more pages
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}

	// Final progress report
	reportProgress(nil)
}

// queryWithRetry executes one page query under the retry policy, retrying
// transient faults with exponential backoff.
func (d *Store[T]) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	policy batch.RetryPolicy,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		// Check context before each attempt
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err
		if !IsRetryableError(err) {
			return nil, err
		}

		// Don't sleep after last attempt
		if attempt+1 < policy.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(policy.Delay(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}

// processItem converts a DynamoDB item to a typed result
func (d *Store[T]) processItem(
	item map[string]types.AttributeValue,
	index int64,
	pageNumber int,
) storagemodels.StreamResult[T] {
	meta := storagemodels.StreamMeta{
		Index:      index,
		PageNumber: pageNumber,
		Timestamp:  time.Now(),
	}

	// Make a copy of the raw item
	rawCopy := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		rawCopy[k] = v
	}

	// Extract EntityType
	var entityType string
	if attr, ok := item["EntityType"]; ok {
		if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
			return storagemodels.StreamResult[T]{
				Error: fmt.Errorf("failed to unmarshal EntityType: %w", err),
				Raw:   rawCopy,
				Meta:  meta,
			}
		}
		// Remove EntityType from item before unmarshaling
		delete(item, "EntityType")
	}

	// Try to unmarshal as type T first
	var result T
	if err := attributevalue.UnmarshalMap(item, &result); err == nil {
		return storagemodels.StreamResult[T]{
			Item: result,
			Raw:  rawCopy,
			Meta: meta,
		}
	}

	// If direct unmarshal fails and we have EntityType, try registry
	if entityType != "" {
		unmarshalFn, err := registry.GetUnmarshalFunc(entityType)
		if err == nil {
			obj, err := unmarshalFn(item)
			if err == nil {
				if typedObj, ok := obj.(T); ok {
					return storagemodels.StreamResult[T]{
						Item: typedObj,
						Raw:  rawCopy,
						Meta: meta,
					}
				}
			}
		}
	}

	return storagemodels.StreamResult[T]{
		Error: fmt.Errorf("failed to unmarshal item to type %T", result),
		Raw:   rawCopy,
		Meta:  meta,
	}
}
