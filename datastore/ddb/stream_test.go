/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/lakefront/batchstore/storagemodels"
)

func TestStream_PagesThrough(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.queryFn = func(in *sdk.QueryInput) (*sdk.QueryOutput, error) {
		if in.ExclusiveStartKey == nil {
			return &sdk.QueryOutput{
				Items: []map[string]types.AttributeValue{
					customerItem("c-1", "a@example.com"),
					customerItem("c-2", "b@example.com"),
				},
				LastEvaluatedKey: keyAttrs("CUSTOMER#c-2", "CUSTOMER#c-2"),
			}, nil
		}
		return &sdk.QueryOutput{
			Items: []map[string]types.AttributeValue{
				customerItem("c-3", "c@example.com"),
			},
		}, nil
	}
	store := newCustomerStore(t, fake)

	var progressCalls int32
	resultCh := store.Stream(context.Background(), customerQueryParams("CUSTOMER#c"),
		storagemodels.WithPageSize(2),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			atomic.AddInt32(&progressCalls, 1)
		}),
	)

	var items []testCustomer
	var lastIndex int64 = -1
	for result := range resultCh {
		if result.Error != nil {
			t.Fatalf("unexpected stream error: %v", result.Error)
		}
		if result.Meta.Index <= lastIndex {
			t.Errorf("index should increase: got %d after %d", result.Meta.Index, lastIndex)
		}
		lastIndex = result.Meta.Index
		if result.Meta.PageNumber < 1 {
			t.Errorf("page number should be >= 1, got %d", result.Meta.PageNumber)
		}
		if result.Raw == nil {
			t.Error("raw item should be set")
		}
		items = append(items, result.Item)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "c-1" || items[2].ID != "c-3" {
		t.Errorf("items out of order: %+v", items)
	}
	if atomic.LoadInt32(&progressCalls) < 2 {
		t.Errorf("expected a progress report per page, got %d", progressCalls)
	}
	if got := *fake.queryInputs[0].Limit; got != 2 {
		t.Errorf("page size should reach the store, got limit %d", got)
	}
	if got := *fake.queryInputs[0].TableName; got != "test-table" {
		t.Errorf("stream must use the store's table, got %q", got)
	}
}

func TestStream_RetriesThrottle(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.queryFn = func(in *sdk.QueryInput) (*sdk.QueryOutput, error) {
		if len(fake.queryInputs) == 1 {
			return nil, &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
		}
		return &sdk.QueryOutput{
			Items: []map[string]types.AttributeValue{customerItem("c-1", "a@example.com")},
		}, nil
	}
	store := newCustomerStore(t, fake)

	resultCh := store.Stream(context.Background(), customerQueryParams("CUSTOMER#c"),
		storagemodels.WithRetryPolicy(fastRetry(3)),
	)

	count := 0
	for result := range resultCh {
		if result.Error != nil {
			t.Fatalf("expected recovery, got %v", result.Error)
		}
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 item, got %d", count)
	}
	if len(fake.queryInputs) != 2 {
		t.Errorf("expected 2 query calls, got %d", len(fake.queryInputs))
	}
}

func TestStream_NonRetryableFault(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.queryFn = func(in *sdk.QueryInput) (*sdk.QueryOutput, error) {
		return nil, &smithy.GenericAPIError{Code: "ValidationException", Message: "bad expression"}
	}
	store := newCustomerStore(t, fake)

	t.Run("DefaultStopsStream", func(t *testing.T) {
		resultCh := store.Stream(context.Background(), customerQueryParams("CUSTOMER#c"))

		var streamErr error
		results := 0
		for result := range resultCh {
			if result.Error != nil {
				streamErr = result.Error
				continue
			}
			results++
		}
		if streamErr == nil {
			t.Error("expected an error result")
		}
		if results != 0 {
			t.Errorf("expected no item results, got %d", results)
		}
	})

	t.Run("ErrorHandlerStops", func(t *testing.T) {
		handled := 0
		resultCh := store.Stream(context.Background(), customerQueryParams("CUSTOMER#c"),
			storagemodels.WithErrorHandler(func(err error) bool {
				handled++
				return false // stop
			}),
		)
		for range resultCh {
		}
		if handled != 1 {
			t.Errorf("expected 1 handled error, got %d", handled)
		}
	})
}

func TestStream_ContextCancellation(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.queryFn = func(in *sdk.QueryInput) (*sdk.QueryOutput, error) {
		// Endless pages until the context stops the worker.
		return &sdk.QueryOutput{
			Items:            []map[string]types.AttributeValue{customerItem("c-1", "a@example.com")},
			LastEvaluatedKey: keyAttrs("CUSTOMER#c-1", "CUSTOMER#c-1"),
		}, nil
	}
	store := newCustomerStore(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resultCh := store.Stream(ctx, customerQueryParams("CUSTOMER#c"),
		storagemodels.WithBufferSize(1),
	)

	got := false
	for range resultCh {
		if !got {
			got = true
			cancel()
		}
		// Keep draining until the worker notices and closes the channel.
	}
	if !got {
		t.Fatal("expected at least one result before cancellation")
	}
}
