/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/lakefront/batchstore/batch"
	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
)

func customerKeys(t *testing.T, ids ...string) []ReadRequest {
	t.Helper()
	ks := make([]keys.Key, 0, len(ids))
	for _, id := range ids {
		k, err := keys.New("CUSTOMER", id)
		if err != nil {
			t.Fatalf("keys.New(%q): %v", id, err)
		}
		ks = append(ks, k)
	}
	requests, err := NewReadRequests(ks...)
	if err != nil {
		t.Fatalf("NewReadRequests: %v", err)
	}
	return requests
}

func batchGetResponse(items ...map[string]types.AttributeValue) *sdk.BatchGetItemOutput {
	return &sdk.BatchGetItemOutput{
		Responses: map[string][]map[string]types.AttributeValue{
			"test-table": items,
		},
	}
}

func TestBatchGet_AllCompleted(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		return batchGetResponse(
			customerItem("c-1", "a@example.com"),
			customerItem("c-2", "b@example.com"),
			customerItem("c-3", "c@example.com"),
		), nil
	}
	store := newTestBatchStore(t, fake)

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-2", "c-3"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success, got failures: %v", result.Failures)
	}
	if len(result.Completed) != 3 {
		t.Errorf("expected 3 completions, got %d", len(result.Completed))
	}
	if result.Counts["customer"] != 3 {
		t.Errorf("expected counts[customer]=3, got %d", result.Counts["customer"])
	}
	if result.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", result.Attempts)
	}
	if len(fake.batchGetInputs) != 1 {
		t.Fatalf("expected 1 BatchGetItem call, got %d", len(fake.batchGetInputs))
	}

	for _, c := range result.Completed {
		customer, ok := c.Value.(*testCustomer)
		if !ok {
			t.Fatalf("expected *testCustomer value, got %T", c.Value)
		}
		if customer.ID == "" || customer.Email == "" {
			t.Errorf("decoded customer missing fields: %+v", customer)
		}
	}
}

func TestBatchGet_UnprocessedKeysRetried(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		if len(fake.batchGetInputs) == 1 {
			out := batchGetResponse(
				customerItem("c-1", "a@example.com"),
				customerItem("c-2", "b@example.com"),
			)
			out.UnprocessedKeys = map[string]types.KeysAndAttributes{
				"test-table": {Keys: []map[string]types.AttributeValue{
					keyAttrs("CUSTOMER#c-3", "CUSTOMER#c-3"),
				}},
			}
			return out, nil
		}
		return batchGetResponse(customerItem("c-3", "c@example.com")), nil
	}
	store := newTestBatchStore(t, fake)

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-2", "c-3"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if !result.Success {
		t.Errorf("expected success after retry, got failures: %v", result.Failures)
	}
	if result.Counts["customer"] != 3 {
		t.Errorf("deferred key must be counted exactly once: counts=%v", result.Counts)
	}
	if result.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", result.Attempts)
	}
	if len(fake.batchGetInputs) != 2 {
		t.Fatalf("expected 2 BatchGetItem calls, got %d", len(fake.batchGetInputs))
	}

	// The retry must carry only the deferred key.
	retryKeys := fake.batchGetInputs[1].RequestItems["test-table"].Keys
	if len(retryKeys) != 1 {
		t.Fatalf("retry should resubmit 1 key, got %d", len(retryKeys))
	}
	sig, ok := itemSignature(retryKeys[0])
	if !ok || sig != "CUSTOMER#c-3|CUSTOMER#c-3" {
		t.Errorf("retry resubmitted wrong key: %q", sig)
	}
}

func TestBatchGet_MissIsCompleted(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		return batchGetResponse(customerItem("c-1", "a@example.com")), nil
	}
	store := newTestBatchStore(t, fake)

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-404"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if !result.Success {
		t.Errorf("a miss is not a failure: %v", result.Failures)
	}
	if len(result.Completed) != 2 {
		t.Errorf("expected 2 completions, got %d", len(result.Completed))
	}
	missing := result.Missing()
	if len(missing) != 1 {
		t.Fatalf("expected 1 missing entry, got %d", len(missing))
	}
	if missing[0].RecordKey().ID() != "c-404" {
		t.Errorf("wrong missing key: %v", missing[0].RecordKey())
	}
}

func TestBatchGet_DuplicateKeysCollapsed(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		return batchGetResponse(customerItem("c-1", "a@example.com")), nil
	}
	store := newTestBatchStore(t, fake)

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-1", "c-1"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if got := len(fake.batchGetInputs[0].RequestItems["test-table"].Keys); got != 1 {
		t.Errorf("duplicates must collapse before submission, sent %d keys", got)
	}
	if len(result.Completed) != 1 {
		t.Errorf("expected 1 completion, got %d", len(result.Completed))
	}
}

func TestBatchGet_ThrottledThenRecovered(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		if len(fake.batchGetInputs) == 1 {
			return nil, &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
		}
		return batchGetResponse(customerItem("c-1", "a@example.com")), nil
	}
	store := newTestBatchStore(t, fake)

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if !result.Success {
		t.Errorf("expected recovery after throttle, got failures: %v", result.Failures)
	}
	if result.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", result.Attempts)
	}
}

func TestBatchGet_RetryBudgetExhausted(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		// Everything comes back unprocessed, every time.
		return &sdk.BatchGetItemOutput{
			UnprocessedKeys: map[string]types.KeysAndAttributes{
				"test-table": {Keys: in.RequestItems["test-table"].Keys},
			},
		}, nil
	}
	store := newTestBatchStore(t, fake, WithRetryPolicy(fastRetry(2)))

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-2"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if result.Success {
		t.Error("expected failure after budget exhaustion")
	}
	if len(result.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(result.Failures))
	}
	for _, f := range result.Failures {
		if f.Reason != batch.ReasonMaxAttempts {
			t.Errorf("expected reason %q, got %q", batch.ReasonMaxAttempts, f.Reason)
		}
	}
	if result.Err == nil {
		t.Error("expected top-level error when nothing completed")
	}
	if len(fake.batchGetInputs) != 2 {
		t.Errorf("expected exactly 2 calls, got %d", len(fake.batchGetInputs))
	}
}

func TestBatchGet_NonRetryableFault(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		return nil, &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not allowed"}
	}
	store := newTestBatchStore(t, fake)

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-2"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if result.Success {
		t.Error("expected failure")
	}
	if len(fake.batchGetInputs) != 1 {
		t.Errorf("non-retryable fault must not be retried, got %d calls", len(fake.batchGetInputs))
	}
	for _, f := range result.Failures {
		if f.Reason != batch.ReasonFault {
			t.Errorf("expected reason %q, got %q", batch.ReasonFault, f.Reason)
		}
	}
}

func TestBatchGet_ChunksLargeInput(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		items := make([]map[string]types.AttributeValue, 0)
		for _, k := range in.RequestItems["test-table"].Keys {
			pk := k["PK"].(*types.AttributeValueMemberS).Value
			id := pk[len("CUSTOMER#"):]
			items = append(items, customerItem(id, id+"@example.com"))
		}
		return batchGetResponse(items...), nil
	}
	store := newTestBatchStore(t, fake, WithReadBatchSize(2))

	result, err := store.BatchGet(context.Background(), customerKeys(t, "c-1", "c-2", "c-3", "c-4", "c-5"))
	if err != nil {
		t.Fatalf("BatchGet: %v", err)
	}

	if len(fake.batchGetInputs) != 3 {
		t.Errorf("5 keys at batch size 2 should take 3 calls, got %d", len(fake.batchGetInputs))
	}
	for i, in := range fake.batchGetInputs {
		if got := len(in.RequestItems["test-table"].Keys); got > 2 {
			t.Errorf("call %d exceeded batch size: %d keys", i, got)
		}
	}
	if result.Counts["customer"] != 5 {
		t.Errorf("expected 5 completions, got counts=%v", result.Counts)
	}
}

func TestBatchGet_EmptyInput(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := newTestBatchStore(t, fake)

	_, err := store.BatchGet(context.Background(), nil)
	if !stderrors.Is(err, batch.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if len(fake.batchGetInputs) != 0 {
		t.Errorf("empty input must not reach the store, got %d calls", len(fake.batchGetInputs))
	}
}

func TestBatchWrite_PutsAndDeletes(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := newTestBatchStore(t, fake)

	set := NewWriteSet()
	if err := AddPut(set, testCustomer{ID: "c-1", Email: "a@example.com", Plan: "basic"}); err != nil {
		t.Fatalf("AddPut: %v", err)
	}
	if err := AddPut(set, testCustomer{ID: "c-2", Email: "b@example.com", Plan: "pro"}); err != nil {
		t.Fatalf("AddPut: %v", err)
	}
	gone, err := keys.New("CUSTOMER", "c-9")
	if err != nil {
		t.Fatalf("keys.New: %v", err)
	}
	if err := set.AddDelete(gone); err != nil {
		t.Fatalf("AddDelete: %v", err)
	}

	result, err := store.BatchWrite(context.Background(), set)
	if err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got failures: %v", result.Failures)
	}
	if len(result.Completed) != 3 {
		t.Errorf("expected 3 completions, got %d", len(result.Completed))
	}

	if len(fake.batchWriteInputs) != 1 {
		t.Fatalf("expected 1 BatchWriteItem call, got %d", len(fake.batchWriteInputs))
	}
	writes := fake.batchWriteInputs[0].RequestItems["test-table"]
	puts, deletes := 0, 0
	for _, w := range writes {
		switch {
		case w.PutRequest != nil:
			puts++
			if _, ok := w.PutRequest.Item["EntityType"]; !ok {
				t.Error("put item missing EntityType discriminant")
			}
			if _, ok := w.PutRequest.Item["GSI1PK"]; !ok {
				t.Error("put item missing expanded index attributes")
			}
		case w.DeleteRequest != nil:
			deletes++
			if sig, ok := itemSignature(w.DeleteRequest.Key); !ok || sig != "CUSTOMER#c-9|CUSTOMER#c-9" {
				t.Errorf("wrong delete key: %q", sig)
			}
		}
	}
	if puts != 2 || deletes != 1 {
		t.Errorf("expected 2 puts and 1 delete, got %d and %d", puts, deletes)
	}
}

func TestBatchWrite_UnprocessedItemsRetried(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchWriteFn = func(in *sdk.BatchWriteItemInput) (*sdk.BatchWriteItemOutput, error) {
		if len(fake.batchWriteInputs) == 1 {
			// Defer the second item verbatim.
			return &sdk.BatchWriteItemOutput{
				UnprocessedItems: map[string][]types.WriteRequest{
					"test-table": {in.RequestItems["test-table"][1]},
				},
			}, nil
		}
		return &sdk.BatchWriteItemOutput{}, nil
	}
	store := newTestBatchStore(t, fake)

	set := NewWriteSet()
	if err := AddPut(set, testCustomer{ID: "c-1", Email: "a@example.com"}); err != nil {
		t.Fatalf("AddPut: %v", err)
	}
	if err := AddPut(set, testCustomer{ID: "c-2", Email: "b@example.com"}); err != nil {
		t.Fatalf("AddPut: %v", err)
	}

	result, err := store.BatchWrite(context.Background(), set)
	if err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}

	if !result.Success {
		t.Fatalf("expected success after retry, got failures: %v", result.Failures)
	}
	if result.Counts["customer"] != 2 {
		t.Errorf("deferred item must be counted exactly once: counts=%v", result.Counts)
	}
	if len(fake.batchWriteInputs) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(fake.batchWriteInputs))
	}

	retry := fake.batchWriteInputs[1].RequestItems["test-table"]
	if len(retry) != 1 {
		t.Fatalf("retry should resubmit 1 item, got %d", len(retry))
	}
	sig, ok := itemSignature(retry[0].PutRequest.Item)
	if !ok || sig != "CUSTOMER#c-2|CUSTOMER#c-2" {
		t.Errorf("retry resubmitted wrong item: %q", sig)
	}
}

func TestBatchWrite_EmptySet(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := newTestBatchStore(t, fake)

	if _, err := store.BatchWrite(context.Background(), NewWriteSet()); !stderrors.Is(err, batch.ErrEmptyInput) {
		t.Errorf("empty set: expected ErrEmptyInput, got %v", err)
	}
	if _, err := store.BatchWrite(context.Background(), nil); !stderrors.Is(err, batch.ErrEmptyInput) {
		t.Errorf("nil set: expected ErrEmptyInput, got %v", err)
	}
	if len(fake.batchWriteInputs) != 0 {
		t.Errorf("no calls expected, got %d", len(fake.batchWriteInputs))
	}
}

func TestBatchPut(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := newTestBatchStore(t, fake)

	result, err := BatchPut(context.Background(), store,
		testCustomer{ID: "c-1", Email: "a@example.com"},
		testCustomer{ID: "c-2", Email: "b@example.com"},
	)
	if err != nil {
		t.Fatalf("BatchPut: %v", err)
	}
	if !result.Success || len(result.Completed) != 2 {
		t.Errorf("expected 2 completed writes, got %+v", result)
	}
}

func TestBatchGetKeys(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.batchGetFn = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
		return batchGetResponse(customerItem("c-1", "a@example.com")), nil
	}
	store := newTestBatchStore(t, fake)

	k, err := keys.New("CUSTOMER", "c-1")
	if err != nil {
		t.Fatalf("keys.New: %v", err)
	}
	result, err := store.BatchGetKeys(context.Background(), k)
	if err != nil {
		t.Fatalf("BatchGetKeys: %v", err)
	}
	if !result.Success || len(result.Completed) != 1 {
		t.Errorf("expected 1 completion, got %+v", result)
	}
}

func TestBatchGetKeys_UnregisteredKind(t *testing.T) {
	fake := &fakeDynamoDB{}
	store := newTestBatchStore(t, fake)

	k, err := keys.New("NOBODY", "x-1")
	if err != nil {
		t.Fatalf("keys.New: %v", err)
	}
	if _, err := store.BatchGetKeys(context.Background(), k); !errors.IsNoKind(err) {
		t.Errorf("expected ErrNoKind, got %v", err)
	}
	if len(fake.batchGetInputs) != 0 {
		t.Error("validation failure must not reach the store")
	}
}
