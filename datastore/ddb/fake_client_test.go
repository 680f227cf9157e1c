/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sync"
	"testing"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/batch"
	"github.com/lakefront/batchstore/registry"
)

// fakeDynamoDB is a scriptable DynamoDBAPI. Each call records its input
// and dispatches to the matching fn when one is set; otherwise it
// returns an empty output. Response sequencing lives in the closures.
type fakeDynamoDB struct {
	mu sync.Mutex

	getItemFn    func(*sdk.GetItemInput) (*sdk.GetItemOutput, error)
	putItemFn    func(*sdk.PutItemInput) (*sdk.PutItemOutput, error)
	deleteItemFn func(*sdk.DeleteItemInput) (*sdk.DeleteItemOutput, error)
	updateItemFn func(*sdk.UpdateItemInput) (*sdk.UpdateItemOutput, error)
	queryFn      func(*sdk.QueryInput) (*sdk.QueryOutput, error)
	batchGetFn   func(*sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error)
	batchWriteFn func(*sdk.BatchWriteItemInput) (*sdk.BatchWriteItemOutput, error)

	getItemInputs    []*sdk.GetItemInput
	putItemInputs    []*sdk.PutItemInput
	deleteItemInputs []*sdk.DeleteItemInput
	updateItemInputs []*sdk.UpdateItemInput
	queryInputs      []*sdk.QueryInput
	batchGetInputs   []*sdk.BatchGetItemInput
	batchWriteInputs []*sdk.BatchWriteItemInput
}

func (f *fakeDynamoDB) GetItem(_ context.Context, params *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	f.getItemInputs = append(f.getItemInputs, params)
	fn := f.getItemFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.GetItemOutput{}, nil
	}
	return fn(params)
}

func (f *fakeDynamoDB) PutItem(_ context.Context, params *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	f.putItemInputs = append(f.putItemInputs, params)
	fn := f.putItemFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.PutItemOutput{}, nil
	}
	return fn(params)
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, params *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	f.deleteItemInputs = append(f.deleteItemInputs, params)
	fn := f.deleteItemFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.DeleteItemOutput{}, nil
	}
	return fn(params)
}

func (f *fakeDynamoDB) UpdateItem(_ context.Context, params *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	f.updateItemInputs = append(f.updateItemInputs, params)
	fn := f.updateItemFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.UpdateItemOutput{}, nil
	}
	return fn(params)
}

func (f *fakeDynamoDB) Query(_ context.Context, params *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	f.queryInputs = append(f.queryInputs, params)
	fn := f.queryFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.QueryOutput{}, nil
	}
	return fn(params)
}

func (f *fakeDynamoDB) BatchGetItem(_ context.Context, params *sdk.BatchGetItemInput, _ ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error) {
	f.mu.Lock()
	f.batchGetInputs = append(f.batchGetInputs, params)
	fn := f.batchGetFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.BatchGetItemOutput{}, nil
	}
	return fn(params)
}

func (f *fakeDynamoDB) BatchWriteItem(_ context.Context, params *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	f.batchWriteInputs = append(f.batchWriteInputs, params)
	fn := f.batchWriteFn
	f.mu.Unlock()
	if fn == nil {
		return &sdk.BatchWriteItemOutput{}, nil
	}
	return fn(params)
}

// Test entities shared across the package tests.

type testCustomer struct {
	ID      string
	Email   string
	Plan    string
	Credits int64
}

type testOrder struct {
	ID         string
	CustomerID string
	Status     string
	Total      int64
	CreatedAt  string
}

func init() {
	registry.RegisterEntity[testCustomer](registry.EntityRegistration{
		Kind:      "CUSTOMER",
		PKPattern: "CUSTOMER#{ID}",
		SKPattern: "CUSTOMER#{ID}",
		IndexMap: map[string]string{
			"PK":     "CUSTOMER#{ID}",
			"SK":     "CUSTOMER#{ID}",
			"GSI1PK": "EMAIL#{Email}",
			"GSI1SK": "CUSTOMER#{ID}",
		},
	})
	registry.RegisterEntity[testOrder](registry.EntityRegistration{
		Kind:      "ORDER",
		PKPattern: "CUSTOMER#{ID}",
		SKPattern: "ORDER#{SORT}",
		IndexMap: map[string]string{
			"PK":     "CUSTOMER#{CustomerID}",
			"SK":     "ORDER#{ID}",
			"GSI1PK": "ORDERSTATUS#{Status}",
			"GSI1SK": "{CreatedAt}",
		},
	})
}

func keyAttrs(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}
}

// customerItem builds the stored form of a testCustomer, keys and type
// discriminant included.
func customerItem(id, email string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: "CUSTOMER#" + id},
		"SK":         &types.AttributeValueMemberS{Value: "CUSTOMER#" + id},
		"GSI1PK":     &types.AttributeValueMemberS{Value: "EMAIL#" + email},
		"GSI1SK":     &types.AttributeValueMemberS{Value: "CUSTOMER#" + id},
		"EntityType": &types.AttributeValueMemberS{Value: "CUSTOMER"},
		"ID":         &types.AttributeValueMemberS{Value: id},
		"Email":      &types.AttributeValueMemberS{Value: email},
		"Plan":       &types.AttributeValueMemberS{Value: "basic"},
		"Credits":    &types.AttributeValueMemberN{Value: "0"},
	}
}

func orderItem(customerID, orderID, status, createdAt string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: "CUSTOMER#" + customerID},
		"SK":         &types.AttributeValueMemberS{Value: "ORDER#" + orderID},
		"GSI1PK":     &types.AttributeValueMemberS{Value: "ORDERSTATUS#" + status},
		"GSI1SK":     &types.AttributeValueMemberS{Value: createdAt},
		"EntityType": &types.AttributeValueMemberS{Value: "ORDER"},
		"ID":         &types.AttributeValueMemberS{Value: orderID},
		"CustomerID": &types.AttributeValueMemberS{Value: customerID},
		"Status":     &types.AttributeValueMemberS{Value: status},
		"Total":      &types.AttributeValueMemberN{Value: "100"},
		"CreatedAt":  &types.AttributeValueMemberS{Value: createdAt},
	}
}

// fastRetry keeps backoff in the microsecond range so retry tests
// finish instantly.
func fastRetry(attempts int) batch.RetryPolicy {
	return batch.RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Microsecond,
		MaxDelay:    10 * time.Microsecond,
	}
}

func newTestBatchStore(t *testing.T, fake *fakeDynamoDB, opts ...BatchOption) *BatchStore {
	t.Helper()
	base := []BatchOption{WithConcurrency(1), WithRetryPolicy(fastRetry(3))}
	store, err := NewBatchStore(fake, "test-table", append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewBatchStore: %v", err)
	}
	return store
}
