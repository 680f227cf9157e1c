/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"testing"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestTimeRangeQueryBuilder(t *testing.T) {
	store := &Store[testOrder]{tableName: "test-table"}
	now := time.Now()

	t.Run("Between", func(t *testing.T) {
		start := now.AddDate(0, 0, -7)
		end := now

		params, err := store.QueryByTimeRange("OPEN").
			Between(start, end).
			Build()
		if err != nil {
			t.Fatalf("Failed to build query: %v", err)
		}

		expectedKey := "GSI1PK = :pk AND GSI1SK BETWEEN :sk AND :sk2"
		if params.KeyConditionExpression != expectedKey {
			t.Errorf("Expected key condition %s, got %s", expectedKey, params.KeyConditionExpression)
		}
		lo := params.ExpressionAttributeValues[":sk"].(*types.AttributeValueMemberS).Value
		if lo != start.Format(time.RFC3339) {
			t.Errorf("Lower bound should be RFC3339, got %s", lo)
		}
	})

	t.Run("After", func(t *testing.T) {
		params, err := store.QueryByTimeRange("OPEN").
			After(now.Add(-time.Hour)).
			Build()
		if err != nil {
			t.Fatalf("Failed to build query: %v", err)
		}

		if params.KeyConditionExpression != "GSI1PK = :pk AND GSI1SK > :sk" {
			t.Errorf("Unexpected key condition: %s", params.KeyConditionExpression)
		}
	})

	t.Run("InLastHours", func(t *testing.T) {
		params, err := store.QueryByTimeRange("OPEN").
			InLastHours(24).
			Build()
		if err != nil {
			t.Fatalf("Failed to build query: %v", err)
		}
		if params.KeyConditionExpression == "" {
			t.Error("Expected key condition expression")
		}
	})

	t.Run("Today", func(t *testing.T) {
		params, err := store.QueryByTimeRange("OPEN").
			Today().
			Build()
		if err != nil {
			t.Fatalf("Failed to build query: %v", err)
		}
		if params.KeyConditionExpression != "GSI1PK = :pk AND GSI1SK BETWEEN :sk AND :sk2" {
			t.Errorf("Unexpected key condition: %s", params.KeyConditionExpression)
		}
	})

	t.Run("Latest", func(t *testing.T) {
		params, err := store.QueryByTimeRange("OPEN").
			Latest().
			Build()
		if err != nil {
			t.Fatalf("Failed to build query: %v", err)
		}
		if params.ScanIndexForward == nil || *params.ScanIndexForward {
			t.Error("Latest should scan descending")
		}
	})

	t.Run("Oldest", func(t *testing.T) {
		params, err := store.QueryByTimeRange("OPEN").
			Oldest().
			Build()
		if err != nil {
			t.Fatalf("Failed to build query: %v", err)
		}
		if params.ScanIndexForward == nil || !*params.ScanIndexForward {
			t.Error("Oldest should scan ascending")
		}
	})
}

func TestTimeWindowIterator(t *testing.T) {
	fake := &fakeDynamoDB{}
	fake.queryFn = func(in *sdk.QueryInput) (*sdk.QueryOutput, error) {
		// One order per window call.
		n := len(fake.queryInputs)
		return &sdk.QueryOutput{
			Items: []map[string]types.AttributeValue{
				orderItem("c-1", "o-"+string(rune('0'+n)), "OPEN", "2025-06-01T10:00:00Z"),
			},
		}, nil
	}
	store, err := NewStore[testOrder](fake, "test-table")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Hour)
	it := store.QueryTimeWindows("OPEN", start, end, time.Hour)

	windows := 0
	for {
		results, more, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if results == nil && !more {
			break
		}
		windows++
		if len(results) != 1 {
			t.Errorf("window %d: expected 1 result, got %d", windows, len(results))
		}
		if !more {
			break
		}
	}

	if windows != 3 {
		t.Errorf("3h range in 1h windows should be 3 queries, got %d", windows)
	}
	if len(fake.queryInputs) != 3 {
		t.Errorf("expected 3 query calls, got %d", len(fake.queryInputs))
	}

	// A drained iterator stays drained.
	results, more, err := it.Next(context.Background())
	if err != nil || results != nil || more {
		t.Error("exhausted iterator should return nothing")
	}
}
