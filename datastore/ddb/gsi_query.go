/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/registry"
	"github.com/lakefront/batchstore/storagemodels"
)

// GSIQueryBuilder provides a fluent interface for building GSI queries
type GSIQueryBuilder[T any] struct {
	store      *Store[T]
	params     *storagemodels.QueryParams
	indexName  string
	pkValue    string
	skValue    string
	skOperator string // "=", "begins_with", ">", "<", ">=", "<=", "BETWEEN"
	skUpper    string
	filters    []string
	filterVals map[string]types.AttributeValue
}

// QueryGSI creates a new GSI query builder against the default index.
func (d *Store[T]) QueryGSI() *GSIQueryBuilder[T] {
	return &GSIQueryBuilder[T]{
		store:      d,
		indexName:  "GSI1",
		filterVals: make(map[string]types.AttributeValue),
		params: &storagemodels.QueryParams{
			TableName:                 d.tableName,
			ExpressionAttributeValues: make(map[string]types.AttributeValue),
		},
	}
}

// OnIndex targets a different registered index.
func (q *GSIQueryBuilder[T]) OnIndex(indexName string) *GSIQueryBuilder[T] {
	q.indexName = indexName
	return q
}

// WithPartitionKey sets the GSI partition key value
func (q *GSIQueryBuilder[T]) WithPartitionKey(value string) *GSIQueryBuilder[T] {
	q.pkValue = value
	return q
}

// WithSortKey sets the GSI sort key value with equals operator
func (q *GSIQueryBuilder[T]) WithSortKey(value string) *GSIQueryBuilder[T] {
	q.skValue = value
	q.skOperator = "="
	return q
}

// WithSortKeyPrefix sets the GSI sort key to use begins_with operator
func (q *GSIQueryBuilder[T]) WithSortKeyPrefix(prefix string) *GSIQueryBuilder[T] {
	q.skValue = prefix
	q.skOperator = "begins_with"
	return q
}

// WithSortKeyGreaterThan sets the GSI sort key to use > operator
func (q *GSIQueryBuilder[T]) WithSortKeyGreaterThan(value string) *GSIQueryBuilder[T] {
	q.skValue = value
	q.skOperator = ">"
	return q
}

// WithSortKeyLessThan sets the GSI sort key to use < operator
func (q *GSIQueryBuilder[T]) WithSortKeyLessThan(value string) *GSIQueryBuilder[T] {
	q.skValue = value
	q.skOperator = "<"
	return q
}

// WithSortKeyBetween sets the GSI sort key to use BETWEEN operator
func (q *GSIQueryBuilder[T]) WithSortKeyBetween(start, end string) *GSIQueryBuilder[T] {
	q.skValue = start
	q.skUpper = end
	q.skOperator = "BETWEEN"
	return q
}

// WithFilter adds a filter expression
func (q *GSIQueryBuilder[T]) WithFilter(expression string, values map[string]types.AttributeValue) *GSIQueryBuilder[T] {
	q.filters = append(q.filters, expression)
	for k, v := range values {
		q.filterVals[k] = v
	}
	return q
}

// WithLimit sets the query limit
func (q *GSIQueryBuilder[T]) WithLimit(limit int32) *GSIQueryBuilder[T] {
	q.params.Limit = aws.Int32(limit)
	return q
}

// Descending reverses the sort order.
func (q *GSIQueryBuilder[T]) Descending() *GSIQueryBuilder[T] {
	q.params.ScanIndexForward = aws.Bool(false)
	return q
}

// Build constructs the final query parameters
func (q *GSIQueryBuilder[T]) Build() (*storagemodels.QueryParams, error) {
	if q.pkValue == "" {
		return nil, fmt.Errorf("GSI partition key value is required")
	}

	gsi, ok := GetGSIConfig(q.indexName)
	if !ok {
		return nil, fmt.Errorf("no GSI config registered for index %q", q.indexName)
	}

	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return nil, fmt.Errorf("no index map found for type %T", *new(T))
	}

	pkPattern, ok := indexMap[gsi.PartitionKeyName]
	if !ok {
		return nil, fmt.Errorf("%s not found in index map for type %T", gsi.PartitionKeyName, *new(T))
	}

	keyConditions := []string{fmt.Sprintf("%s = :pk", gsi.PartitionKeyName)}
	q.params.ExpressionAttributeValues[":pk"] = &types.AttributeValueMemberS{
		Value: expandKeyPattern(pkPattern, q.pkValue),
	}

	if q.skValue != "" {
		skPattern, hasSK := indexMap[gsi.SortKeyName]
		if hasSK {
			expandedSK := expandKeyPattern(skPattern, q.skValue)

			switch q.skOperator {
			case "=", ">", "<", ">=", "<=":
				keyConditions = append(keyConditions, fmt.Sprintf("%s %s :sk", gsi.SortKeyName, q.skOperator))
				q.params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: expandedSK}
			case "begins_with":
				keyConditions = append(keyConditions, fmt.Sprintf("begins_with(%s, :sk)", gsi.SortKeyName))
				q.params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: expandedSK}
			case "BETWEEN":
				keyConditions = append(keyConditions, fmt.Sprintf("%s BETWEEN :sk AND :sk2", gsi.SortKeyName))
				q.params.ExpressionAttributeValues[":sk"] = &types.AttributeValueMemberS{Value: expandedSK}
				q.params.ExpressionAttributeValues[":sk2"] = &types.AttributeValueMemberS{
					Value: expandKeyPattern(skPattern, q.skUpper),
				}
			}
		}
	}

	q.params.KeyConditionExpression = strings.Join(keyConditions, " AND ")
	q.params.IndexName = aws.String(gsi.IndexName)

	if len(q.filters) > 0 {
		q.params.FilterExpression = aws.String(strings.Join(q.filters, " AND "))
		for k, v := range q.filterVals {
			q.params.ExpressionAttributeValues[k] = v
		}
	}

	return q.params, nil
}

// expandKeyPattern prepends the pattern's static prefix to a raw key
// value. A pattern like "EMAIL#{Email}" turns the value "a@b.c" into
// "EMAIL#a@b.c"; values that already carry a prefix pass through.
func expandKeyPattern(pattern, value string) string {
	if !strings.Contains(pattern, "#") || strings.Contains(value, "#") {
		return value
	}
	prefix := strings.SplitN(pattern, "#", 2)[0]
	return prefix + "#" + value
}

// Execute runs the query and returns results
func (q *GSIQueryBuilder[T]) Execute(ctx context.Context) ([]T, error) {
	params, err := q.Build()
	if err != nil {
		return nil, err
	}

	results, err := q.store.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	return typedResults[T](results), nil
}

// ExecuteWithPagination runs one page of the query. The returned key is
// nil when no further pages exist; otherwise pass it back as the next
// call's exclusiveStartKey to continue.
func (q *GSIQueryBuilder[T]) ExecuteWithPagination(ctx context.Context, exclusiveStartKey map[string]types.AttributeValue) ([]T, map[string]types.AttributeValue, error) {
	params, err := q.Build()
	if err != nil {
		return nil, nil, err
	}
	if exclusiveStartKey != nil {
		params.ExclusiveStartKey = exclusiveStartKey
	}

	page, err := q.store.QueryPage(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	return typedResults[T](page.Items), page.LastEvaluatedKey, nil
}

// Stream executes the query as a stream
func (q *GSIQueryBuilder[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	params, err := q.Build()
	if err != nil {
		ch := make(chan storagemodels.StreamResult[T], 1)
		ch <- storagemodels.StreamResult[T]{
			Error: fmt.Errorf("failed to build query: %w", err),
		}
		close(ch)
		return ch
	}

	return q.store.Stream(ctx, params, opts...)
}

// typedResults narrows a decoded item slice to T, dropping entries of
// other types. Mixed-kind partitions are expected in a single-table
// layout.
func typedResults[T any](results []interface{}) []T {
	typed := make([]T, 0, len(results))
	for _, r := range results {
		if v, ok := r.(T); ok {
			typed = append(typed, v)
		} else if v, ok := r.(*T); ok {
			typed = append(typed, *v)
		}
	}
	return typed
}

// Common GSI query patterns as convenience methods

// QueryByGSI1PK queries using only the GSI1 partition key
func (d *Store[T]) QueryByGSI1PK(ctx context.Context, pkValue string) ([]T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		Execute(ctx)
}

// QueryByGSI1PKAndSKPrefix queries using GSI1 partition key and sort key prefix
func (d *Store[T]) QueryByGSI1PKAndSKPrefix(ctx context.Context, pkValue, skPrefix string) ([]T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		WithSortKeyPrefix(skPrefix).
		Execute(ctx)
}

// QueryByGSI1PKWithFilter queries using GSI1 partition key with additional filters
func (d *Store[T]) QueryByGSI1PKWithFilter(ctx context.Context, pkValue string, filterExpr string, filterValues map[string]types.AttributeValue) ([]T, error) {
	return d.QueryGSI().
		WithPartitionKey(pkValue).
		WithFilter(filterExpr, filterValues).
		Execute(ctx)
}
