/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// QueryParams defines parameters for a DynamoDB Query operation.
// Used for both regular queries and streaming queries.
type QueryParams struct {
	// TableName is the DynamoDB table name.
	TableName string
	// KeyConditionExpression is the primary condition for the query.
	KeyConditionExpression string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// Limit defines an optional limit per query page.
	Limit *int32
	// ExclusiveStartKey for pagination
	ExclusiveStartKey map[string]types.AttributeValue
	// ScanIndexForward specifies the order for index traversal.
	// If true (default), traversal is in ascending order.
	// If false, traversal is in descending order.
	ScanIndexForward *bool
}

// QueryResult is one page of a paginated query.
type QueryResult struct {
	// Items holds the decoded records of this page. Records of different
	// kinds decode to their registered types; unregistered kinds fall back
	// to a generic map.
	Items []interface{}
	// LastEvaluatedKey is the cursor for the next page, nil on the last page.
	LastEvaluatedKey map[string]types.AttributeValue
}

// HasMore reports whether another page can be fetched.
func (r QueryResult) HasMore() bool {
	return len(r.LastEvaluatedKey) > 0
}
