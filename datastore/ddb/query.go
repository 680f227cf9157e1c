/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/registry"
	"github.com/lakefront/batchstore/storagemodels"
)

// Query performs a query against the DynamoDB table using the provided
// parameters and returns the decoded items of the first page. It uses the
// injected EntityType attribute (added at persist time) to select the
// correct unmarshal function from the kind registry so that each item is
// unmarshaled to its proper type.
func (d *Store[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error) {
	page, err := d.QueryPage(ctx, params)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// QueryPage performs one paginated query call. The returned result carries
// the LastEvaluatedKey cursor; feed it back through
// params.ExclusiveStartKey to fetch the next page.
//
// The store's own table name is used; params.TableName is ignored.
func (d *Store[T]) QueryPage(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.QueryResult, error) {
	input := &sdk.QueryInput{
		TableName:                 &d.tableName,
		KeyConditionExpression:    &params.KeyConditionExpression,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		FilterExpression:          params.FilterExpression,
		IndexName:                 params.IndexName,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
		ScanIndexForward:          params.ScanIndexForward,
	}
	out, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	items := make([]interface{}, 0, len(out.Items))
	for _, item := range out.Items {
		obj, err := decodeItem(item)
		if err != nil {
			return nil, err
		}
		items = append(items, obj)
	}

	return &storagemodels.QueryResult{
		Items:            items,
		LastEvaluatedKey: out.LastEvaluatedKey,
	}, nil
}

// decodeItem resolves an item's EntityType discriminant once and decodes
// the item to its registered type. Items of unregistered kinds fall back
// to a generic map so mixed results never fail wholesale.
func decodeItem(item map[string]types.AttributeValue) (interface{}, error) {
	var entityType string
	if attr, ok := item["EntityType"]; ok {
		if err := attributevalue.Unmarshal(attr, &entityType); err != nil {
			return nil, fmt.Errorf("failed to unmarshal EntityType: %w", err)
		}
	} else {
		return nil, fmt.Errorf("missing EntityType attribute in item")
	}

	unmarshalFn, err := registry.GetUnmarshalFunc(entityType)
	if err != nil {
		return genericItem(item)
	}

	obj, err := unmarshalFn(item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item of type %s: %w", entityType, err)
	}
	return obj, nil
}

// genericItem decodes an item with no registered type into a plain map.
func genericItem(item map[string]types.AttributeValue) (interface{}, error) {
	var generic map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &generic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generic item: %w", err)
	}
	return generic, nil
}
