/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
	"github.com/lakefront/batchstore/registry"
)

// Store implements datastore.DataStore[T] by using AWS DynamoDB as the
// underlying data store.
type Store[T any] struct {
	client    DynamoDBAPI
	tableName string
}

// NewStore constructs a Store for type T over an existing client.
func NewStore[T any](client DynamoDBAPI, tableName string) (*Store[T], error) {
	if client == nil {
		return nil, errors.NewValidationError("client", "must not be nil")
	}
	if tableName == "" {
		return nil, errors.NewValidationError("tableName", "must not be empty")
	}
	return &Store[T]{client: client, tableName: tableName}, nil
}

// NewStoreFromConfig builds the client from cfg and returns a Store for
// type T bound to the configured table.
func NewStoreFromConfig[T any](ctx context.Context, cfg Config) (*Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, cfg, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewStore[T](client, cfg.TableName)
}

// GetOne retrieves a single item from DynamoDB using a string key.
// It returns a pointer to the item of type T, or nil if no item is found.
func (d *Store[T]) GetOne(ctx context.Context, key string) (*T, error) {
	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return nil, errors.ErrNoIndexMap
	}

	expanded := expandStringKey(indexMap, key)
	keyMap, err := buildKeyFromExpanded(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		// Not found: return nil, nil
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// GetByKey retrieves a single item addressed by a composite key, using
// the key pattern registered for the key's kind.
func (d *Store[T]) GetByKey(ctx context.Context, k keys.Key) (*T, error) {
	spec, err := registry.GetKindSpec(k.Kind())
	if err != nil {
		return nil, err
	}
	pk, sk, err := spec.ResolveKeys(k)
	if err != nil {
		return nil, err
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	result := new(T)
	if err := attributevalue.UnmarshalMap(out.Item, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return result, nil
}

// Put stores the given entity using macros in its registered index map to
// populate partition/sort keys and any GSI attributes. When the type was
// registered through RegisterEntity, the EntityType discriminant is
// stamped on the item so mixed query results can be decoded later.
func (d *Store[T]) Put(ctx context.Context, entity T) error {
	av, err := marshalEntity(entity)
	if err != nil {
		return err
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// marshalEntity turns an entity into its full item form: marshaled
// attributes plus expanded key attributes plus the EntityType stamp.
// Shared by the single Put and the batch write path.
func marshalEntity[T any](entity T) (map[string]types.AttributeValue, error) {
	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return nil, errors.ErrNoIndexMap
	}

	av, err := attributevalue.MarshalMap(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, err := expandMacros(indexMap, entity)
	if err != nil {
		return nil, err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	if kind, ok := registry.GetKind[T](); ok {
		av["EntityType"] = &types.AttributeValueMemberS{Value: kind}
	}
	return av, nil
}

// Delete removes an item from DynamoDB using a string key.
func (d *Store[T]) Delete(ctx context.Context, key string) error {
	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return errors.ErrNoIndexMap
	}

	expanded := expandStringKey(indexMap, key)
	keyMap, err := buildKeyFromExpanded(expanded)
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	_, err = d.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &d.tableName,
		Key:       keyMap,
	})
	if err != nil {
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// UpdateWithCondition applies field updates guarded by a condition
// expression. A rejected condition surfaces as a condition failed error
// the caller can test with errors.IsConditionFailed.
func (d *Store[T]) UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]interface{}, condition string) error {
	indexMap, ok := registry.GetIndexMap[T]()
	if !ok {
		return errors.ErrNoIndexMap
	}

	key, err := d.getKey(keyInput, indexMap)
	if err != nil {
		return fmt.Errorf("failed to build key: %w", err)
	}

	updateExpr, exprAttrNames, exprAttrValues, err := buildUpdateExpression(updates)
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	input := &sdk.UpdateItemInput{
		TableName:                 &d.tableName,
		Key:                       key,
		UpdateExpression:          &updateExpr,
		ExpressionAttributeNames:  exprAttrNames,
		ExpressionAttributeValues: exprAttrValues,
		ConditionExpression:       &condition,
		ReturnValues:              types.ReturnValueAllNew,
	}

	if _, err = d.client.UpdateItem(ctx, input); err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("%w: %v", errors.NewConditionFailedError("update", condition), err)
		}
		return fmt.Errorf("UpdateWithCondition failed: %w", err)
	}
	return nil
}

func (d *Store[T]) getKey(keyInput any, indexMap map[string]string) (map[string]types.AttributeValue, error) {
	expanded, err := expandMacros(indexMap, keyInput)
	if err != nil {
		return nil, err
	}

	pk, hasPK := expanded["PK"]
	sk, hasSK := expanded["SK"]
	if hasPK && hasSK && pk != "" && sk != "" {
		return map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		}, nil
	}

	return nil, errors.NewValidationError("indexMap", "missing PK or SK in expanded indexMap")
}

// buildUpdateExpression transforms a map of field->value into:
//   - an "update expression" (e.g., "SET #f1 = :v1, #f2 = :v2")
//   - a corresponding map of expression attribute names
//   - a corresponding map of expression attribute values
func buildUpdateExpression(updates map[string]interface{}) (string,
	map[string]string,
	map[string]types.AttributeValue,
	error) {

	if len(updates) == 0 {
		return "", nil, nil, errors.NewValidationError("updates", "no updates provided")
	}

	setClauses := make([]string, 0, len(updates))
	exprAttrNames := make(map[string]string)
	exprAttrValues := make(map[string]types.AttributeValue)

	i := 0
	for field, val := range updates {
		placeholderName := fmt.Sprintf("#f%d", i)
		placeholderValue := fmt.Sprintf(":v%d", i)

		setClauses = append(setClauses, fmt.Sprintf("%s = %s", placeholderName, placeholderValue))
		exprAttrNames[placeholderName] = field

		switch typedVal := val.(type) {
		case string:
			exprAttrValues[placeholderValue] = &types.AttributeValueMemberS{Value: typedVal}
		case int, int32, int64, float32, float64:
			exprAttrValues[placeholderValue] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%v", typedVal)}
		case bool:
			exprAttrValues[placeholderValue] = &types.AttributeValueMemberBOOL{Value: typedVal}
		case time.Time:
			exprAttrValues[placeholderValue] = &types.AttributeValueMemberS{Value: typedVal.Format(time.RFC3339)}
		default:
			av, err := attributevalue.Marshal(val)
			if err != nil {
				return "", nil, nil, fmt.Errorf("unhandled update value type for field '%s': %w", field, err)
			}
			exprAttrValues[placeholderValue] = av
		}

		i++
	}

	updateExpr := "SET " + strings.Join(setClauses, ", ")
	return updateExpr, exprAttrNames, exprAttrValues, nil
}
