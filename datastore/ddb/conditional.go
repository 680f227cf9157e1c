/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/batch"
	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
	"github.com/lakefront/batchstore/registry"
)

// MutationRequest is a single conditional update. It rides the same
// retry loop as batch work as a one-entry chunk, so throttling on a
// hot key gets the identical backoff treatment a deferred batch slice
// does.
type MutationRequest struct {
	key keys.Key
	pk  string
	sk  string

	updateExpr string
	names      map[string]string
	values     map[string]types.AttributeValue
	condition  string

	retryCondition bool
}

// Key identifies the target record.
func (m MutationRequest) Key() string { return m.pk + "|" + m.sk }

// Category groups mutations by record kind for result counts.
func (m MutationRequest) Category() string { return strings.ToLower(m.key.Kind()) }

// RecordKey returns the logical key the mutation targets.
func (m MutationRequest) RecordKey() keys.Key { return m.key }

// MutationOption adjusts how a single mutation is executed.
type MutationOption func(*MutationRequest)

// WithRetryOnConditionFailure treats a rejected condition as retryable
// instead of terminal. Useful for optimistic-concurrency loops where
// the caller re-reads between attempts is not needed and the condition
// is expected to pass once contention clears. The default is terminal:
// a failed condition consumes no further attempts.
func WithRetryOnConditionFailure() MutationOption {
	return func(m *MutationRequest) { m.retryCondition = true }
}

// ConditionalApply updates the record at k only if condition holds.
//
// The updates map follows the same rules as DataStore.UpdateWithCondition:
// field names become #n placeholders, values become :v placeholders, and
// the condition expression may reference both. The returned result holds
// exactly one entry; on success its Value carries the record's attributes
// after the update.
func (s *BatchStore) ConditionalApply(ctx context.Context, k keys.Key, updates map[string]interface{}, condition string, opts ...MutationOption) (batch.Result[MutationRequest], error) {
	if condition == "" {
		return batch.Result[MutationRequest]{}, fmt.Errorf("%w: condition is required", errors.ErrInvalidInput)
	}

	updateExpr, names, values, err := buildUpdateExpression(updates)
	if err != nil {
		return batch.Result[MutationRequest]{}, err
	}

	req, err := newMutationRequest(k, updateExpr, names, values, condition, opts...)
	if err != nil {
		return batch.Result[MutationRequest]{}, err
	}
	return s.mutationEngine.Run(ctx, []MutationRequest{req})
}

// AdjustCounter adds delta to a numeric field, creating it at zero when
// absent. A negative delta carries an implicit floor condition: the
// counter must hold at least the amount being removed, so it never goes
// below zero.
func (s *BatchStore) AdjustCounter(ctx context.Context, k keys.Key, field string, delta int64, opts ...MutationOption) (batch.Result[MutationRequest], error) {
	if field == "" {
		return batch.Result[MutationRequest]{}, fmt.Errorf("%w: counter field is required", errors.ErrInvalidInput)
	}

	names := map[string]string{"#ctr": field}
	values := map[string]types.AttributeValue{
		":delta": &types.AttributeValueMemberN{Value: strconv.FormatInt(delta, 10)},
		":zero":  &types.AttributeValueMemberN{Value: "0"},
	}
	updateExpr := "SET #ctr = if_not_exists(#ctr, :zero) + :delta"

	condition := ""
	if delta < 0 {
		values[":floor"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(-delta, 10)}
		condition = "#ctr >= :floor"
	}

	req, err := newMutationRequest(k, updateExpr, names, values, condition, opts...)
	if err != nil {
		return batch.Result[MutationRequest]{}, err
	}
	return s.mutationEngine.Run(ctx, []MutationRequest{req})
}

func newMutationRequest(k keys.Key, updateExpr string, names map[string]string, values map[string]types.AttributeValue, condition string, opts ...MutationOption) (MutationRequest, error) {
	spec, err := registry.GetKindSpec(k.Kind())
	if err != nil {
		return MutationRequest{}, err
	}
	pk, sk, err := spec.ResolveKeys(k)
	if err != nil {
		return MutationRequest{}, err
	}

	req := MutationRequest{
		key:        k,
		pk:         pk,
		sk:         sk,
		updateExpr: updateExpr,
		names:      names,
		values:     values,
		condition:  condition,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req, nil
}

// submitMutation executes one UpdateItem call. The mutation engine
// runs single-entry chunks, so requests always holds exactly one
// element.
func (s *BatchStore) submitMutation(ctx context.Context, requests []MutationRequest) (batch.Outcome[MutationRequest], error) {
	m := requests[0]

	input := &sdk.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       m.keyAttributes(),
		UpdateExpression:          &m.updateExpr,
		ExpressionAttributeValues: m.values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(m.names) > 0 {
		input.ExpressionAttributeNames = m.names
	}
	if m.condition != "" {
		input.ConditionExpression = &m.condition
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		if isConditionFailure(err) {
			condErr := fmt.Errorf("%w: %v", errors.NewConditionFailedError("update", m.condition), err)
			if m.retryCondition {
				// Caller opted in: hand the entry back for
				// another attempt under the same budget.
				s.logger.Debug().Str("key", m.Key()).Msg("condition failed, retrying")
				return batch.Outcome[MutationRequest]{Unprocessed: requests}, nil
			}
			return batch.Outcome[MutationRequest]{
				Failed: []batch.Failure[MutationRequest]{{
					Request: m,
					Reason:  batch.ReasonConditionFailed,
					Err:     condErr,
				}},
			}, nil
		}
		// Transient or fatal: let the engine classify it.
		return batch.Outcome[MutationRequest]{}, err
	}

	var attrs map[string]interface{}
	if len(out.Attributes) > 0 {
		if err := attributevalue.UnmarshalMap(out.Attributes, &attrs); err != nil {
			return batch.Outcome[MutationRequest]{}, fmt.Errorf("failed to unmarshal updated attributes: %w", err)
		}
	}
	return batch.Outcome[MutationRequest]{
		Completed: []batch.Completion[MutationRequest]{{Request: m, Value: attrs}},
	}, nil
}

func (m MutationRequest) keyAttributes() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: m.pk},
		"SK": &types.AttributeValueMemberS{Value: m.sk},
	}
}

// ConditionFailed reports whether the single entry of a mutation result
// was rejected by its condition expression.
func ConditionFailed[R batch.Request](result batch.Result[R]) bool {
	for _, f := range result.Failures {
		if f.Reason == batch.ReasonConditionFailed {
			return true
		}
		if f.Err != nil && stderrors.Is(f.Err, errors.ErrConditionFailed) {
			return true
		}
	}
	return false
}
