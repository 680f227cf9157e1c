/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/lakefront/batchstore/batch"
	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
)

// BatchStore executes bulk reads and writes against a single table,
// retrying the slices DynamoDB hands back unprocessed until the retry
// budget runs out.
//
// Reads go through BatchGetItem in chunks of up to 100 keys, writes
// through BatchWriteItem in chunks of up to 25 items. Both paths share
// one retry policy and one transient-fault classifier; per-entry
// results come back as a batch.Result rather than an error, so a
// partial batch never hides the entries that did complete.
type BatchStore struct {
	client    DynamoDBAPI
	tableName string
	logger    zerolog.Logger

	policy      batch.RetryPolicy
	concurrency int
	readSize    int
	writeSize   int

	readEngine     *batch.Engine[ReadRequest]
	writeEngine    *batch.Engine[WriteRequest]
	mutationEngine *batch.Engine[MutationRequest]
}

// BatchOption configures a BatchStore.
type BatchOption func(*BatchStore)

// WithRetryPolicy replaces the retry budget applied to unprocessed
// slices and transient faults.
func WithRetryPolicy(policy batch.RetryPolicy) BatchOption {
	return func(s *BatchStore) { s.policy = policy }
}

// WithConcurrency caps how many chunks are in flight at once.
func WithConcurrency(n int) BatchOption {
	return func(s *BatchStore) { s.concurrency = n }
}

// WithLogger attaches a logger to the store. The default discards
// everything.
func WithLogger(logger zerolog.Logger) BatchOption {
	return func(s *BatchStore) { s.logger = logger }
}

// WithReadBatchSize lowers the number of keys per BatchGetItem call.
// The service ceiling of 100 still applies.
func WithReadBatchSize(n int) BatchOption {
	return func(s *BatchStore) { s.readSize = n }
}

// WithWriteBatchSize lowers the number of items per BatchWriteItem
// call. The service ceiling of 25 still applies.
func WithWriteBatchSize(n int) BatchOption {
	return func(s *BatchStore) { s.writeSize = n }
}

// NewBatchStore creates a BatchStore over an existing client.
func NewBatchStore(client DynamoDBAPI, tableName string, opts ...BatchOption) (*BatchStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: client is required", errors.ErrInvalidInput)
	}
	if tableName == "" {
		return nil, fmt.Errorf("%w: table name is required", errors.ErrInvalidInput)
	}

	s := &BatchStore{
		client:      client,
		tableName:   tableName,
		logger:      zerolog.Nop(),
		policy:      batch.DefaultRetryPolicy(),
		concurrency: DefaultConfig().Concurrency,
		readSize:    MaxReadBatchSize,
		writeSize:   MaxWriteBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.readSize < 1 || s.readSize > MaxReadBatchSize {
		return nil, fmt.Errorf("%w: read batch size must be between 1 and %d", errors.ErrInvalidInput, MaxReadBatchSize)
	}
	if s.writeSize < 1 || s.writeSize > MaxWriteBatchSize {
		return nil, fmt.Errorf("%w: write batch size must be between 1 and %d", errors.ErrInvalidInput, MaxWriteBatchSize)
	}

	common := []batch.Option{
		batch.WithRetryPolicy(s.policy),
		batch.WithConcurrency(s.concurrency),
		batch.WithRetryable(IsRetryableError),
		batch.WithLogger(s.logger),
	}

	var err error
	s.readEngine, err = batch.NewEngine(s.submitRead, append(common, batch.WithChunkSize(s.readSize))...)
	if err != nil {
		return nil, err
	}
	s.writeEngine, err = batch.NewEngine(s.submitWrite, append(common, batch.WithChunkSize(s.writeSize))...)
	if err != nil {
		return nil, err
	}
	// Conditional updates are single-entry chunks by definition.
	s.mutationEngine, err = batch.NewEngine(s.submitMutation, append(common, batch.WithChunkSize(1))...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewBatchStoreFromConfig builds the client from cfg and wraps it in a
// BatchStore.
func NewBatchStoreFromConfig(ctx context.Context, cfg Config, opts ...BatchOption) (*BatchStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, cfg, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	policy, err := cfg.RetryPolicy()
	if err != nil {
		return nil, err
	}
	base := []BatchOption{
		WithRetryPolicy(policy),
		WithConcurrency(cfg.Concurrency),
		WithReadBatchSize(cfg.ReadBatchSize),
		WithWriteBatchSize(cfg.WriteBatchSize),
	}
	return NewBatchStore(client, cfg.TableName, append(base, opts...)...)
}

// BatchGet fetches every requested key. Duplicate keys are collapsed
// before submission; the service rejects a batch that names the same
// key twice. Keys the table holds no record for come back as completed
// entries with a nil value, reachable through Result.Missing.
func (s *BatchStore) BatchGet(ctx context.Context, requests []ReadRequest) (batch.Result[ReadRequest], error) {
	return s.readEngine.Run(ctx, dedupReads(requests))
}

// BatchGetKeys is BatchGet over logical keys.
func (s *BatchStore) BatchGetKeys(ctx context.Context, ks ...keys.Key) (batch.Result[ReadRequest], error) {
	requests, err := NewReadRequests(ks...)
	if err != nil {
		return batch.Result[ReadRequest]{}, err
	}
	return s.BatchGet(ctx, requests)
}

// BatchWrite applies every put and delete in the set.
func (s *BatchStore) BatchWrite(ctx context.Context, set *WriteSet) (batch.Result[WriteRequest], error) {
	if set == nil {
		return batch.Result[WriteRequest]{}, batch.ErrEmptyInput
	}
	return s.writeEngine.Run(ctx, set.Requests())
}

// BatchPut writes a slice of registered entities in one call.
func BatchPut[T any](ctx context.Context, s *BatchStore, entities ...T) (batch.Result[WriteRequest], error) {
	set := NewWriteSet()
	for _, entity := range entities {
		if err := AddPut(set, entity); err != nil {
			return batch.Result[WriteRequest]{}, err
		}
	}
	return s.BatchWrite(ctx, set)
}

// submitRead issues one BatchGetItem call and sorts the response into
// completions, unprocessed keys, and misses.
func (s *BatchStore) submitRead(ctx context.Context, requests []ReadRequest) (batch.Outcome[ReadRequest], error) {
	ks := make([]map[string]types.AttributeValue, 0, len(requests))
	for _, r := range requests {
		ks = append(ks, r.keyAttributes())
	}

	out, err := s.client.BatchGetItem(ctx, &sdk.BatchGetItemInput{
		RequestItems: map[string]types.KeysAndAttributes{
			s.tableName: {Keys: ks},
		},
	})
	if err != nil {
		return batch.Outcome[ReadRequest]{}, err
	}

	bySig := make(map[string]ReadRequest, len(requests))
	for _, r := range requests {
		bySig[r.Key()] = r
	}

	var outcome batch.Outcome[ReadRequest]
	resolved := make(map[string]struct{}, len(requests))

	for _, item := range out.Responses[s.tableName] {
		sig, ok := itemSignature(item)
		if !ok {
			continue
		}
		req, ok := bySig[sig]
		if !ok {
			continue
		}
		resolved[sig] = struct{}{}
		value, err := decodeReadItem(item)
		if err != nil {
			outcome.Failed = append(outcome.Failed, batch.Failure[ReadRequest]{
				Request: req,
				Reason:  batch.ReasonFault,
				Err:     err,
			})
			continue
		}
		outcome.Completed = append(outcome.Completed, batch.Completion[ReadRequest]{Request: req, Value: value})
	}

	if pending, ok := out.UnprocessedKeys[s.tableName]; ok {
		for _, keyAttrs := range pending.Keys {
			sig, ok := itemSignature(keyAttrs)
			if !ok {
				continue
			}
			if req, ok := bySig[sig]; ok {
				resolved[sig] = struct{}{}
				outcome.Unprocessed = append(outcome.Unprocessed, req)
			}
		}
	}

	// Anything the service neither returned nor deferred does not
	// exist. A miss is a completed read with no value.
	for _, r := range requests {
		if _, ok := resolved[r.Key()]; !ok {
			outcome.Completed = append(outcome.Completed, batch.Completion[ReadRequest]{Request: r})
		}
	}
	return outcome, nil
}

// submitWrite issues one BatchWriteItem call and maps unprocessed
// items back onto their requests.
func (s *BatchStore) submitWrite(ctx context.Context, requests []WriteRequest) (batch.Outcome[WriteRequest], error) {
	writes := make([]types.WriteRequest, 0, len(requests))
	for _, w := range requests {
		if w.isDelete {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: w.keyAttributes()},
			})
		} else {
			writes = append(writes, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: w.item},
			})
		}
	}

	out, err := s.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{s.tableName: writes},
	})
	if err != nil {
		return batch.Outcome[WriteRequest]{}, err
	}

	bySig := make(map[string]WriteRequest, len(requests))
	for _, w := range requests {
		bySig[w.Key()] = w
	}

	var outcome batch.Outcome[WriteRequest]
	pending := make(map[string]struct{})

	for _, wr := range out.UnprocessedItems[s.tableName] {
		var attrs map[string]types.AttributeValue
		switch {
		case wr.PutRequest != nil:
			attrs = wr.PutRequest.Item
		case wr.DeleteRequest != nil:
			attrs = wr.DeleteRequest.Key
		default:
			continue
		}
		sig, ok := itemSignature(attrs)
		if !ok {
			continue
		}
		if req, ok := bySig[sig]; ok {
			pending[sig] = struct{}{}
			outcome.Unprocessed = append(outcome.Unprocessed, req)
		}
	}

	for _, w := range requests {
		if _, ok := pending[w.Key()]; !ok {
			outcome.Completed = append(outcome.Completed, batch.Completion[WriteRequest]{Request: w})
		}
	}
	return outcome, nil
}

// itemSignature derives the PK|SK signature used to match service
// responses back to their originating requests.
func itemSignature(attrs map[string]types.AttributeValue) (string, bool) {
	pk, ok := attrs["PK"].(*types.AttributeValueMemberS)
	if !ok || pk.Value == "" {
		return "", false
	}
	sk, ok := attrs["SK"].(*types.AttributeValueMemberS)
	if !ok || sk.Value == "" {
		return "", false
	}
	return pk.Value + "|" + sk.Value, true
}

// decodeReadItem decodes a fetched item into its registered type.
// Items written outside this library may lack the type discriminant;
// those come back as plain maps rather than errors.
func decodeReadItem(item map[string]types.AttributeValue) (interface{}, error) {
	if _, ok := item["EntityType"]; !ok {
		return genericItem(item)
	}
	return decodeItem(item)
}
