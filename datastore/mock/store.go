/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

// Package mock provides an in-memory DataStore implementation for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lakefront/batchstore/datastore"
	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
	"github.com/lakefront/batchstore/registry"
	"github.com/lakefront/batchstore/storagemodels"
)

// Store is an in-memory datastore.DataStore[T] for tests. Entities live in
// a map keyed by whatever the configured key function returns; reads,
// queries and streams come back in lexicographic key order, the way a sort
// key would return them. Error hooks let a test script failures without a
// real backend.
type Store[T any] struct {
	mu            sync.RWMutex
	data          map[string]T
	keyFunc       func(T) string
	queryFunc     func(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error)
	queryPageFunc func(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.QueryResult, error)
	streamFunc    func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	getErr        error
	putErr        error
	deleteErr     error
	updateErr     error
}

var _ datastore.DataStore[struct{}] = (*Store[struct{}])(nil)

// New creates an empty mock store. Configure a key function with
// WithKeyFunc before calling Put.
func New[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[string]T),
	}
}

// WithKeyFunc sets the function used to derive the storage key of an entity.
func (m *Store[T]) WithKeyFunc(f func(T) string) *Store[T] {
	m.keyFunc = f
	return m
}

// WithQueryFunc replaces the default Query behavior.
func (m *Store[T]) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error)) *Store[T] {
	m.queryFunc = f
	return m
}

// WithQueryPageFunc replaces the default QueryPage behavior, typically to
// script multi-page pagination.
func (m *Store[T]) WithQueryPageFunc(f func(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.QueryResult, error)) *Store[T] {
	m.queryPageFunc = f
	return m
}

// WithStreamFunc replaces the default Stream behavior.
func (m *Store[T]) WithStreamFunc(f func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]) *Store[T] {
	m.streamFunc = f
	return m
}

// WithGetError makes GetOne and GetByKey return err.
func (m *Store[T]) WithGetError(err error) *Store[T] {
	m.getErr = err
	return m
}

// WithPutError makes Put return err.
func (m *Store[T]) WithPutError(err error) *Store[T] {
	m.putErr = err
	return m
}

// WithDeleteError makes Delete return err.
func (m *Store[T]) WithDeleteError(err error) *Store[T] {
	m.deleteErr = err
	return m
}

// WithUpdateError makes UpdateWithCondition return err.
func (m *Store[T]) WithUpdateError(err error) *Store[T] {
	m.updateErr = err
	return m
}

// GetOne retrieves an entity by key. A miss is nil, nil, matching the
// DynamoDB store.
func (m *Store[T]) GetOne(ctx context.Context, key string) (*T, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if entity, exists := m.data[key]; exists {
		return &entity, nil
	}
	return nil, nil
}

// GetByKey retrieves an entity by record key, resolving the stored key
// through the registered patterns for the key's kind.
func (m *Store[T]) GetByKey(ctx context.Context, k keys.Key) (*T, error) {
	spec, err := registry.GetKindSpec(k.Kind())
	if err != nil {
		return nil, err
	}
	pk, sk, err := spec.ResolveKeys(k)
	if err != nil {
		return nil, err
	}
	return m.GetOne(ctx, pk+"|"+sk)
}

// Put stores an entity under the key derived by the configured key function.
func (m *Store[T]) Put(ctx context.Context, entity T) error {
	if m.putErr != nil {
		return m.putErr
	}
	if m.keyFunc == nil {
		return errors.NewValidationError("key", "no key function configured")
	}

	key := m.keyFunc(entity)
	if key == "" {
		return errors.NewValidationError("key", "key function returned an empty key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entity
	return nil
}

// UpdateWithCondition verifies the entity exists; the condition itself is
// not evaluated. An absent entity fails the way a condition on a missing
// item would.
func (m *Store[T]) UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]interface{}, condition string) error {
	if m.updateErr != nil {
		return m.updateErr
	}

	key, ok := keyInput.(string)
	if !ok {
		return errors.NewValidationError("keyInput", "must be a string key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; !exists {
		return errors.NewConditionFailedError("update", condition)
	}
	return nil
}

// Query returns all stored entities unless a query function is configured.
func (m *Store[T]) Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]interface{}, 0, len(m.data))
	for _, key := range m.sortedKeys() {
		results = append(results, m.data[key])
	}
	return results, nil
}

// QueryPage returns all stored entities as a single page unless a page
// function is configured.
func (m *Store[T]) QueryPage(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.QueryResult, error) {
	if m.queryPageFunc != nil {
		return m.queryPageFunc(ctx, params)
	}

	items, err := m.Query(ctx, params)
	if err != nil {
		return nil, err
	}
	return &storagemodels.QueryResult{Items: items}, nil
}

// Stream emits all stored entities on a channel unless a stream function is
// configured.
func (m *Store[T]) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, params, opts...)
	}

	cfg := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	resultChan := make(chan storagemodels.StreamResult[T], cfg.BufferSize)

	go func() {
		defer close(resultChan)

		m.mu.RLock()
		defer m.mu.RUnlock()

		index := int64(0)
		for _, key := range m.sortedKeys() {
			select {
			case <-ctx.Done():
				return
			case resultChan <- storagemodels.StreamResult[T]{
				Item: m.data[key],
				Meta: storagemodels.StreamMeta{
					Index:      index,
					PageNumber: 1,
					Timestamp:  time.Now(),
				},
			}:
				index++
			}
		}

		if cfg.ProgressHandler != nil {
			cfg.ProgressHandler(storagemodels.StreamProgress{
				ItemsProcessed: index,
				PagesProcessed: 1,
			})
		}
	}()

	return resultChan
}

// Delete removes an entity by key. Deleting an absent key succeeds, matching
// the DynamoDB store.
func (m *Store[T]) Delete(ctx context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Seed replaces the stored data, keyed by the caller's map.
func (m *Store[T]) Seed(data map[string]T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]T, len(data))
	for k, v := range data {
		m.data[k] = v
	}
}

// Snapshot returns a copy of the stored data.
func (m *Store[T]) Snapshot() map[string]T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]T, len(m.data))
	for k, v := range m.data {
		result[k] = v
	}
	return result
}

// Len returns the number of stored entities.
func (m *Store[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Reset removes all stored data.
func (m *Store[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]T)
}

// sortedKeys must be called with at least a read lock held.
func (m *Store[T]) sortedKeys() []string {
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
