/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package batchstore

import (
	"reflect"
	"sort"
	"sync"

	"github.com/lakefront/batchstore/datastore"
	"github.com/lakefront/batchstore/errors"
)

// StoreSet is a thread-safe collection of DataStore[T] instances addressed
// by name, typically one per table or environment.
type StoreSet[T any] struct {
	mu     sync.RWMutex
	stores map[string]datastore.DataStore[T]
}

// NewStoreSet creates an empty StoreSet for type T.
func NewStoreSet[T any]() *StoreSet[T] {
	return &StoreSet[T]{
		stores: make(map[string]datastore.DataStore[T]),
	}
}

// Register adds a datastore under the given name.
func (s *StoreSet[T]) Register(name string, ds datastore.DataStore[T]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stores[name]; exists {
		return errors.NewAlreadyExistsError("store", name)
	}
	s.stores[name] = ds
	return nil
}

// Get retrieves a datastore by name.
func (s *StoreSet[T]) Get(name string) (datastore.DataStore[T], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, exists := s.stores[name]
	if !exists {
		return nil, errors.NewNotFoundError("store", name)
	}
	return ds, nil
}

// Remove deletes a datastore by name.
func (s *StoreSet[T]) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stores[name]; !exists {
		return errors.NewNotFoundError("store", name)
	}
	delete(s.stores, name)
	return nil
}

// Names returns the registered store names in sorted order.
func (s *StoreSet[T]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MultiStoreSet holds one StoreSet per record type, so an application can
// manage stores for all its types behind a single value.
type MultiStoreSet struct {
	mu   sync.Mutex
	sets map[reflect.Type]interface{}
}

// NewMultiStoreSet creates an empty MultiStoreSet.
func NewMultiStoreSet() *MultiStoreSet {
	return &MultiStoreSet{
		sets: make(map[reflect.Type]interface{}),
	}
}

// SetOf returns the StoreSet for type T, creating it on first use.
func SetOf[T any](m *MultiStoreSet) *StoreSet[T] {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	typ := reflect.TypeOf(zero)

	if set, exists := m.sets[typ]; exists {
		return set.(*StoreSet[T])
	}

	set := NewStoreSet[T]()
	m.sets[typ] = set
	return set
}

// RegisterStore registers a datastore for type T under the given name.
func RegisterStore[T any](m *MultiStoreSet, name string, ds datastore.DataStore[T]) error {
	return SetOf[T](m).Register(name, ds)
}

// GetStore retrieves the datastore for type T registered under the given name.
func GetStore[T any](m *MultiStoreSet, name string) (datastore.DataStore[T], error) {
	return SetOf[T](m).Get(name)
}

// RemoveStore removes the datastore for type T registered under the given name.
func RemoveStore[T any](m *MultiStoreSet, name string) error {
	return SetOf[T](m).Remove(name)
}

// StoreNames lists the names registered for type T in sorted order.
func StoreNames[T any](m *MultiStoreSet) []string {
	return SetOf[T](m).Names()
}
