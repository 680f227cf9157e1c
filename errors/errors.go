/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned when an entry conflicts with one already present
	ErrAlreadyExists = errors.New("entry already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write is rejected by its predicate
	ErrConditionFailed = errors.New("condition check failed")

	// ErrNoKind is returned when no kind spec is registered for an entity kind
	ErrNoKind = errors.New("no kind registered")

	// ErrNoIndexMap is returned when no index map is registered for a type
	ErrNoIndexMap = errors.New("no index map found for type")

	// ErrTooLarge is returned when a single request exceeds a store size ceiling
	ErrTooLarge = errors.New("request exceeds size limit")

	// ErrUnprocessed is returned when the store kept declining an entry until
	// the retry budget ran out
	ErrUnprocessed = errors.New("entry left unprocessed after retries")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents a conflicting entry, for example a duplicate
// key added to a write set
type AlreadyExistsError struct {
	Kind string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Kind, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// TooLargeError represents a single request that exceeds a store size ceiling
type TooLargeError struct {
	Key   string
	Size  int
	Limit int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("request %q is %d bytes, exceeding the %d byte limit", e.Key, e.Size, e.Limit)
}

func (e *TooLargeError) Is(target error) bool {
	return target == ErrTooLarge
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) error {
	return &NotFoundError{Kind: kind, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(kind, key string) error {
	return &AlreadyExistsError{Kind: kind, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewTooLargeError creates a new TooLargeError
func NewTooLargeError(key string, size, limit int) error {
	return &TooLargeError{Key: key, Size: size, Limit: limit}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsTooLarge checks if an error is a size limit error
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrTooLarge)
}

// IsUnprocessed checks if an error means an entry outlived its retry budget
func IsUnprocessed(err error) bool {
	return errors.Is(err, ErrUnprocessed)
}

// IsNoKind checks if an error means no kind is registered
func IsNoKind(err error) bool {
	return errors.Is(err, ErrNoKind)
}
