/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

// Package keys defines the composite key value type used to address records.
// A Key is built once at the call boundary and passed through chunking,
// execution and aggregation unchanged, so validation happens exactly once.
package keys

import (
	"strings"

	"github.com/lakefront/batchstore/errors"
)

// Separator joins key components in the encoded form.
const Separator = "#"

// MaxEncodedLength is the longest encoded key the store accepts. DynamoDB
// rejects partition key values above 2048 bytes.
const MaxEncodedLength = 2048

// Key identifies a single record by kind, id and an optional sort component.
// The zero Key is invalid; construct one with New or NewWithSort.
type Key struct {
	kind string
	id   string
	sort string
}

// New builds a key from a kind and an id.
func New(kind, id string) (Key, error) {
	return build(kind, id, "")
}

// NewWithSort builds a key whose record is addressed by a sort component in
// addition to its id, such as an episode inside a show.
func NewWithSort(kind, id, sort string) (Key, error) {
	if sort == "" {
		return Key{}, errors.NewValidationError("sort", "must not be empty")
	}
	return build(kind, id, sort)
}

func build(kind, id, sort string) (Key, error) {
	if kind == "" {
		return Key{}, errors.NewValidationError("kind", "must not be empty")
	}
	if id == "" {
		return Key{}, errors.NewValidationError("id", "must not be empty")
	}
	for field, value := range map[string]string{"kind": kind, "id": id, "sort": sort} {
		if strings.Contains(value, Separator) {
			return Key{}, errors.NewValidationError(field, "must not contain '"+Separator+"'")
		}
	}
	k := Key{kind: kind, id: id, sort: sort}
	if len(k.String()) > MaxEncodedLength {
		return Key{}, errors.NewValidationError("key", "encoded form exceeds 2048 bytes")
	}
	return k, nil
}

// Parse decodes a key previously produced by String.
func Parse(encoded string) (Key, error) {
	parts := strings.Split(encoded, Separator)
	switch len(parts) {
	case 2:
		return New(parts[0], parts[1])
	case 3:
		return NewWithSort(parts[0], parts[1], parts[2])
	default:
		return Key{}, errors.NewValidationError("key", "expected KIND#id or KIND#id#sort")
	}
}

// Kind returns the record kind, such as "PROFILE" or "EPISODE".
func (k Key) Kind() string { return k.kind }

// ID returns the record id.
func (k Key) ID() string { return k.id }

// Sort returns the sort component, or the empty string when the key has none.
func (k Key) Sort() string { return k.sort }

// HasSort reports whether the key carries a sort component.
func (k Key) HasSort() bool { return k.sort != "" }

// IsZero reports whether the key is the invalid zero value.
func (k Key) IsZero() bool { return k.kind == "" && k.id == "" }

// String returns the encoded form, KIND#id or KIND#id#sort.
func (k Key) String() string {
	if k.sort == "" {
		return k.kind + Separator + k.id
	}
	return k.kind + Separator + k.id + Separator + k.sort
}

// Equal reports whether two keys address the same record.
func (k Key) Equal(other Key) bool {
	return k.kind == other.kind && k.id == other.id && k.sort == other.sort
}
