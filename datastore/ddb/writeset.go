/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
	"github.com/lakefront/batchstore/registry"
)

// WriteRequest is one upsert or delete destined for a batch write. Built
// through a WriteSet, never directly.
type WriteRequest struct {
	kind     string
	pk       string
	sk       string
	item     map[string]types.AttributeValue // nil for deletes
	isDelete bool
}

// Key returns the request's stable identity, the resolved PK and SK pair.
func (w WriteRequest) Key() string { return w.pk + "|" + w.sk }

// Category returns the lowercased kind the request is tallied under.
func (w WriteRequest) Category() string { return strings.ToLower(w.kind) }

// IsDelete reports whether the request removes the record instead of
// upserting it.
func (w WriteRequest) IsDelete() bool { return w.isDelete }

func (w WriteRequest) keyAttributes() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: w.pk},
		"SK": &types.AttributeValueMemberS{Value: w.sk},
	}
}

// WriteSet accumulates validated write requests for one batch write.
// Key resolution, the item size ceiling and duplicate keys are all
// checked at Add time, so the batch executor never sees an entry the
// store is guaranteed to reject.
type WriteSet struct {
	requests []WriteRequest
	seen     map[string]struct{}
}

// NewWriteSet returns an empty write set.
func NewWriteSet() *WriteSet {
	return &WriteSet{seen: make(map[string]struct{})}
}

// AddPut appends an upsert of the given entity. The entity's type must
// have been registered through RegisterEntity so its kind, key patterns
// and index map are known.
func AddPut[T any](ws *WriteSet, entity T) error {
	kind, ok := registry.GetKind[T]()
	if !ok {
		return fmt.Errorf("type %T: %w", entity, errors.ErrNoKind)
	}

	av, err := marshalEntity(entity)
	if err != nil {
		return err
	}

	pk, sk, err := itemKeyStrings(av)
	if err != nil {
		return err
	}

	if size := itemSize(av); size > MaxItemSize {
		return errors.NewTooLargeError(pk+"|"+sk, size, MaxItemSize)
	}

	return ws.add(WriteRequest{kind: kind, pk: pk, sk: sk, item: av})
}

// AddDelete appends a delete of the record addressed by the composite key.
func (ws *WriteSet) AddDelete(k keys.Key) error {
	spec, err := registry.GetKindSpec(k.Kind())
	if err != nil {
		return err
	}
	pk, sk, err := spec.ResolveKeys(k)
	if err != nil {
		return err
	}
	return ws.add(WriteRequest{kind: k.Kind(), pk: pk, sk: sk, isDelete: true})
}

func (ws *WriteSet) add(w WriteRequest) error {
	if _, dup := ws.seen[w.Key()]; dup {
		// A second write to the same key in one batch would silently
		// shadow the first; reject it so the caller notices.
		return errors.NewAlreadyExistsError(w.kind, w.Key())
	}
	ws.seen[w.Key()] = struct{}{}
	ws.requests = append(ws.requests, w)
	return nil
}

// Len returns the number of accumulated requests.
func (ws *WriteSet) Len() int { return len(ws.requests) }

// Requests returns the accumulated requests in insertion order.
func (ws *WriteSet) Requests() []WriteRequest {
	return ws.requests
}

func itemKeyStrings(item map[string]types.AttributeValue) (string, string, error) {
	pk, okPK := item["PK"].(*types.AttributeValueMemberS)
	sk, okSK := item["SK"].(*types.AttributeValueMemberS)
	if !okPK || !okSK || pk.Value == "" || sk.Value == "" {
		return "", "", errors.NewValidationError("item", "marshaled item missing PK or SK")
	}
	return pk.Value, sk.Value, nil
}

// itemSize approximates DynamoDB's item size accounting: attribute name
// lengths plus value payload lengths.
func itemSize(item map[string]types.AttributeValue) int {
	size := 0
	for name, val := range item {
		size += len(name) + attributeSize(val)
	}
	return size
}

func attributeSize(val types.AttributeValue) int {
	switch tv := val.(type) {
	case *types.AttributeValueMemberS:
		return len(tv.Value)
	case *types.AttributeValueMemberN:
		return len(tv.Value)
	case *types.AttributeValueMemberB:
		return len(tv.Value)
	case *types.AttributeValueMemberBOOL, *types.AttributeValueMemberNULL:
		return 1
	case *types.AttributeValueMemberSS:
		size := 0
		for _, s := range tv.Value {
			size += len(s)
		}
		return size
	case *types.AttributeValueMemberNS:
		size := 0
		for _, n := range tv.Value {
			size += len(n)
		}
		return size
	case *types.AttributeValueMemberBS:
		size := 0
		for _, b := range tv.Value {
			size += len(b)
		}
		return size
	case *types.AttributeValueMemberL:
		size := 3
		for _, v := range tv.Value {
			size += attributeSize(v)
		}
		return size
	case *types.AttributeValueMemberM:
		return 3 + itemSize(tv.Value)
	default:
		return 0
	}
}
