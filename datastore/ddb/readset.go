/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/keys"
	"github.com/lakefront/batchstore/registry"
)

// ReadRequest identifies one record to fetch in a batch read. Its PK and
// SK are resolved from the composite key once, at construction, and never
// re-parsed afterwards.
type ReadRequest struct {
	key keys.Key
	pk  string
	sk  string
}

// NewReadRequest builds a read request for the given composite key using
// the key pattern registered for its kind.
func NewReadRequest(k keys.Key) (ReadRequest, error) {
	spec, err := registry.GetKindSpec(k.Kind())
	if err != nil {
		return ReadRequest{}, err
	}
	pk, sk, err := spec.ResolveKeys(k)
	if err != nil {
		return ReadRequest{}, err
	}
	return ReadRequest{key: k, pk: pk, sk: sk}, nil
}

// NewReadRequests builds read requests for a list of composite keys,
// failing on the first key whose kind is unregistered or invalid.
func NewReadRequests(ks ...keys.Key) ([]ReadRequest, error) {
	requests := make([]ReadRequest, 0, len(ks))
	for _, k := range ks {
		r, err := NewReadRequest(k)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, nil
}

// Key returns the request's stable identity, the resolved PK and SK pair.
// Store responses are matched back to requests through it.
func (r ReadRequest) Key() string { return r.pk + "|" + r.sk }

// Category returns the lowercased kind the request is tallied under.
func (r ReadRequest) Category() string { return strings.ToLower(r.key.Kind()) }

// RecordKey returns the composite key the request was built from.
func (r ReadRequest) RecordKey() keys.Key { return r.key }

func (r ReadRequest) keyAttributes() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: r.pk},
		"SK": &types.AttributeValueMemberS{Value: r.sk},
	}
}

// dedupReads drops duplicate keys, keeping first-seen order. DynamoDB
// rejects a batch read containing the same key twice.
func dedupReads(requests []ReadRequest) []ReadRequest {
	seen := make(map[string]struct{}, len(requests))
	out := make([]ReadRequest, 0, len(requests))
	for _, r := range requests {
		if _, dup := seen[r.Key()]; dup {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}
