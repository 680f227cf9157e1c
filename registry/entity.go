/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EntityRegistration bundles everything one record type needs to live in
// the table: its kind name, key-form patterns for addressing by composite
// key, and the field-macro index map used when a full record is present.
type EntityRegistration struct {
	// Kind is the EntityType discriminant stored on every item,
	// such as "PROFILE".
	Kind string

	// PKPattern and SKPattern use {ID}/{SORT} placeholders. When empty
	// they default to "KIND#{ID}".
	PKPattern string
	SKPattern string

	// IndexMap holds attribute patterns whose macros name fields of T,
	// such as "PROFILE#{UserID}". Used for puts and index queries.
	IndexMap map[string]string
}

// RegisterEntity registers type T under one kind in a single call: the
// index map for persisting full records, and a kind spec whose unmarshal
// function decodes items into *T. Call it during initialization; it
// panics on a duplicate kind like RegisterKind does.
func RegisterEntity[T any](reg EntityRegistration) {
	RegisterIndexMap[T](reg.IndexMap)
	bindKindToType[T](reg.Kind)
	RegisterKind(reg.Kind, KindSpec{
		PKPattern: reg.PKPattern,
		SKPattern: reg.SKPattern,
		Unmarshal: func(item map[string]types.AttributeValue) (interface{}, error) {
			var entity T
			if err := attributevalue.UnmarshalMap(item, &entity); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s item: %w", reg.Kind, err)
			}
			return &entity, nil
		},
	})
}
