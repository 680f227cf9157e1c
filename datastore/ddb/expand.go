/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/errors"
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros fills the index map's field macros from the given value.
// A macro like {UserID} resolves to the marshaled attribute of the same
// name; unresolvable macros expand to the empty string.
func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))
	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			name := strings.Trim(macro, "{}")
			val, ok := av[name]
			if !ok {
				return ""
			}
			return attributeToString(val)
		})
		res[fieldName] = expanded
	}
	return res, nil
}

// attributeToString renders the scalar attribute types that can appear
// inside a key. Sets, lists and binary values have no key representation
// and render empty.
func attributeToString(val types.AttributeValue) string {
	switch tv := val.(type) {
	case *types.AttributeValueMemberS:
		return tv.Value
	case *types.AttributeValueMemberN:
		return tv.Value
	case *types.AttributeValueMemberBOOL:
		return fmt.Sprintf("%v", tv.Value)
	default:
		return ""
	}
}

// expandStringKey replaces every macro in the index map values with the
// provided key string. Used by the single-key operations where the caller
// addresses a record by its bare id.
func expandStringKey(indexMap map[string]string, key string) map[string]string {
	expanded := make(map[string]string, len(indexMap))
	for field, template := range indexMap {
		expanded[field] = macroPattern.ReplaceAllString(template, key)
	}
	return expanded
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
// It requires non-empty values for "PK" and "SK".
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, errors.NewValidationError("indexMap", "expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}
