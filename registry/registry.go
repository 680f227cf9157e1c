package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/lakefront/batchstore/errors"
	"github.com/lakefront/batchstore/keys"
)

// UnmarshalFunc takes a raw DynamoDB item and returns the unmarshaled object.
type UnmarshalFunc func(item map[string]types.AttributeValue) (interface{}, error)

// KindSpec describes how records of one kind are addressed and decoded.
// PKPattern and SKPattern use {ID} and {SORT} placeholders filled from a
// composite key.
type KindSpec struct {
	PKPattern string
	SKPattern string
	Unmarshal UnmarshalFunc
}

var (
	kindRegistry = make(map[string]KindSpec)
	indexMaps    = make(map[reflect.Type]map[string]string)
	kindsByType  = make(map[reflect.Type]string)
	mu           sync.RWMutex
)

// RegisterKind registers a spec for a given record kind.
// If the kind is already registered, it panics to prevent accidental overrides.
func RegisterKind(kind string, spec KindSpec) {
	if kind == "" {
		panic("kind registry: kind must not be empty")
	}
	if spec.PKPattern == "" {
		spec.PKPattern = kind + "#{ID}"
	}
	if spec.SKPattern == "" {
		spec.SKPattern = spec.PKPattern
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := kindRegistry[kind]; exists {
		panic(fmt.Sprintf("kind registry: kind %q already registered", kind))
	}
	kindRegistry[kind] = spec
}

// GetKindSpec returns the registered spec for the given kind.
func GetKindSpec(kind string) (KindSpec, error) {
	mu.RLock()
	defer mu.RUnlock()
	spec, ok := kindRegistry[kind]
	if !ok {
		return KindSpec{}, fmt.Errorf("kind %q: %w", kind, errors.ErrNoKind)
	}
	return spec, nil
}

// GetUnmarshalFunc returns the registered unmarshal function for the given
// kind. Callers decoding mixed query results use this with the item's
// EntityType attribute.
func GetUnmarshalFunc(kind string) (UnmarshalFunc, error) {
	spec, err := GetKindSpec(kind)
	if err != nil {
		return nil, err
	}
	if spec.Unmarshal == nil {
		return nil, fmt.Errorf("kind %q has no unmarshal function: %w", kind, errors.ErrNoKind)
	}
	return spec.Unmarshal, nil
}

// ResolveKeys fills the kind's key patterns from the composite key and
// returns the PK and SK attribute values for the record.
func (s KindSpec) ResolveKeys(k keys.Key) (pk string, sk string, err error) {
	pk, err = fillPattern(s.PKPattern, k)
	if err != nil {
		return "", "", err
	}
	sk, err = fillPattern(s.SKPattern, k)
	if err != nil {
		return "", "", err
	}
	return pk, sk, nil
}

func fillPattern(pattern string, k keys.Key) (string, error) {
	out := strings.ReplaceAll(pattern, "{ID}", k.ID())
	if strings.Contains(out, "{SORT}") {
		if !k.HasSort() {
			return "", errors.NewValidationError("key",
				fmt.Sprintf("kind %s requires a sort component", k.Kind()))
		}
		out = strings.ReplaceAll(out, "{SORT}", k.Sort())
	}
	if strings.Contains(out, "{") {
		return "", errors.NewValidationError("pattern",
			fmt.Sprintf("unresolved placeholder in %q", pattern))
	}
	return out, nil
}

// RegisterIndexMap associates a Go type T with a given DynamoDB index map
// (PK, SK, GSI attributes). Macros in the map name fields of T.
func RegisterIndexMap[T any](idxMap map[string]string) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	indexMaps[t] = idxMap
}

// GetIndexMap retrieves the index map for type T, if any.
func GetIndexMap[T any]() (map[string]string, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMaps[t]
	return m, ok
}

// GetKind returns the kind name registered for type T through
// RegisterEntity, if any. Stores use it to stamp the EntityType attribute
// on persisted items.
func GetKind[T any]() (string, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	kind, ok := kindsByType[t]
	return kind, ok
}

func bindKindToType[T any](kind string) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	kindsByType[t] = kind
}
