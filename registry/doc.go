/*
Package registry manages kind registration and index mapping for batchstore.

The registry system enables:
  - Polymorphic record storage in a single DynamoDB table
  - Dynamic type resolution based on EntityType attributes
  - Key construction from composite keys through kind specs
  - Flexible key patterns through index maps

Kind Registry:
Maps record kind names to key patterns and unmarshal functions. Patterns
use {ID} and {SORT} placeholders filled from a composite key:

	registry.RegisterKind("PROFILE", registry.KindSpec{
	    PKPattern: "PROFILE#{ID}",
	    SKPattern: "PROFILE#{ID}",
	    Unmarshal: func(item map[string]types.AttributeValue) (interface{}, error) {
	        var p Profile
	        if err := attributevalue.UnmarshalMap(item, &p); err != nil {
	            return nil, err
	        }
	        return &p, nil
	    },
	})

Index Map Registry:
Associates Go types with DynamoDB key patterns whose macros name entity
fields, used when a full record is in hand:

	indexMap := map[string]string{
	    "PK": "PROFILE#{UserID}",
	    "SK": "PROFILE#{UserID}",
	    "GSI1PK": "EMAIL#{Email}",
	    "GSI1SK": "PROFILE",
	}
	registry.RegisterIndexMap[Profile](indexMap)

RegisterEntity does both in one call for the common case.

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
