/*
Package ddb provides a DynamoDB implementation of the DataStore interface
together with the batch execution layer built on it.

The Store supports:
  - Single-table design patterns
  - Macro-based key expansion (e.g., "USER#{ID}")
  - Global Secondary Index (GSI) queries with pagination
  - Enhanced streaming with retry logic
  - Conditional updates for optimistic locking
  - Automatic EntityType injection for polymorphic storage

The BatchStore adds bulk reads and writes over the same table:
  - BatchGet chunks keys into BatchGetItem calls of up to 100
  - BatchWrite chunks puts and deletes into BatchWriteItem calls of up to 25
  - Unprocessed slices are resubmitted with exponential backoff
  - ConditionalApply and AdjustCounter run single conditional updates
    through the same retry machinery

Key Features:

Macro Expansion:
Keys can use macros that are replaced with entity field values:

	indexMap := map[string]string{
	    "PK": "USER#{ID}",        // Becomes "USER#123"
	    "SK": "PROFILE",          // Static value
	    "GSI1PK": "{Email}",      // Direct field value
	}

Batch Execution:
Bulk work never fails as a unit. Every entry lands in exactly one of
completed, failed, or unprocessed-then-failed, and the result reports
them all:

	set := ddb.NewWriteSet()
	for _, p := range profiles {
	    if err := ddb.AddPut(set, p); err != nil {
	        return err
	    }
	}
	result, err := store.BatchWrite(ctx, set)
	if err != nil {
	    return err
	}
	for _, f := range result.Failures {
	    log.Printf("write %s failed: %v", f.Request.Key(), f.Err)
	}

Streaming:
The enhanced streaming API supports configurable options:

	results := store.Stream(ctx, params,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithRetryPolicy(batch.DefaultRetryPolicy()),
	    storagemodels.WithProgressHandler(func(p StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)

For usage examples, see the integration tests and documentation.
*/
package ddb
