/*
Package batchstore provides batch-first data persistence on DynamoDB for Go
applications: typed single-record CRUD plus a batch execution engine that
carries partially-unprocessed batches to completion under a retry budget.

Batch calls against DynamoDB may succeed for some entries and decline
others in the same response. The library treats that as the normal case:
requests are chunked to the service ceilings, unprocessed entries are
resubmitted with exponential backoff, and every entry ends up in exactly
one bucket of the final result.

Key Features:
  - Type-safe operations using Go generics
  - Batch reads and writes with per-entry completion tracking
  - Conditional updates and atomic counters built on the same retry engine
  - Single-table design with registered key patterns and index maps
  - Enhanced streaming with retry logic and progress tracking
  - Semantic error types for better error handling
  - Thread-safe store management
  - In-memory mock implementation for testing

Basic Usage:

	// Create a store set for all record types
	mss := batchstore.NewMultiStoreSet()

	// Register a typed datastore
	profileStore, _ := ddb.NewStore[Profile](client, tableName)
	batchstore.RegisterStore(mss, "profiles", profileStore)

	// Retrieve and use the datastore
	store, _ := batchstore.GetStore[Profile](mss, "profiles")
	err := store.Put(ctx, profile)

Batch Usage:

	bs, _ := ddb.NewBatchStore(client, tableName)
	result, _ := ddb.BatchPut(ctx, bs, profiles...)
	if !result.Success {
	    for _, f := range result.Failures {
	        log.Printf("%s: %v", f.Request.Key(), f.Err)
	    }
	}

For more information, see the documentation at https://github.com/lakefront/batchstore
*/
package batchstore
