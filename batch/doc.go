/*
Package batch drives bulk key-value operations to completion against a store
whose batch calls may only partially succeed.

Managed stores cap how many entries one batch call may carry and are free to
complete only part of a call, handing the remainder back for resubmission.
This package owns the mechanics of that contract: splitting work into
store-sized chunks, submitting each chunk, and retrying the unprocessed
remainder with exponential backoff until it drains, the attempt budget runs
out, or a non-retryable fault ends the chunk.

The engine is generic over the request type. Anything implementing Request
can be driven through it; the store itself is reached through a single
Submit function, so the engine never sees wire payloads.

Basic usage:

	submit := func(ctx context.Context, reqs []ReadRequest) (batch.Outcome[ReadRequest], error) {
	    // One BatchGetItem call; unprocessed keys come back verbatim.
	    return store.BatchGet(ctx, reqs)
	}

	engine, err := batch.NewEngine(submit,
	    batch.WithChunkSize(100),
	    batch.WithRetryPolicy(batch.DefaultRetryPolicy()),
	)
	if err != nil {
	    log.Fatal(err)
	}

	result, err := engine.Run(ctx, requests)
	if err != nil {
	    log.Fatal(err) // input was rejected before any store call
	}
	if !result.Success {
	    for _, f := range result.Failures {
	        fmt.Printf("%s: %s\n", f.Request.Key(), f.Reason)
	    }
	}

Every submitted request lands in exactly one terminal state: completed, or
failed with a reason (max attempts exceeded, cancelled, condition failed, or
a non-retryable fault). Run returns an error only when the input itself is
rejected; partial completion is reported through the Result, never raised.

Chunks are independent units of work. With WithConcurrency above one they
are executed in parallel and merged after all finish; within one chunk,
attempts are strictly sequential because each attempt's unprocessed set is
the next attempt's input.
*/
package batch
