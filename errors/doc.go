/*
Package errors provides semantic error types for the batchstore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper
functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("record not found")
	    ErrAlreadyExists   = errors.New("entry already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrConditionFailed = errors.New("condition check failed")
	    ErrNoKind          = errors.New("no kind registered")
	    ErrNoIndexMap      = errors.New("no index map found for type")
	    ErrTooLarge        = errors.New("request exceeds size limit")
	    ErrUnprocessed     = errors.New("entry left unprocessed after retries")
	)

Usage:

	// Check error type
	profile, err := store.Get(ctx, "u-1029")
	if err != nil {
	    if errors.IsNotFound(err) {
	        // Handle not found case
	        return nil, fmt.Errorf("profile %s does not exist", "u-1029")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewNotFoundError("PROFILE", "u-1029")
	err := errors.NewValidationError("keys", "read set must not be empty")
	err := errors.NewConditionFailedError("adjust", "Downloads >= :floor")

The error types implement the error interface and support wrapping, making
them compatible with Go's standard error handling patterns. Terminal states
of batch entries (max attempts exceeded, cancelled, ...) are not errors to
raise but outcomes to report; those live in the batch package as failure
reasons.
*/
package errors
