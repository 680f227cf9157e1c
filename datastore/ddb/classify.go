/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// IsRetryableError determines if a DynamoDB error is transient. Throttling,
// request-rate limiting and internal server errors are worth another
// attempt; everything else (malformed items, failed conditions, missing
// permissions) is not.
func IsRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return true
	}
	var requestLimit *types.RequestLimitExceeded
	if errors.As(err, &requestLimit) {
		return true
	}
	var internal *types.InternalServerError
	if errors.As(err, &internal) {
		return true
	}

	// Fall back to the service error code for faults that arrive as
	// generic API errors.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "ProvisionedThroughputExceededException",
			"RequestLimitExceeded", "ServiceUnavailable", "InternalServerError":
			return true
		}
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}

	return false
}

// isConditionFailure reports whether err is DynamoDB rejecting a
// conditional expression.
func isConditionFailure(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ConditionalCheckFailedException"
	}
	return false
}
