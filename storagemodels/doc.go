/*
Package storagemodels defines the data structures used throughout batchstore.

Key Types:

QueryParams:
Parameters for querying the datastore:

	params := &QueryParams{
	    TableName:              "my-table",
	    KeyConditionExpression: "PK = :pk",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":pk": &types.AttributeValueMemberS{Value: "PROFILE#u-1029"},
	    },
	    FilterExpression: aws.String("Plan = :plan"),
	    IndexName:        aws.String("GSI1"),
	    Limit:            aws.Int32(100),
	}

QueryResult:
One page of query results plus the cursor for the next page:

	page, err := store.QueryPage(ctx, params)
	for page.HasMore() {
	    params.ExclusiveStartKey = page.LastEvaluatedKey
	    page, err = store.QueryPage(ctx, params)
	}

StreamResult:
Results from streaming operations with metadata:

	type StreamResult[T any] struct {
	    Item  T                               // The typed record
	    Raw   map[string]types.AttributeValue // Raw DynamoDB attributes
	    Error error                           // Item-specific error, if any
	    Meta  StreamMeta                      // Metadata about this item
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithRetryPolicy(batch.DefaultRetryPolicy()),
	    WithProgressHandler(progressFunc),
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
