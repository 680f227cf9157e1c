/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/lakefront/batchstore/storagemodels"
)

type DataStore[T any] interface {
	GetOne(ctx context.Context, key string) (*T, error)

	Put(ctx context.Context, entity T) error

	UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]interface{}, condition string) error

	Query(ctx context.Context, params *storagemodels.QueryParams) ([]interface{}, error)

	QueryPage(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.QueryResult, error)

	Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]

	Delete(ctx context.Context, key string) error
}
