/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import "sync"

// GSIConfig describes a global secondary index: its name and the
// attribute names holding its partition and sort keys. The attribute
// names must match the keys used in the entity's index map, since
// those are the attributes the write path stamps onto each item.
type GSIConfig struct {
	// IndexName is the index name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the partition key attribute name (e.g., "GSI1PK")
	PartitionKeyName string
	// SortKeyName is the sort key attribute name (e.g., "GSI1SK")
	SortKeyName string
}

var (
	gsiConfigMu sync.RWMutex
	gsiConfigs  = map[string]GSIConfig{
		"GSI1": {
			IndexName:        "GSI1",
			PartitionKeyName: "GSI1PK",
			SortKeyName:      "GSI1SK",
		},
	}
)

// RegisterGSIConfig makes an index known to the query builder.
// Registering an existing name replaces it.
func RegisterGSIConfig(config GSIConfig) {
	gsiConfigMu.Lock()
	defer gsiConfigMu.Unlock()
	gsiConfigs[config.IndexName] = config
}

// GetGSIConfig returns the configuration for a given index name.
func GetGSIConfig(indexName string) (GSIConfig, bool) {
	gsiConfigMu.RLock()
	defer gsiConfigMu.RUnlock()
	config, ok := gsiConfigs[indexName]
	return config, ok
}
