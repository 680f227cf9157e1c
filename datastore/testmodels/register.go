/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

// Package testmodels provides the record kinds used by tests and examples:
// a small listening platform laid out in a single table, with profiles,
// playback history, show metadata, per-day listener stats and episodes.
package testmodels

import "github.com/lakefront/batchstore/registry"

func init() {
	registry.RegisterEntity[Profile](registry.EntityRegistration{
		Kind:      "PROFILE",
		PKPattern: "USER#{ID}",
		SKPattern: "PROFILE",
		IndexMap: map[string]string{
			"PK":     "USER#{UserID}",
			"SK":     "PROFILE",
			"GSI1PK": "EMAIL#{Email}",
			"GSI1SK": "USER#{UserID}",
		},
	})

	registry.RegisterEntity[HistoryEntry](registry.EntityRegistration{
		Kind:      "HISTORY",
		PKPattern: "USER#{ID}",
		SKPattern: "HISTORY#{SORT}",
		IndexMap: map[string]string{
			"PK":     "USER#{UserID}",
			"SK":     "HISTORY#{PlayedAt}",
			"GSI1PK": "EPISODE#{EpisodeID}",
			"GSI1SK": "{PlayedAt}",
		},
	})

	registry.RegisterEntity[ShowMetadata](registry.EntityRegistration{
		Kind:      "SHOW",
		PKPattern: "SHOW#{ID}",
		SKPattern: "METADATA",
		IndexMap: map[string]string{
			"PK":     "SHOW#{ShowID}",
			"SK":     "METADATA",
			"GSI1PK": "CATEGORY#{Category}",
			"GSI1SK": "SHOW#{ShowID}",
		},
	})

	// Stats live only under their show partition; no index attributes.
	registry.RegisterEntity[ListenerStats](registry.EntityRegistration{
		Kind:      "STATS",
		PKPattern: "SHOW#{ID}",
		SKPattern: "STATS#{SORT}",
		IndexMap: map[string]string{
			"PK": "SHOW#{ShowID}",
			"SK": "STATS#{Date}",
		},
	})

	registry.RegisterEntity[Episode](registry.EntityRegistration{
		Kind:      "EPISODE",
		PKPattern: "SHOW#{ID}",
		SKPattern: "EPISODE#{SORT}",
		IndexMap: map[string]string{
			"PK":     "SHOW#{ShowID}",
			"SK":     "EPISODE#{EpisodeID}",
			"GSI1PK": "EPISODES#{ShowID}",
			"GSI1SK": "{PublishedAt}",
		},
	})
}
