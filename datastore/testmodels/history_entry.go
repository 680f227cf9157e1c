package testmodels

import "github.com/go-openapi/strfmt"

// HistoryEntry records one playback event in a listener's history.
type HistoryEntry struct {

	// Whether playback reached the end of the episode.
	Completed bool `json:"Completed,omitempty"`

	// Identifier of the episode that was played.
	// Required: true
	EpisodeID *string `json:"EpisodeId"`

	// Timestamp when playback happened.
	// Required: true
	// Format: date-time
	PlayedAt *strfmt.DateTime `json:"PlayedAt"`

	// Playback position in seconds when the entry was recorded.
	PositionSeconds int64 `json:"PositionSeconds,omitempty"`

	// Identifier of the listener.
	// Required: true
	UserID *string `json:"UserId"`
}
