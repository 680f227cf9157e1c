package testmodels

import "github.com/go-openapi/strfmt"

// Episode is one published episode of a show.
type Episode struct {

	// Playback length in seconds.
	DurationSeconds int64 `json:"DurationSeconds,omitempty"`

	// Identifier of the episode.
	// Required: true
	EpisodeID *string `json:"EpisodeId"`

	// Timestamp when the episode was published.
	// Required: true
	// Format: date-time
	PublishedAt *strfmt.DateTime `json:"PublishedAt"`

	// Identifier of the show the episode belongs to.
	// Required: true
	ShowID *string `json:"ShowId"`

	// Title of the episode.
	// Required: true
	Title *string `json:"Title"`
}
