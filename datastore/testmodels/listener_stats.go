package testmodels

// ListenerStats is one day of aggregated playback counters for a show.
type ListenerStats struct {

	// Day the counters cover, in YYYY-MM-DD form.
	// Required: true
	Date *string `json:"Date"`

	// Total number of plays.
	Plays int64 `json:"Plays,omitempty"`

	// Identifier of the show.
	// Required: true
	ShowID *string `json:"ShowId"`

	// Total seconds of playback across all listeners.
	TotalSeconds int64 `json:"TotalSeconds,omitempty"`

	// Number of distinct listeners.
	UniqueListeners int64 `json:"UniqueListeners,omitempty"`
}
