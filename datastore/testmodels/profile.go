package testmodels

import "github.com/go-openapi/strfmt"

// Profile is a listener account profile.
type Profile struct {

	// Timestamp when the profile was created.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`

	// Display name shown on the profile.
	DisplayName string `json:"DisplayName,omitempty"`

	// Email address of the account.
	// Required: true
	Email *string `json:"Email"`

	// Subscription plan of the account.
	Plan string `json:"Plan,omitempty"`

	// Timestamp when the profile was last updated.
	// Required: true
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt"`

	// Unique identifier of the account.
	// Required: true
	UserID *string `json:"UserId"`
}
