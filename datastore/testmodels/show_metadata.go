package testmodels

import "github.com/go-openapi/strfmt"

// ShowMetadata describes a show in the catalog.
type ShowMetadata struct {

	// Name of the show's author or network.
	Author string `json:"Author,omitempty"`

	// Catalog category of the show.
	// Required: true
	Category *string `json:"Category"`

	// Language code of the show, such as "en".
	Language string `json:"Language,omitempty"`

	// Identifier of the show.
	// Required: true
	ShowID *string `json:"ShowId"`

	// Title of the show.
	// Required: true
	Title *string `json:"Title"`

	// Timestamp when the metadata was last updated.
	// Required: true
	// Format: date-time
	UpdatedAt *strfmt.DateTime `json:"UpdatedAt"`
}
