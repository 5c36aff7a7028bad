package models

import "gorm.io/datatypes"

// Organization is the tenant record owned by the external membership authority.
// The worker expects exactly one "main" organization to exist.
type Organization struct {
	BaseModel

	Name     string         `gorm:"not null" json:"name"`
	Slug     string         `gorm:"index" json:"slug"`
	Settings datatypes.JSON `json:"settings"`

	Teams []Team `gorm:"foreignKey:OrganizationID" json:"teams,omitempty"`
}
