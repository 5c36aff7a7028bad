package models

// UncategorizedTeamID is the fixed identifier of the permanent system team.
// Analysis records whose team was deleted are reassigned here, and records
// created without an explicit team land here as well.
const UncategorizedTeamID = "uncategorized"

// Team groups analyses and folders inside an organization. Exactly one team
// per organization is the system team; it cannot be deleted.
type Team struct {
	BaseModel

	Name           string `gorm:"not null;index" json:"name"`
	OrganizationID string `gorm:"size:64;index" json:"organizationId"`
	Color          string `json:"color"`
	OrderIndex     int    `gorm:"default:0;index" json:"orderIndex"`
	IsSystem       bool   `gorm:"default:false" json:"isSystem"`
}
