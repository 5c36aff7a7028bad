package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
)

// MainOrganizationName is the display name given to the seeded organization.
const MainOrganizationName = "Main"

// AutoMigrate creates or updates the schema for the authority models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organization{},
		&models.Team{},
	)
}

// SeedData ensures the main organization and its system "Uncategorized"
// team exist. The system team carries the fixed sentinel id so analysis
// records can reference it before the authority is consulted.
func SeedData(db *gorm.DB) error {
	var org models.Organization
	err := db.Order("created_at ASC").First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		org = models.Organization{
			Name: MainOrganizationName,
			Slug: "main",
		}
		if err := db.Create(&org).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	system := models.Team{
		BaseModel:      models.BaseModel{ID: models.UncategorizedTeamID},
		Name:           "Uncategorized",
		OrganizationID: org.ID,
		Color:          "#9e9e9e",
		OrderIndex:     0,
		IsSystem:       true,
	}
	return db.
		Where(models.Team{BaseModel: models.BaseModel{ID: system.ID}}).
		Attrs(system).
		FirstOrCreate(&models.Team{}).Error
}
