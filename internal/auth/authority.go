// Package auth wraps the external team-membership authority: the database
// that owns organization and team records. The worker consumes it through a
// narrow create/update/remove surface keyed by {teamID, organizationID} and
// treats its failures as upstream errors.
package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// Authority is the gorm-backed implementation of the membership API.
type Authority struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAuthority constructs an Authority over the given database handle.
func NewAuthority(db *gorm.DB) (*Authority, error) {
	if db == nil {
		return nil, errors.New("authority: db is required")
	}
	return &Authority{
		db:  db,
		log: logger.WithModule("authority"),
	}, nil
}

// MainOrganization returns the oldest organization record, or nil when none
// exists yet.
func (a *Authority) MainOrganization(ctx context.Context) (*models.Organization, error) {
	var org models.Organization
	err := a.db.WithContext(ctx).Order("created_at ASC").First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authority: load main organization: %w", err)
	}
	return &org, nil
}

// ListTeams returns the organization's teams ordered by their display rank.
func (a *Authority) ListTeams(ctx context.Context, organizationID string) ([]models.Team, error) {
	var teams []models.Team
	err := a.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("order_index ASC, created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("authority: list teams: %w", err)
	}
	return teams, nil
}

// GetTeam loads one team scoped to the organization. Returns nil when the
// team does not exist.
func (a *Authority) GetTeam(ctx context.Context, teamID, organizationID string) (*models.Team, error) {
	var team models.Team
	err := a.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", teamID, organizationID).
		First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("authority: load team: %w", err)
	}
	return &team, nil
}

// CreateTeam persists a new team record.
func (a *Authority) CreateTeam(ctx context.Context, team *models.Team) error {
	if err := a.db.WithContext(ctx).Create(team).Error; err != nil {
		return fmt.Errorf("authority: create team: %w", err)
	}
	a.log.Info("team created",
		zap.String("team_id", team.ID),
		zap.String("organization_id", team.OrganizationID),
	)
	return nil
}

// UpdateTeam applies the field updates and returns the fresh record.
func (a *Authority) UpdateTeam(ctx context.Context, teamID, organizationID string, updates map[string]any) (*models.Team, error) {
	if len(updates) == 0 {
		return a.GetTeam(ctx, teamID, organizationID)
	}

	err := a.db.WithContext(ctx).
		Model(&models.Team{}).
		Where("id = ? AND organization_id = ?", teamID, organizationID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("authority: update team: %w", err)
	}

	return a.GetTeam(ctx, teamID, organizationID)
}

// RemoveTeam deletes the team record.
func (a *Authority) RemoveTeam(ctx context.Context, teamID, organizationID string) error {
	err := a.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", teamID, organizationID).
		Delete(&models.Team{}).Error
	if err != nil {
		return fmt.Errorf("authority: remove team: %w", err)
	}
	a.log.Info("team removed", zap.String("team_id", teamID))
	return nil
}

// ReorderTeams assigns each team an order index equal to its position in
// teamIDs, inside one transaction, and returns the re-sorted list.
func (a *Authority) ReorderTeams(ctx context.Context, organizationID string, teamIDs []string) ([]models.Team, error) {
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for index, teamID := range teamIDs {
			err := tx.Model(&models.Team{}).
				Where("id = ? AND organization_id = ?", teamID, organizationID).
				Update("order_index", index).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("authority: reorder teams: %w", err)
	}

	return a.ListTeams(ctx, organizationID)
}
