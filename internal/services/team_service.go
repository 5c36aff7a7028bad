package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/tree"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// TeamAuthority is the external membership system that owns team rows.
// The team service treats it as the source of truth for team existence and
// ordering, and keeps the analysis config document consistent with it.
type TeamAuthority interface {
	MainOrganization(ctx context.Context) (*models.Organization, error)
	ListTeams(ctx context.Context, organizationID string) ([]models.Team, error)
	GetTeam(ctx context.Context, teamID, organizationID string) (*models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, teamID, organizationID string, updates map[string]any) (*models.Team, error)
	RemoveTeam(ctx context.Context, teamID, organizationID string) error
	ReorderTeams(ctx context.Context, organizationID string, teamIDs []string) ([]models.Team, error)
}

// TeamService orchestrates team lifecycle against the membership authority
// and keeps analysis/team assignments and per-team folder trees in sync.
type TeamService struct {
	authority TeamAuthority
	log       *zap.Logger

	mu          sync.Mutex
	source      tree.ConfigSource
	engine      *tree.Engine
	orgID       string
	initialized bool
}

// CreateTeamInput names a new team. Order is optional; when nil the team is
// appended after the existing ones.
type CreateTeamInput struct {
	Name  string
	Color string
	Order *int
}

// UpdateTeamInput carries the fields to change; nil fields are left alone.
type UpdateTeamInput struct {
	Name  *string
	Color *string
	Order *int
}

// DeleteTeamResult reports what was removed.
type DeleteTeamResult struct {
	Deleted string `json:"deleted"`
	Name    string `json:"name"`
}

// MoveAnalysisResult reports a team reassignment.
type MoveAnalysisResult struct {
	AnalysisID   string `json:"analysisId"`
	AnalysisName string `json:"analysisName"`
	From         string `json:"from"`
	To           string `json:"to"`
}

// NewTeamService constructs a TeamService. Initialize must be called before
// any operation.
func NewTeamService(authority TeamAuthority) (*TeamService, error) {
	if authority == nil {
		return nil, apperrors.NewInitialization("team authority is required")
	}
	return &TeamService{
		authority: authority,
		log:       logger.WithModule("teams"),
	}, nil
}

// Initialize resolves the main organization and binds the config source the
// folder trees live in. Calling it again is a no-op.
func (s *TeamService) Initialize(ctx context.Context, source tree.ConfigSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if source == nil {
		return apperrors.NewInitialization("config source is required")
	}

	org, err := s.authority.MainOrganization(ctx)
	if err != nil {
		return apperrors.NewUpstream("Failed to resolve main organization").WithInternal(err)
	}
	if org == nil {
		return apperrors.NewInitialization("Main organization not found")
	}

	engine, err := tree.NewEngine(source)
	if err != nil {
		return err
	}

	s.source = source
	s.engine = engine
	s.orgID = org.ID
	s.initialized = true
	s.log.Info("team service initialized", zap.String("organization_id", org.ID))
	return nil
}

func (s *TeamService) requireInit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return apperrors.NewInitialization("Team service not initialized")
	}
	return nil
}

// GetAllTeams lists the organization's teams in display order.
func (s *TeamService) GetAllTeams(ctx context.Context) ([]models.Team, error) {
	if err := s.requireInit(); err != nil {
		return nil, err
	}

	teams, err := s.authority.ListTeams(ctx, s.orgID)
	if err != nil {
		return nil, apperrors.NewUpstream("Failed to list teams").WithInternal(err)
	}
	return teams, nil
}

// GetTeam returns one team.
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	if err := s.requireInit(); err != nil {
		return nil, err
	}

	team, err := s.authority.GetTeam(ctx, teamID, s.orgID)
	if err != nil {
		return nil, apperrors.NewUpstream("Failed to load team").WithInternal(err)
	}
	if team == nil {
		return nil, apperrors.NewNotFound("Team %s not found", teamID)
	}
	return team, nil
}

// CreateTeam creates a team through the authority. Names must be unique
// within the organization (exact match).
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if err := s.requireInit(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("Team name is required")
	}

	existing, err := s.authority.ListTeams(ctx, s.orgID)
	if err != nil {
		return nil, apperrors.NewUpstream("Failed to list teams").WithInternal(err)
	}
	for _, team := range existing {
		if team.Name == name {
			return nil, apperrors.NewConflict("Team with name %s already exists", name)
		}
	}

	orderIndex := len(existing)
	if input.Order != nil {
		orderIndex = *input.Order
	}

	team := &models.Team{
		Name:           name,
		OrganizationID: s.orgID,
		Color:          input.Color,
		OrderIndex:     orderIndex,
	}
	if err := s.authority.CreateTeam(ctx, team); err != nil {
		return nil, apperrors.NewUpstream("Failed to create team").WithInternal(err)
	}

	s.log.Info("team created", zap.String("team_id", team.ID), zap.String("name", name))
	return team, nil
}

// UpdateTeam changes name, color, or position through the authority.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID string, input UpdateTeamInput) (*models.Team, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidation("Team name is required")
		}
		updates["name"] = name
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.Order != nil {
		updates["order_index"] = *input.Order
	}
	if len(updates) == 0 {
		return nil, apperrors.NewValidation("No valid fields to update")
	}

	team, err := s.authority.UpdateTeam(ctx, teamID, s.orgID, updates)
	if err != nil {
		return nil, apperrors.NewUpstream("Failed to update team").WithInternal(err)
	}
	return team, nil
}

// DeleteTeam removes a team. Its analyses are reassigned to the
// uncategorized team first, so the authority row is only removed once no
// analysis points at it. The system team cannot be deleted.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID string) (*DeleteTeamResult, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.IsSystem {
		return nil, apperrors.NewInvalidOperation("Cannot delete system team")
	}

	_, err = s.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		now := time.Now().UTC()
		for id, record := range doc.Analyses {
			if record.TeamID != teamID {
				continue
			}
			record.TeamID = models.UncategorizedTeamID
			record.UpdatedAt = now
			if err := tree.AddItemToDocument(doc, models.UncategorizedTeamID, models.NewAnalysisRef(id), ""); err != nil {
				return err
			}
		}
		delete(doc.TeamStructure, teamID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.authority.RemoveTeam(ctx, teamID, s.orgID); err != nil {
		return nil, apperrors.NewUpstream("Failed to delete team").WithInternal(err)
	}

	if err := s.compactOrder(ctx); err != nil {
		s.log.Warn("team order compaction failed", zap.Error(err))
	}

	s.log.Info("team deleted", zap.String("team_id", teamID), zap.String("name", team.Name))
	return &DeleteTeamResult{Deleted: teamID, Name: team.Name}, nil
}

// compactOrder renumbers the remaining teams densely after a removal.
func (s *TeamService) compactOrder(ctx context.Context) error {
	teams, err := s.authority.ListTeams(ctx, s.orgID)
	if err != nil {
		return err
	}
	ids := make([]string, len(teams))
	for i, team := range teams {
		ids[i] = team.ID
	}
	_, err = s.authority.ReorderTeams(ctx, s.orgID, ids)
	return err
}

// ReorderTeams applies a new display order.
func (s *TeamService) ReorderTeams(ctx context.Context, teamIDs []string) ([]models.Team, error) {
	if err := s.requireInit(); err != nil {
		return nil, err
	}
	if len(teamIDs) == 0 {
		return nil, apperrors.NewValidation("Team order is required")
	}

	teams, err := s.authority.ReorderTeams(ctx, s.orgID, teamIDs)
	if err != nil {
		return nil, apperrors.NewUpstream("Failed to reorder teams").WithInternal(err)
	}
	return teams, nil
}

// GetAnalysesByTeam returns the team's analyses in creation order.
func (s *TeamService) GetAnalysesByTeam(ctx context.Context, teamID string) ([]*models.AnalysisRecord, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	doc, err := s.source.GetConfig()
	if err != nil {
		return nil, err
	}

	var records []*models.AnalysisRecord
	for _, record := range doc.SortedAnalyses() {
		if record.TeamID == teamID {
			records = append(records, record)
		}
	}
	return records, nil
}

// GetAnalysisCountByTeamID returns how many analyses the team owns. Lookup
// failures count as zero so list views degrade instead of erroring.
func (s *TeamService) GetAnalysisCountByTeamID(ctx context.Context, teamID string) int {
	if err := s.requireInit(); err != nil {
		return 0
	}
	doc, err := s.source.GetConfig()
	if err != nil {
		return 0
	}

	count := 0
	for _, record := range doc.Analyses {
		if record.TeamID == teamID {
			count++
		}
	}
	return count
}

// MoveAnalysisToTeam reassigns an analysis. The tree reference moves to the
// target team's root; moving to the current team is a no-op.
func (s *TeamService) MoveAnalysisToTeam(ctx context.Context, analysisID, targetTeamID string) (*MoveAnalysisResult, error) {
	if _, err := s.GetTeam(ctx, targetTeamID); err != nil {
		return nil, err
	}

	doc, err := s.source.GetConfig()
	if err != nil {
		return nil, err
	}
	current, ok := doc.Analyses[analysisID]
	if !ok {
		return nil, apperrors.NewNotFound("Analysis %s not found", analysisID)
	}
	if current.TeamID == targetTeamID {
		return &MoveAnalysisResult{
			AnalysisID:   analysisID,
			AnalysisName: current.Name,
			From:         current.TeamID,
			To:           targetTeamID,
		}, nil
	}

	var result *MoveAnalysisResult
	_, err = s.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		record, ok := doc.Analyses[analysisID]
		if !ok {
			return apperrors.NewNotFound("Analysis %s not found", analysisID)
		}
		from := record.TeamID
		record.TeamID = targetTeamID
		record.UpdatedAt = time.Now().UTC()

		tree.RemoveItemFromDocument(doc, from, analysisID)
		if err := tree.AddItemToDocument(doc, targetTeamID, models.NewAnalysisRef(analysisID), ""); err != nil {
			return err
		}

		result = &MoveAnalysisResult{
			AnalysisID:   analysisID,
			AnalysisName: record.Name,
			From:         from,
			To:           targetTeamID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("analysis moved",
		zap.String("analysis_id", analysisID),
		zap.String("from", result.From),
		zap.String("to", result.To),
	)
	return result, nil
}

// EnsureAnalysisHasTeam backfills the uncategorized team on records that
// predate team assignment.
func (s *TeamService) EnsureAnalysisHasTeam(ctx context.Context, analysisID string) error {
	if err := s.requireInit(); err != nil {
		return err
	}

	_, err := s.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		record, ok := doc.Analyses[analysisID]
		if !ok {
			return apperrors.NewNotFound("Analysis %s not found", analysisID)
		}
		if record.TeamID != "" {
			return nil
		}
		record.TeamID = models.UncategorizedTeamID
		record.UpdatedAt = time.Now().UTC()
		return tree.AddItemToDocument(doc, models.UncategorizedTeamID, models.NewAnalysisRef(analysisID), "")
	})
	return err
}

// CreateFolder adds a folder to the team's tree.
func (s *TeamService) CreateFolder(ctx context.Context, teamID string, input tree.CreateFolderInput) (*models.TreeItem, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.engine.CreateFolder(teamID, input)
}

// UpdateFolder renames or expands/collapses a folder.
func (s *TeamService) UpdateFolder(ctx context.Context, teamID, folderID string, input tree.UpdateFolderInput) (*models.TreeItem, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.engine.UpdateFolder(teamID, folderID, input)
}

// DeleteFolder removes a folder, promoting its children one level up.
func (s *TeamService) DeleteFolder(ctx context.Context, teamID, folderID string) (*tree.DeleteFolderResult, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.engine.DeleteFolder(teamID, folderID)
}

// MoveItem relocates an item within the team's tree.
func (s *TeamService) MoveItem(ctx context.Context, teamID, itemID, targetFolderID string, position int) (*tree.MoveItemResult, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	return s.engine.MoveItem(teamID, itemID, targetFolderID, position)
}

// Structure returns the team's root items.
func (s *TeamService) Structure(ctx context.Context, teamID string) ([]*models.TreeItem, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	doc, err := s.source.GetConfig()
	if err != nil {
		return nil, err
	}
	structure, ok := doc.TeamStructure[teamID]
	if !ok {
		return []*models.TreeItem{}, nil
	}
	return structure.Items, nil
}

// FindItem locates one item anywhere in the team's tree.
func (s *TeamService) FindItem(ctx context.Context, teamID, itemID string) (*models.TreeItem, error) {
	items, err := s.Structure(ctx, teamID)
	if err != nil {
		return nil, err
	}
	item := tree.FindItemByID(items, itemID)
	if item == nil {
		return nil, apperrors.NewNotFound("Item %s not found", itemID)
	}
	return item, nil
}

// FindItemWithParent locates one item plus its parent folder and index.
func (s *TeamService) FindItemWithParent(ctx context.Context, teamID, itemID string) (*tree.Location, error) {
	items, err := s.Structure(ctx, teamID)
	if err != nil {
		return nil, err
	}
	loc := tree.FindItemWithParent(items, itemID)
	if loc == nil {
		return nil, apperrors.NewNotFound("Item %s not found", itemID)
	}
	return loc, nil
}
