package services

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/tree"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
)

// fakeAuthority is an in-memory stand-in for the membership system.
type fakeAuthority struct {
	org   *models.Organization
	teams map[string]*models.Team
	fail  error
}

func newFakeAuthority() *fakeAuthority {
	org := &models.Organization{Name: "Main", Slug: "main"}
	org.ID = uuid.NewString()

	system := &models.Team{
		Name:           "Uncategorized",
		OrganizationID: org.ID,
		Color:          "#9e9e9e",
		IsSystem:       true,
	}
	system.ID = models.UncategorizedTeamID

	return &fakeAuthority{
		org:   org,
		teams: map[string]*models.Team{system.ID: system},
	}
}

func (f *fakeAuthority) MainOrganization(ctx context.Context) (*models.Organization, error) {
	return f.org, f.fail
}

func (f *fakeAuthority) ListTeams(ctx context.Context, organizationID string) ([]models.Team, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var teams []models.Team
	for _, team := range f.teams {
		teams = append(teams, *team)
	}
	sort.Slice(teams, func(i, j int) bool {
		if teams[i].OrderIndex != teams[j].OrderIndex {
			return teams[i].OrderIndex < teams[j].OrderIndex
		}
		return teams[i].ID < teams[j].ID
	})
	return teams, nil
}

func (f *fakeAuthority) GetTeam(ctx context.Context, teamID, organizationID string) (*models.Team, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	team, ok := f.teams[teamID]
	if !ok {
		return nil, nil
	}
	return team, nil
}

func (f *fakeAuthority) CreateTeam(ctx context.Context, team *models.Team) error {
	if f.fail != nil {
		return f.fail
	}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeAuthority) UpdateTeam(ctx context.Context, teamID, organizationID string, updates map[string]any) (*models.Team, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	team := f.teams[teamID]
	if name, ok := updates["name"].(string); ok {
		team.Name = name
	}
	if color, ok := updates["color"].(string); ok {
		team.Color = color
	}
	if order, ok := updates["order_index"].(int); ok {
		team.OrderIndex = order
	}
	return team, nil
}

func (f *fakeAuthority) RemoveTeam(ctx context.Context, teamID, organizationID string) error {
	if f.fail != nil {
		return f.fail
	}
	delete(f.teams, teamID)
	return nil
}

func (f *fakeAuthority) ReorderTeams(ctx context.Context, organizationID string, teamIDs []string) ([]models.Team, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	for i, id := range teamIDs {
		if team, ok := f.teams[id]; ok {
			team.OrderIndex = i
		}
	}
	return f.ListTeams(ctx, organizationID)
}

func newTeamFixture(t *testing.T) (*TeamService, *AnalysisService, *fakeAuthority) {
	t.Helper()
	analyses := newAnalysisService(t)
	authority := newFakeAuthority()

	svc, err := NewTeamService(authority)
	require.NoError(t, err)
	require.NoError(t, svc.Initialize(context.Background(), analyses))
	return svc, analyses, authority
}

func TestTeamServiceInitialize(t *testing.T) {
	analyses := newAnalysisService(t)
	authority := newFakeAuthority()

	svc, err := NewTeamService(authority)
	require.NoError(t, err)

	// Operations before Initialize fail cleanly.
	_, err = svc.GetAllTeams(context.Background())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInitialization))

	require.NoError(t, svc.Initialize(context.Background(), analyses))
	// Second call is a no-op.
	require.NoError(t, svc.Initialize(context.Background(), analyses))

	teams, err := svc.GetAllTeams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.True(t, teams[0].IsSystem)
}

func TestTeamServiceInitializeWithoutOrganization(t *testing.T) {
	analyses := newAnalysisService(t)
	authority := newFakeAuthority()
	authority.org = nil

	svc, err := NewTeamService(authority)
	require.NoError(t, err)

	err = svc.Initialize(context.Background(), analyses)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInitialization))
	assert.Contains(t, err.Error(), "Main organization not found")
}

func TestTeamServiceCreateTeam(t *testing.T) {
	svc, _, _ := newTeamFixture(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "Platform", Color: "#ff0000"})
	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)
	assert.Equal(t, 1, team.OrderIndex)

	_, err = svc.CreateTeam(ctx, CreateTeamInput{Name: "Platform"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	// Different case is a different name.
	_, err = svc.CreateTeam(ctx, CreateTeamInput{Name: "platform"})
	require.NoError(t, err)
}

func TestTeamServiceCreateTeamUpstreamFailure(t *testing.T) {
	svc, _, authority := newTeamFixture(t)

	authority.fail = errors.New("connection refused")
	_, err := svc.CreateTeam(context.Background(), CreateTeamInput{Name: "Doomed"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUpstream))
}

func TestTeamServiceUpdateTeam(t *testing.T) {
	svc, _, _ := newTeamFixture(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "Ops"})
	require.NoError(t, err)

	name := "Operations"
	updated, err := svc.UpdateTeam(ctx, team.ID, UpdateTeamInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Operations", updated.Name)

	_, err = svc.UpdateTeam(ctx, team.ID, UpdateTeamInput{})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Contains(t, err.Error(), "No valid fields to update")

	_, err = svc.UpdateTeam(ctx, "missing", UpdateTeamInput{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTeamServiceDeleteTeamReassignsAnalyses(t *testing.T) {
	svc, analyses, authority := newTeamFixture(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "Doomed"})
	require.NoError(t, err)

	record, err := analyses.Create(ctx, CreateAnalysisInput{Name: "orphan", Content: "x", TeamID: team.ID})
	require.NoError(t, err)

	result, err := svc.DeleteTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, result.Deleted)
	assert.Equal(t, "Doomed", result.Name)
	assert.NotContains(t, authority.teams, team.ID)

	moved, err := analyses.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UncategorizedTeamID, moved.TeamID)

	items, err := svc.Structure(ctx, models.UncategorizedTeamID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, record.ID, items[0].ID)
}

func TestTeamServiceDeleteSystemTeam(t *testing.T) {
	svc, _, _ := newTeamFixture(t)

	_, err := svc.DeleteTeam(context.Background(), models.UncategorizedTeamID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidOp))
	assert.Contains(t, err.Error(), "Cannot delete system team")
}

func TestTeamServiceDeleteMissingTeam(t *testing.T) {
	svc, _, _ := newTeamFixture(t)

	_, err := svc.DeleteTeam(context.Background(), "nope")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTeamServiceMoveAnalysisToTeam(t *testing.T) {
	svc, analyses, _ := newTeamFixture(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "Data"})
	require.NoError(t, err)
	record, err := analyses.Create(ctx, CreateAnalysisInput{Name: "mover", Content: "x"})
	require.NoError(t, err)

	result, err := svc.MoveAnalysisToTeam(ctx, record.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UncategorizedTeamID, result.From)
	assert.Equal(t, team.ID, result.To)

	// The tree reference followed the record.
	items, err := svc.Structure(ctx, models.UncategorizedTeamID)
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = svc.Structure(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, record.ID, items[0].ID)

	// Moving to the current team is a no-op.
	result, err = svc.MoveAnalysisToTeam(ctx, record.ID, team.ID)
	require.NoError(t, err)
	assert.Equal(t, team.ID, result.From)
	assert.Equal(t, team.ID, result.To)

	_, err = svc.MoveAnalysisToTeam(ctx, record.ID, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTeamServiceEnsureAnalysisHasTeam(t *testing.T) {
	svc, analyses, _ := newTeamFixture(t)
	ctx := context.Background()

	record, err := analyses.Create(ctx, CreateAnalysisInput{Name: "legacy", Content: "x"})
	require.NoError(t, err)

	// Simulate a record written before team assignment existed.
	_, err = analyses.UpdateConfig(func(doc *models.ConfigDocument) error {
		doc.Analyses[record.ID].TeamID = ""
		tree.RemoveItemFromDocument(doc, models.UncategorizedTeamID, record.ID)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, svc.EnsureAnalysisHasTeam(ctx, record.ID))

	fixed, err := analyses.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UncategorizedTeamID, fixed.TeamID)

	items, err := svc.Structure(ctx, models.UncategorizedTeamID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestTeamServiceAnalysisCounts(t *testing.T) {
	svc, analyses, _ := newTeamFixture(t)
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "Counted"})
	require.NoError(t, err)
	for _, name := range []string{"one", "two"} {
		_, err := analyses.Create(ctx, CreateAnalysisInput{Name: name, Content: "x", TeamID: team.ID})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, svc.GetAnalysisCountByTeamID(ctx, team.ID))
	assert.Equal(t, 0, svc.GetAnalysisCountByTeamID(ctx, "missing"))

	records, err := svc.GetAnalysesByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	names := []string{records[0].Name, records[1].Name}
	assert.ElementsMatch(t, []string{"one", "two"}, names)
}

func TestTeamServiceReorderTeams(t *testing.T) {
	svc, _, _ := newTeamFixture(t)
	ctx := context.Background()

	a, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "B"})
	require.NoError(t, err)

	teams, err := svc.ReorderTeams(ctx, []string{b.ID, a.ID, models.UncategorizedTeamID})
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, b.ID, teams[0].ID)
	assert.Equal(t, a.ID, teams[1].ID)

	_, err = svc.ReorderTeams(ctx, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestTeamServiceFolderPassthrough(t *testing.T) {
	svc, _, _ := newTeamFixture(t)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, models.UncategorizedTeamID, tree.CreateFolderInput{Name: "drafts"})
	require.NoError(t, err)
	assert.True(t, folder.IsFolder())

	found, err := svc.FindItem(ctx, models.UncategorizedTeamID, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, found.ID)

	loc, err := svc.FindItemWithParent(ctx, models.UncategorizedTeamID, folder.ID)
	require.NoError(t, err)
	assert.Nil(t, loc.Parent)
	assert.Equal(t, 0, loc.Index)

	_, err = svc.CreateFolder(ctx, "missing", tree.CreateFolderInput{Name: "nope"})
	assert.True(t, apperrors.IsNotFound(err))

	result, err := svc.DeleteFolder(ctx, models.UncategorizedTeamID, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, result.Deleted)
}

func TestTeamServiceDeleteTeamCompactsOrder(t *testing.T) {
	svc, _, authority := newTeamFixture(t)
	ctx := context.Background()

	a, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateTeam(ctx, CreateTeamInput{Name: "B"})
	require.NoError(t, err)
	require.Equal(t, 1, a.OrderIndex)
	require.Equal(t, 2, b.OrderIndex)

	_, err = svc.DeleteTeam(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, authority.teams[b.ID].OrderIndex)
}
