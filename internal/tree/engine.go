package tree

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
	apperrors "github.com/scstanton20/tago-analysis-worker-sub009/pkg/errors"
	"github.com/scstanton20/tago-analysis-worker-sub009/pkg/logger"
)

// RootTarget names the team root container in move results and is accepted
// as a move target alongside the empty string.
const RootTarget = "root"

// ConfigSource is the narrow slice of the config store the engine mutates
// through. Both the store itself and the analysis service façade satisfy it.
type ConfigSource interface {
	GetConfig() (*models.ConfigDocument, error)
	UpdateConfig(mutate func(*models.ConfigDocument) error) (*models.ConfigDocument, error)
}

// Engine mutates a team's folder tree. It holds no tree state of its own:
// every operation reads the document through the config source, mutates the
// in-memory tree, and persists the whole document back.
type Engine struct {
	source ConfigSource
	log    *zap.Logger
}

// NewEngine builds a structure engine over the given config source.
func NewEngine(source ConfigSource) (*Engine, error) {
	if source == nil {
		return nil, errors.New("tree engine: config source is required")
	}
	return &Engine{
		source: source,
		log:    logger.WithModule("tree"),
	}, nil
}

// CreateFolderInput describes a new folder. ParentID empty means team root.
type CreateFolderInput struct {
	Name     string
	ParentID string
	Expanded bool
}

// UpdateFolderInput carries the mutable folder fields; nil fields are left
// unchanged.
type UpdateFolderInput struct {
	Name     *string
	Expanded *bool
}

// DeleteFolderResult reports a folder deletion.
type DeleteFolderResult struct {
	Deleted       string `json:"deleted"`
	ChildrenMoved int    `json:"childrenMoved"`
}

// MoveItemResult reports a completed move. To is "root" for the team root.
type MoveItemResult struct {
	Moved string `json:"moved"`
	To    string `json:"to"`
}

// CreateFolder appends a new folder to the team root or to the named parent
// folder and persists the document.
func (e *Engine) CreateFolder(teamID string, input CreateFolderInput) (*models.TreeItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidation("Folder name is required")
	}

	folder := models.NewFolder(name)
	folder.Expanded = input.Expanded

	_, err := e.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		structure := doc.EnsureStructure(teamID)

		if input.ParentID == "" {
			structure.Items = append(structure.Items, folder)
			return nil
		}

		parent := FindItemByID(structure.Items, input.ParentID)
		if parent == nil || !parent.IsFolder() {
			return apperrors.NewNotFound("Folder %s not found in team %s", input.ParentID, teamID)
		}
		parent.Items = append(parent.Items, folder)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("folder created",
		zap.String("team_id", teamID),
		zap.String("folder_id", folder.ID),
		zap.String("parent_id", input.ParentID),
	)
	return folder, nil
}

// UpdateFolder merges the provided fields into an existing folder.
func (e *Engine) UpdateFolder(teamID, folderID string, input UpdateFolderInput) (*models.TreeItem, error) {
	var updated *models.TreeItem

	_, err := e.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		structure := doc.TeamStructure[teamID]
		if structure == nil {
			return apperrors.NewNotFound("Folder %s not found in team %s", folderID, teamID)
		}

		folder := FindItemByID(structure.Items, folderID)
		if folder == nil || !folder.IsFolder() {
			return apperrors.NewNotFound("Folder %s not found in team %s", folderID, teamID)
		}

		if input.Name != nil {
			if name := strings.TrimSpace(*input.Name); name != "" {
				folder.Name = name
			}
		}
		if input.Expanded != nil {
			folder.Expanded = *input.Expanded
		}

		updated = folder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteFolder removes a folder and splices its direct children into the
// parent container at the folder's former position. Only one level is
// promoted; nested folders keep their own children.
func (e *Engine) DeleteFolder(teamID, folderID string) (*DeleteFolderResult, error) {
	result := &DeleteFolderResult{Deleted: folderID}

	_, err := e.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		structure := doc.TeamStructure[teamID]
		if structure == nil {
			return apperrors.NewNotFound("Folder %s not found in team %s", folderID, teamID)
		}

		loc := FindItemWithParent(structure.Items, folderID)
		if loc == nil || !loc.Item.IsFolder() {
			return apperrors.NewNotFound("Folder %s not found in team %s", folderID, teamID)
		}

		container := e.containerOf(structure, loc.Parent)
		children := loc.Item.Items
		result.ChildrenMoved = len(children)

		items := *container
		promoted := make([]*models.TreeItem, 0, len(items)-1+len(children))
		promoted = append(promoted, items[:loc.Index]...)
		promoted = append(promoted, children...)
		promoted = append(promoted, items[loc.Index+1:]...)
		*container = promoted
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("folder deleted",
		zap.String("team_id", teamID),
		zap.String("folder_id", folderID),
		zap.Int("children_moved", result.ChildrenMoved),
	)
	return result, nil
}

// MoveItem relocates an item into the target folder at the given position.
// An empty targetFolderID or the "root" sentinel moves the item to the team
// root, so the To value of an earlier result can be fed back in unchanged.
// Moving a folder into itself or into any of its own descendants is rejected.
func (e *Engine) MoveItem(teamID, itemID, targetFolderID string, position int) (*MoveItemResult, error) {
	if targetFolderID == RootTarget {
		targetFolderID = ""
	}

	result := &MoveItemResult{Moved: itemID, To: RootTarget}
	if targetFolderID != "" {
		result.To = targetFolderID
	}

	_, err := e.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		structure := doc.TeamStructure[teamID]
		if structure == nil {
			return apperrors.NewNotFound("Item %s not found in team %s", itemID, teamID)
		}

		loc := FindItemWithParent(structure.Items, itemID)
		if loc == nil {
			return apperrors.NewNotFound("Item %s not found in team %s", itemID, teamID)
		}

		if targetFolderID != "" {
			if targetFolderID == itemID {
				return apperrors.NewInvalidOperation("Cannot move folder into itself")
			}
			if loc.Item.IsFolder() && ContainsID(loc.Item.Items, targetFolderID) {
				return apperrors.NewInvalidOperation("Cannot move folder into its own descendant")
			}
		}

		source := e.containerOf(structure, loc.Parent)
		spliceOut(source, loc.Index)

		target := &structure.Items
		if targetFolderID != "" {
			folder := FindItemByID(structure.Items, targetFolderID)
			if folder == nil || !folder.IsFolder() {
				return apperrors.NewNotFound("Folder %s not found in team %s", targetFolderID, teamID)
			}
			target = &folder.Items
		}

		spliceIn(target, loc.Item, position)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("item moved",
		zap.String("team_id", teamID),
		zap.String("item_id", itemID),
		zap.String("to", result.To),
	)
	return result, nil
}

// AddItemToTeamStructure appends item to the team root or the named parent
// folder, lazily creating the team's structure on first use.
func (e *Engine) AddItemToTeamStructure(teamID string, item *models.TreeItem, parentID string) error {
	_, err := e.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		return addItem(doc, teamID, item, parentID)
	})
	return err
}

// RemoveItemFromTeamStructure splices out the analysis reference wherever it
// sits in the team's tree. A team without structure is a no-op, not an
// error.
func (e *Engine) RemoveItemFromTeamStructure(teamID, analysisID string) error {
	_, err := e.source.UpdateConfig(func(doc *models.ConfigDocument) error {
		removeItem(doc, teamID, analysisID)
		return nil
	})
	return err
}

// containerOf resolves the slice that owns an item: the team root when
// parent is nil, otherwise the parent folder's children.
func (e *Engine) containerOf(structure *models.TeamStructure, parent *models.TreeItem) *[]*models.TreeItem {
	if parent == nil {
		return &structure.Items
	}
	return &parent.Items
}

// addItem and removeItem operate on an already-loaded document so the team
// service can fold structure changes into a larger single update.

func addItem(doc *models.ConfigDocument, teamID string, item *models.TreeItem, parentID string) error {
	structure := doc.EnsureStructure(teamID)

	if parentID == "" {
		structure.Items = append(structure.Items, item)
		return nil
	}

	parent := FindItemByID(structure.Items, parentID)
	if parent == nil || !parent.IsFolder() {
		return apperrors.NewNotFound("Folder %s not found in team %s", parentID, teamID)
	}
	parent.Items = append(parent.Items, item)
	return nil
}

func removeItem(doc *models.ConfigDocument, teamID, itemID string) bool {
	structure := doc.TeamStructure[teamID]
	if structure == nil {
		return false
	}

	loc := FindItemWithParent(structure.Items, itemID)
	if loc == nil {
		return false
	}

	if loc.Parent == nil {
		spliceOut(&structure.Items, loc.Index)
	} else {
		spliceOut(&loc.Parent.Items, loc.Index)
	}
	return true
}

// AddItemToDocument exposes addItem for callers that batch multiple tree
// mutations into one config update.
func AddItemToDocument(doc *models.ConfigDocument, teamID string, item *models.TreeItem, parentID string) error {
	return addItem(doc, teamID, item, parentID)
}

// RemoveItemFromDocument exposes removeItem for batched updates. Reports
// whether anything was removed.
func RemoveItemFromDocument(doc *models.ConfigDocument, teamID, itemID string) bool {
	return removeItem(doc, teamID, itemID)
}
