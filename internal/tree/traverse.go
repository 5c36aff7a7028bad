// Package tree implements the team structure engine: pure traversal
// primitives over a team's TreeItem hierarchy plus the mutation operations
// (folder CRUD, item moves) that persist through the config store.
package tree

import (
	"github.com/scstanton20/tago-analysis-worker-sub009/internal/models"
)

// Location pinpoints an item inside its immediate container. Parent is nil
// for root-level items; Index is the position within the container's slice.
type Location struct {
	Parent *models.TreeItem
	Item   *models.TreeItem
	Index  int
}

// Traverse walks items depth-first in pre-order (a folder before its
// children) and calls visit with each item, its immediate parent (nil at
// root), and its index within that parent. Traversal stops as soon as visit
// reports found. This is the single primitive all lookups build on.
func Traverse[T any](items []*models.TreeItem, visit func(item, parent *models.TreeItem, index int) (T, bool)) (T, bool) {
	return traverse(items, nil, visit)
}

func traverse[T any](items []*models.TreeItem, parent *models.TreeItem, visit func(item, parent *models.TreeItem, index int) (T, bool)) (T, bool) {
	for i, item := range items {
		if result, found := visit(item, parent, i); found {
			return result, true
		}
		if item.IsFolder() {
			if result, found := traverse(item.Items, item, visit); found {
				return result, true
			}
		}
	}
	var zero T
	return zero, false
}

// FindItemByID returns the first item whose id matches, or nil.
func FindItemByID(items []*models.TreeItem, id string) *models.TreeItem {
	found, ok := Traverse(items, func(item, _ *models.TreeItem, _ int) (*models.TreeItem, bool) {
		if item.ID == id {
			return item, true
		}
		return nil, false
	})
	if !ok {
		return nil
	}
	return found
}

// FindItemWithParent locates an item together with its immediate container
// and positional index, as needed for splice-style mutation. Returns nil
// when the id is absent.
func FindItemWithParent(items []*models.TreeItem, id string) *Location {
	loc, ok := Traverse(items, func(item, parent *models.TreeItem, index int) (Location, bool) {
		if item.ID == id {
			return Location{Parent: parent, Item: item, Index: index}, true
		}
		return Location{}, false
	})
	if !ok {
		return nil
	}
	return &loc
}

// ContainsID reports whether id occurs anywhere within the subtree rooted at
// the given items.
func ContainsID(items []*models.TreeItem, id string) bool {
	return FindItemByID(items, id) != nil
}

// CollectAnalysisIDs returns the ids of every analysis reference in the
// tree, in traversal order.
func CollectAnalysisIDs(items []*models.TreeItem) []string {
	var ids []string
	Traverse(items, func(item, _ *models.TreeItem, _ int) (struct{}, bool) {
		if item.Type == models.ItemTypeAnalysis {
			ids = append(ids, item.ID)
		}
		return struct{}{}, false
	})
	return ids
}

// spliceOut removes the element at index from the slice owned by container.
func spliceOut(container *[]*models.TreeItem, index int) {
	items := *container
	*container = append(items[:index], items[index+1:]...)
}

// spliceIn inserts item at position, clamping position into range.
func spliceIn(container *[]*models.TreeItem, item *models.TreeItem, position int) {
	items := *container
	if position < 0 || position > len(items) {
		position = len(items)
	}
	items = append(items, nil)
	copy(items[position+1:], items[position:])
	items[position] = item
	*container = items
}
