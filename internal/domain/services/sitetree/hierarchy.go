package sitetree

import (
	"context"

	"sitetree/internal/domain/models/sitetree"
)

// Request actions the CMS issues while browsing the site tree
const (
	ActionTreeView   = "treeview"
	ActionGetSubtree = "getsubtree"
	ActionChildren   = "children"
)

// RequestContext exposes the action of the in-flight request.
// It is passed explicitly to every listing call.
type RequestContext interface {
	// Action returns the current action, false when there is none
	Action() (string, bool)
}

// Action is a RequestContext holding a fixed action name; "" means no action
type Action string

func (a Action) Action() (string, bool) {
	return string(a), a != ""
}

// TypeRegistry answers questions about the page type hierarchy
type TypeRegistry interface {
	// SubtypesOf returns name plus every registered subtype
	SubtypesOf(name string) []string
	// SupportsVersioning reports whether pages of this type have a live stage
	SupportsVersioning(name string) bool
	// HasShowInMenus reports whether the type declares the show-in-menus flag
	HasShowInMenus(name string) bool
	// ExcludedChildren returns the configured excluded_children of a type
	ExcludedChildren(name string) []string
}

// Hierarchy lists the direct children of a page
type Hierarchy interface {
	// StageChildren lists children from the draft stage.
	// showAll includes pages hidden from menus.
	StageChildren(ctx context.Context, node *sitetree.Page, showAll bool) ([]sitetree.Page, error)

	// LiveChildren lists children from the live stage, or only those removed
	// from the draft stage when onlyDeletedFromStage is set.
	// Fails with domain.CapabilityMissingError for unversioned page types.
	LiveChildren(ctx context.Context, node *sitetree.Page, showAll, onlyDeletedFromStage bool) ([]sitetree.Page, error)
}

// StageAugmenter may change the draft children candidates before filtering.
// It receives the already loaded candidates and returns the new set.
type StageAugmenter interface {
	AugmentStageChildren(ctx context.Context, node *sitetree.Page, children []sitetree.Page, showAll bool) ([]sitetree.Page, error)
}

// StageAugmenterFunc adapts a function to StageAugmenter
type StageAugmenterFunc func(ctx context.Context, node *sitetree.Page, children []sitetree.Page, showAll bool) ([]sitetree.Page, error)

func (f StageAugmenterFunc) AugmentStageChildren(ctx context.Context, node *sitetree.Page, children []sitetree.Page, showAll bool) ([]sitetree.Page, error) {
	return f(ctx, node, children, showAll)
}

// ChildLister is the request-aware child listing used by the admin tree.
// Children of excluded page types are hidden while browsing the tree.
type ChildLister interface {
	ListStagedChildren(ctx context.Context, node *sitetree.Page, includeHidden bool, rc RequestContext) ([]sitetree.Page, error)
	ListLiveChildren(ctx context.Context, node *sitetree.Page, includeHidden, onlyRemovedFromStage bool, rc RequestContext) ([]sitetree.Page, error)
}
