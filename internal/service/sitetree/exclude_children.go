package sitetree

import (
	"context"
	"log/slog"

	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
)

// adminTreeActions are the CMS actions that render the site tree
var adminTreeActions = map[string]struct{}{
	sitetreeSvc.ActionTreeView:   {},
	sitetreeSvc.ActionGetSubtree: {},
}

// ExcludeChildren decorates a Hierarchy and hides children whose page type is
// listed in the parent type's excluded_children (subtypes included) while the
// CMS is browsing the site tree. Any other action sees every child.
type ExcludeChildren struct {
	base     sitetreeSvc.Hierarchy
	types    sitetreeSvc.TypeRegistry
	recorder ExclusionRecorder
	logger   *slog.Logger
}

// ExclusionRecorder is notified whenever children are hidden
type ExclusionRecorder interface {
	ChildrenExcluded(parentType string, n int)
}

// ExcludeChildrenOption configures optional ExcludeChildren behaviour
type ExcludeChildrenOption func(*ExcludeChildren)

// WithExclusionRecorder reports every non-empty exclusion to rec
func WithExclusionRecorder(rec ExclusionRecorder) ExcludeChildrenOption {
	return func(f *ExcludeChildren) {
		f.recorder = rec
	}
}

// NewExcludeChildren wraps base with excluded_children filtering
func NewExcludeChildren(base sitetreeSvc.Hierarchy, types sitetreeSvc.TypeRegistry, logger *slog.Logger, opts ...ExcludeChildrenOption) *ExcludeChildren {
	f := &ExcludeChildren{
		base:   base,
		types:  types,
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ sitetreeSvc.ChildLister = (*ExcludeChildren)(nil)

// ResolveExcludedTypes expands the node type's excluded_children into the set
// of type names to hide. Recomputed on every call so runtime configuration
// changes apply immediately.
func (f *ExcludeChildren) ResolveExcludedTypes(node *models.Page) map[string]struct{} {
	excluded := make(map[string]struct{})
	for _, name := range f.types.ExcludedChildren(node.ClassName) {
		for _, typeName := range f.types.SubtypesOf(name) {
			excluded[typeName] = struct{}{}
		}
	}
	return excluded
}

// FilterIfAdministrative drops excluded children when rc carries a tree
// browsing action and returns children untouched otherwise. Order is kept.
func (f *ExcludeChildren) FilterIfAdministrative(node *models.Page, children []models.Page, rc sitetreeSvc.RequestContext) []models.Page {
	if !isAdminTreeAction(rc) {
		return children
	}

	excluded := f.ResolveExcludedTypes(node)
	if len(excluded) == 0 {
		return children
	}

	filtered := make([]models.Page, 0, len(children))
	for _, child := range children {
		if _, hide := excluded[child.ClassName]; hide {
			continue
		}
		filtered = append(filtered, child)
	}

	if removed := len(children) - len(filtered); removed > 0 {
		f.logger.Debug("excluded children hidden from tree",
			"parent_id", node.ID,
			"parent_type", node.ClassName,
			"removed", removed,
			"remaining", len(filtered),
		)
		if f.recorder != nil {
			f.recorder.ChildrenExcluded(node.ClassName, removed)
		}
	}

	return filtered
}

// ListStagedChildren lists draft children through the base hierarchy, then filters
func (f *ExcludeChildren) ListStagedChildren(ctx context.Context, node *models.Page, includeHidden bool, rc sitetreeSvc.RequestContext) ([]models.Page, error) {
	children, err := f.base.StageChildren(ctx, node, includeHidden)
	if err != nil {
		return nil, err
	}
	return f.FilterIfAdministrative(node, children, rc), nil
}

// ListLiveChildren lists live children through the base hierarchy, then filters.
// A CapabilityMissingError from the base is returned as is.
func (f *ExcludeChildren) ListLiveChildren(ctx context.Context, node *models.Page, includeHidden, onlyRemovedFromStage bool, rc sitetreeSvc.RequestContext) ([]models.Page, error) {
	children, err := f.base.LiveChildren(ctx, node, includeHidden, onlyRemovedFromStage)
	if err != nil {
		return nil, err
	}
	return f.FilterIfAdministrative(node, children, rc), nil
}

func isAdminTreeAction(rc sitetreeSvc.RequestContext) bool {
	if rc == nil {
		return false
	}
	action, ok := rc.Action()
	if !ok {
		return false
	}
	_, admin := adminTreeActions[action]
	return admin
}
