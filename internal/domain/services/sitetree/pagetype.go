package sitetree

import (
	"context"

	"sitetree/internal/domain/models/sitetree"
)

// PageTypeService exposes the page type table and its runtime configuration
type PageTypeService interface {
	// ListPageTypes returns every registered type with its effective excluded_children
	ListPageTypes(ctx context.Context) []sitetree.PageType

	// SetExcludedChildren overrides excluded_children of a type at runtime
	SetExcludedChildren(ctx context.Context, name string, excluded []string) (*sitetree.PageType, error)
}
