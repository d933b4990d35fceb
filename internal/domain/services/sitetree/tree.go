package sitetree

import (
	"context"

	"sitetree/internal/domain/models/sitetree"
)

// TreeOptions controls how the site tree is walked
type TreeOptions struct {
	ShowAll              bool           `json:"show_all"`
	Stage                sitetree.Stage `json:"stage"`
	OnlyDeletedFromStage bool           `json:"only_deleted_from_stage"`
	MaxDepth             int            `json:"max_depth"`
}

// TreeService renders the site tree for the CMS
type TreeService interface {
	// TreeView renders the whole tree from the root level
	TreeView(ctx context.Context, rc RequestContext, opts TreeOptions) ([]*sitetree.TreeNode, error)

	// Subtree renders the tree below one page
	Subtree(ctx context.Context, rc RequestContext, pageID string, opts TreeOptions) (*sitetree.TreeNode, error)

	// Children lists the direct children of a page without nesting
	Children(ctx context.Context, rc RequestContext, pageID string, opts TreeOptions) ([]sitetree.Page, error)
}
