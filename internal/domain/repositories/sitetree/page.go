package sitetree

import (
	"context"

	"sitetree/internal/domain/models/sitetree"
)

// ChildQuery selects the direct children of a parent page
type ChildQuery struct {
	ParentID *string // nil = root level
	// ExcludeID drops the parent itself when it shows up as its own child
	ExcludeID       string
	Stage           sitetree.Stage
	Mode            sitetree.LiveMode // only meaningful for StageLive
	OnlyShowInMenus bool
}

// PageRepository defines data access operations for site tree pages.
// Writes go to the draft stage; Publish copies a draft row into the live stage.
type PageRepository interface {
	// Create inserts a draft page, filling ID and timestamps
	Create(ctx context.Context, page *sitetree.Page) error

	// GetByID retrieves a page from the given stage
	GetByID(ctx context.Context, id string, stage sitetree.Stage) (*sitetree.Page, error)

	// Update writes a draft page
	Update(ctx context.Context, page *sitetree.Page) error

	// ChildrenOf lists direct children ordered by sort, then creation time
	ChildrenOf(ctx context.Context, q ChildQuery) ([]sitetree.Page, error)

	// Publish copies the draft row into the live stage (insert or overwrite)
	Publish(ctx context.Context, id string) error

	// Unpublish removes the live row, keeping the draft
	Unpublish(ctx context.Context, id string) error

	// DeleteFromStage removes the draft row; a live row survives as "removed from stage"
	DeleteFromStage(ctx context.Context, id string) error
}
