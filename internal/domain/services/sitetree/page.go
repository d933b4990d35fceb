package sitetree

import (
	"context"

	"sitetree/internal/domain/models/sitetree"
)

// PageService handles page business logic
type PageService interface {
	CreatePage(ctx context.Context, req *CreatePageRequest) (*sitetree.Page, error)

	// GetPage retrieves a page from the given stage
	GetPage(ctx context.Context, id string, stage sitetree.Stage) (*sitetree.Page, error)

	// UpdatePage edits or moves a draft page
	UpdatePage(ctx context.Context, id string, req *UpdatePageRequest) (*sitetree.Page, error)

	// PublishPage copies the draft page to live; the page type must be versioned
	PublishPage(ctx context.Context, id string) (*sitetree.Page, error)

	// UnpublishPage removes a page from live
	UnpublishPage(ctx context.Context, id string) error

	// DeletePage removes a page from the draft stage
	DeletePage(ctx context.Context, id string) error
}

// CreatePageRequest represents a page creation request
type CreatePageRequest struct {
	ParentID    *string `json:"parent_id,omitempty"` // null for root
	ClassName   string  `json:"class_name"`
	Title       string  `json:"title"`
	URLSegment  string  `json:"url_segment,omitempty"`
	ShowInMenus *bool   `json:"show_in_menus,omitempty"` // defaults to true
	Sort        int     `json:"sort"`
}

// OptionalParent tracks tri-state semantics for moving a page (RFC 7396 PATCH).
// Transport-agnostic - the handler maps it from httputil.OptionalString.
//   - Present=false: don't move
//   - Present=true, Value=nil: move to root
//   - Present=true, Value=&id: move under id
type OptionalParent struct {
	Present bool
	Value   *string
}

// UpdatePageRequest represents a page update request; nil fields are left unchanged
type UpdatePageRequest struct {
	Title       *string
	URLSegment  *string
	ShowInMenus *bool
	Sort        *int
	ParentID    OptionalParent
}
