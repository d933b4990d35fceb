package sitetree

import (
	"time"
)

// Stage selects which copy of the site a query reads from
type Stage string

const (
	StageDraft Stage = "draft" // working copy edited in the CMS
	StageLive  Stage = "live"  // published snapshot
)

// LiveMode selects which live rows a live listing returns
type LiveMode string

const (
	// LiveModePresent returns every page present in the live snapshot
	LiveModePresent LiveMode = "present"
	// LiveModeRemovedFromStage returns live pages whose draft row was deleted
	LiveModeRemovedFromStage LiveMode = "removed_from_stage"
)

// Page is a node of the site tree
type Page struct {
	ID          string    `json:"id" db:"id"`
	ParentID    *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	ClassName   string    `json:"class_name" db:"class_name"`
	Title       string    `json:"title" db:"title"`
	URLSegment  string    `json:"url_segment" db:"url_segment"`
	ShowInMenus bool      `json:"show_in_menus" db:"show_in_menus"`
	Sort        int       `json:"sort" db:"sort"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the page sits at the top of the tree
func (p *Page) IsRoot() bool {
	return p.ParentID == nil
}
