package sitetree

// TreeNode is a page rendered into the admin site tree, with nested children
type TreeNode struct {
	ID          string      `json:"id"`
	ParentID    *string     `json:"parent_id"`
	ClassName   string      `json:"class_name"`
	Title       string      `json:"title"`
	ShowInMenus bool        `json:"show_in_menus"`
	Children    []*TreeNode `json:"children"`
	// Truncated is set when MaxDepth stopped the walk before this node's children were loaded
	Truncated bool `json:"truncated,omitempty"`
}

// NewTreeNode copies the display fields of a page into a tree node
func NewTreeNode(p Page) *TreeNode {
	return &TreeNode{
		ID:          p.ID,
		ParentID:    p.ParentID,
		ClassName:   p.ClassName,
		Title:       p.Title,
		ShowInMenus: p.ShowInMenus,
		Children:    []*TreeNode{},
	}
}
