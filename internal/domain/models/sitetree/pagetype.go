package sitetree

// PageType describes one entry of the page type hierarchy.
// Subtype relationships are expressed through Parent.
type PageType struct {
	Name             string   `yaml:"name" json:"name"`
	Parent           string   `yaml:"parent,omitempty" json:"parent,omitempty"`
	Versioned        bool     `yaml:"versioned" json:"versioned"`
	ShowInMenus      bool     `yaml:"show_in_menus" json:"show_in_menus"`
	ExcludedChildren []string `yaml:"excluded_children,omitempty" json:"excluded_children"`
}
