package config

const (
	// MaxPageTitleLength is the maximum length for page titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxPageTitleLength = 255

	// MaxURLSegmentLength is the maximum length for a page URL segment.
	MaxURLSegmentLength = 255

	// MaxPageTypeNameLength is the maximum length for page type names.
	MaxPageTypeNameLength = 128

	// DefaultTreeMaxDepth bounds how many levels a tree render walks.
	// Deeper hierarchies are cut off and loaded lazily via getsubtree.
	DefaultTreeMaxDepth = 10
)
