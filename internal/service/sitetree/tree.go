package sitetree

import (
	"context"
	"fmt"
	"log/slog"

	"sitetree/internal/config"
	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
)

// DefaultRootType is the page type of the virtual node above root-level pages
const DefaultRootType = "SiteTree"

// treeService implements the TreeService interface
type treeService struct {
	pageRepo sitetreeRepo.PageRepository
	lister   sitetreeSvc.ChildLister
	rootType string
	maxDepth int
	logger   *slog.Logger
}

// NewTreeService creates a new tree service.
// maxDepth <= 0 falls back to config.DefaultTreeMaxDepth.
func NewTreeService(
	pageRepo sitetreeRepo.PageRepository,
	lister sitetreeSvc.ChildLister,
	rootType string,
	maxDepth int,
	logger *slog.Logger,
) sitetreeSvc.TreeService {
	if rootType == "" {
		rootType = DefaultRootType
	}
	if maxDepth <= 0 {
		maxDepth = config.DefaultTreeMaxDepth
	}
	return &treeService{
		pageRepo: pageRepo,
		lister:   lister,
		rootType: rootType,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// TreeView renders the tree from the root level
func (s *treeService) TreeView(ctx context.Context, rc sitetreeSvc.RequestContext, opts sitetreeSvc.TreeOptions) ([]*models.TreeNode, error) {
	opts = s.normalize(opts)
	root := &models.Page{ClassName: s.rootType}

	nodes, count, err := s.walk(ctx, rc, root, opts, 1)
	if err != nil {
		return nil, err
	}

	s.logger.Info("site tree built",
		"stage", opts.Stage,
		"page_count", count,
		"max_depth", opts.MaxDepth,
	)

	return nodes, nil
}

// Subtree renders the tree below pageID
func (s *treeService) Subtree(ctx context.Context, rc sitetreeSvc.RequestContext, pageID string, opts sitetreeSvc.TreeOptions) (*models.TreeNode, error) {
	opts = s.normalize(opts)

	page, err := s.pageRepo.GetByID(ctx, pageID, s.lookupStage(opts))
	if err != nil {
		return nil, err
	}

	node := models.NewTreeNode(*page)
	children, count, err := s.walk(ctx, rc, page, opts, 1)
	if err != nil {
		return nil, err
	}
	node.Children = children

	s.logger.Debug("subtree built",
		"page_id", pageID,
		"stage", opts.Stage,
		"page_count", count,
	)

	return node, nil
}

// Children lists the direct children of pageID; "" lists root-level pages
func (s *treeService) Children(ctx context.Context, rc sitetreeSvc.RequestContext, pageID string, opts sitetreeSvc.TreeOptions) ([]models.Page, error) {
	opts = s.normalize(opts)

	parent := &models.Page{ClassName: s.rootType}
	if pageID != "" {
		page, err := s.pageRepo.GetByID(ctx, pageID, s.lookupStage(opts))
		if err != nil {
			return nil, err
		}
		parent = page
	}

	return s.list(ctx, rc, parent, opts)
}

// walk loads children of parent and recurses until MaxDepth.
// Returns the nodes and how many pages were loaded.
func (s *treeService) walk(ctx context.Context, rc sitetreeSvc.RequestContext, parent *models.Page, opts sitetreeSvc.TreeOptions, depth int) ([]*models.TreeNode, int, error) {
	children, err := s.list(ctx, rc, parent, opts)
	if err != nil {
		return nil, 0, err
	}

	count := len(children)
	nodes := make([]*models.TreeNode, 0, len(children))
	for i := range children {
		child := &children[i]
		node := models.NewTreeNode(*child)

		if depth >= opts.MaxDepth {
			node.Truncated = true
		} else {
			grandchildren, n, err := s.walk(ctx, rc, child, opts, depth+1)
			if err != nil {
				return nil, 0, err
			}
			node.Children = grandchildren
			count += n
		}

		nodes = append(nodes, node)
	}

	return nodes, count, nil
}

func (s *treeService) list(ctx context.Context, rc sitetreeSvc.RequestContext, parent *models.Page, opts sitetreeSvc.TreeOptions) ([]models.Page, error) {
	if opts.Stage == models.StageLive {
		return s.lister.ListLiveChildren(ctx, parent, opts.ShowAll, opts.OnlyDeletedFromStage, rc)
	}
	return s.lister.ListStagedChildren(ctx, parent, opts.ShowAll, rc)
}

// lookupStage is where the starting page is read from. Pages deleted from
// draft only exist in live, so diff listings look them up there.
func (s *treeService) lookupStage(opts sitetreeSvc.TreeOptions) models.Stage {
	if opts.Stage == models.StageLive {
		return models.StageLive
	}
	return models.StageDraft
}

func (s *treeService) normalize(opts sitetreeSvc.TreeOptions) sitetreeSvc.TreeOptions {
	if opts.Stage == "" {
		opts.Stage = models.StageDraft
	}
	if opts.MaxDepth <= 0 || opts.MaxDepth > s.maxDepth {
		opts.MaxDepth = s.maxDepth
	}
	return opts
}

// ValidateStage rejects unknown stage names coming from requests
func ValidateStage(stage string) (models.Stage, error) {
	switch models.Stage(stage) {
	case "", models.StageDraft:
		return models.StageDraft, nil
	case models.StageLive:
		return models.StageLive, nil
	default:
		return "", fmt.Errorf("%w: unknown stage %q", domain.ErrValidation, stage)
	}
}
