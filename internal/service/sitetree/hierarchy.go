package sitetree

import (
	"context"
	"fmt"
	"log/slog"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
)

// hierarchy is the base child listing backed by the page repository
type hierarchy struct {
	pageRepo   sitetreeRepo.PageRepository
	types      sitetreeSvc.TypeRegistry
	augmenters []sitetreeSvc.StageAugmenter
	logger     *slog.Logger
}

// NewHierarchy creates the base child listing.
// Augmenters run in order on every StageChildren call.
func NewHierarchy(
	pageRepo sitetreeRepo.PageRepository,
	types sitetreeSvc.TypeRegistry,
	logger *slog.Logger,
	augmenters ...sitetreeSvc.StageAugmenter,
) sitetreeSvc.Hierarchy {
	return &hierarchy{
		pageRepo:   pageRepo,
		types:      types,
		augmenters: augmenters,
		logger:     logger,
	}
}

// StageChildren lists draft children. Hidden pages are dropped unless showAll,
// and only when the node's type declares the show-in-menus flag.
func (h *hierarchy) StageChildren(ctx context.Context, node *models.Page, showAll bool) ([]models.Page, error) {
	children, err := h.pageRepo.ChildrenOf(ctx, sitetreeRepo.ChildQuery{
		ParentID:        nodeID(node),
		ExcludeID:       node.ID,
		Stage:           models.StageDraft,
		OnlyShowInMenus: !showAll && h.types.HasShowInMenus(node.ClassName),
	})
	if err != nil {
		return nil, fmt.Errorf("list stage children of %s: %w", node.ID, err)
	}

	for _, augmenter := range h.augmenters {
		children, err = augmenter.AugmentStageChildren(ctx, node, children, showAll)
		if err != nil {
			return nil, fmt.Errorf("augment stage children of %s: %w", node.ID, err)
		}
	}

	return children, nil
}

// LiveChildren lists live children, or the ones deleted from draft.
// Unversioned page types have no live stage and fail before touching the store.
func (h *hierarchy) LiveChildren(ctx context.Context, node *models.Page, showAll, onlyDeletedFromStage bool) ([]models.Page, error) {
	if !h.types.SupportsVersioning(node.ClassName) {
		return nil, &domain.CapabilityMissingError{
			PageType:   node.ClassName,
			Capability: "versioning",
		}
	}

	mode := models.LiveModePresent
	if onlyDeletedFromStage {
		mode = models.LiveModeRemovedFromStage
	}

	children, err := h.pageRepo.ChildrenOf(ctx, sitetreeRepo.ChildQuery{
		ParentID:        nodeID(node),
		ExcludeID:       node.ID,
		Stage:           models.StageLive,
		Mode:            mode,
		OnlyShowInMenus: !showAll,
	})
	if err != nil {
		return nil, fmt.Errorf("list live children of %s: %w", node.ID, err)
	}

	return children, nil
}

// nodeID returns the parent key for a node; the zero page stands for the tree root
func nodeID(node *models.Page) *string {
	if node.ID == "" {
		return nil
	}
	id := node.ID
	return &id
}
