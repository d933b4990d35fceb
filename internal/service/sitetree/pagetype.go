package sitetree

import (
	"context"
	"fmt"
	"log/slog"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/pagetypes"
)

type pageTypeService struct {
	registry *pagetypes.Registry
	logger   *slog.Logger
}

// NewPageTypeService creates a new page type service
func NewPageTypeService(registry *pagetypes.Registry, logger *slog.Logger) sitetreeSvc.PageTypeService {
	return &pageTypeService{
		registry: registry,
		logger:   logger,
	}
}

// ListPageTypes returns every registered type in declaration order
func (s *pageTypeService) ListPageTypes(ctx context.Context) []models.PageType {
	return s.registry.List()
}

// SetExcludedChildren overrides excluded_children of a type at runtime
func (s *pageTypeService) SetExcludedChildren(ctx context.Context, name string, excluded []string) (*models.PageType, error) {
	if !s.registry.Has(name) {
		return nil, fmt.Errorf("page type %s: %w", name, domain.ErrNotFound)
	}

	if err := s.registry.SetExcludedChildren(name, excluded); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	pt, _ := s.registry.Get(name)

	s.logger.Info("excluded children updated",
		"page_type", name,
		"excluded_children", pt.ExcludedChildren,
	)

	return pt, nil
}
