package sitetree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"sitetree/internal/config"
	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	"sitetree/internal/domain/repositories"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	urlSegmentPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	nonSlugChars      = regexp.MustCompile(`[^a-z0-9]+`)
)

// PageTypeChecker is the part of the type registry the page service needs
type PageTypeChecker interface {
	Has(name string) bool
	SupportsVersioning(name string) bool
}

type pageService struct {
	pageRepo  sitetreeRepo.PageRepository
	txManager repositories.TransactionManager
	types     PageTypeChecker
	logger    *slog.Logger
}

// NewPageService creates a new page service
func NewPageService(
	pageRepo sitetreeRepo.PageRepository,
	txManager repositories.TransactionManager,
	types PageTypeChecker,
	logger *slog.Logger,
) sitetreeSvc.PageService {
	return &pageService{
		pageRepo:  pageRepo,
		txManager: txManager,
		types:     types,
		logger:    logger,
	}
}

// CreatePage creates a draft page under req.ParentID (root when nil)
func (s *pageService) CreatePage(ctx context.Context, req *sitetreeSvc.CreatePageRequest) (*models.Page, error) {
	// Normalize empty string to nil for root-level pages
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.URLSegment == "" {
		req.URLSegment = Slugify(req.Title)
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		if _, err := s.pageRepo.GetByID(ctx, *req.ParentID, models.StageDraft); err != nil {
			return nil, fmt.Errorf("parent page: %w", err)
		}
	}

	showInMenus := true
	if req.ShowInMenus != nil {
		showInMenus = *req.ShowInMenus
	}

	now := time.Now()
	page := &models.Page{
		ParentID:    req.ParentID,
		ClassName:   req.ClassName,
		Title:       req.Title,
		URLSegment:  req.URLSegment,
		ShowInMenus: showInMenus,
		Sort:        req.Sort,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info("page created",
		"id", page.ID,
		"class_name", page.ClassName,
		"title", page.Title,
		"parent_id", page.ParentID,
	)

	return page, nil
}

// GetPage retrieves a page from one stage
func (s *pageService) GetPage(ctx context.Context, id string, stage models.Stage) (*models.Page, error) {
	return s.pageRepo.GetByID(ctx, id, stage)
}

// UpdatePage edits or moves a draft page
func (s *pageService) UpdatePage(ctx context.Context, id string, req *sitetreeSvc.UpdatePageRequest) (*models.Page, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var page *models.Page
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		page, err = s.pageRepo.GetByID(ctx, id, models.StageDraft)
		if err != nil {
			return err
		}

		if req.Title != nil {
			page.Title = strings.TrimSpace(*req.Title)
		}
		if req.URLSegment != nil {
			page.URLSegment = *req.URLSegment
		}
		if req.ShowInMenus != nil {
			page.ShowInMenus = *req.ShowInMenus
		}
		if req.Sort != nil {
			page.Sort = *req.Sort
		}

		if req.ParentID.Present {
			if req.ParentID.Value != nil && *req.ParentID.Value != "" {
				if err := s.validateNoCircularReference(ctx, id, *req.ParentID.Value); err != nil {
					return err
				}
				parentID := *req.ParentID.Value
				page.ParentID = &parentID
			} else {
				page.ParentID = nil
			}
		}

		page.UpdatedAt = time.Now()
		return s.pageRepo.Update(ctx, page)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("page updated",
		"id", page.ID,
		"title", page.Title,
		"parent_id", page.ParentID,
	)

	return page, nil
}

// PublishPage copies the draft page into the live stage
func (s *pageService) PublishPage(ctx context.Context, id string) (*models.Page, error) {
	var live *models.Page
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		page, err := s.pageRepo.GetByID(ctx, id, models.StageDraft)
		if err != nil {
			return err
		}
		if err := s.requireVersioning(page); err != nil {
			return err
		}

		if err := s.pageRepo.Publish(ctx, id); err != nil {
			return err
		}

		live, err = s.pageRepo.GetByID(ctx, id, models.StageLive)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("page published", "id", id, "class_name", live.ClassName)
	return live, nil
}

// UnpublishPage removes a page from live, keeping its draft
func (s *pageService) UnpublishPage(ctx context.Context, id string) error {
	page, err := s.pageRepo.GetByID(ctx, id, models.StageLive)
	if err != nil {
		return err
	}
	if err := s.requireVersioning(page); err != nil {
		return err
	}

	if err := s.pageRepo.Unpublish(ctx, id); err != nil {
		return err
	}

	s.logger.Info("page unpublished", "id", id)
	return nil
}

// DeletePage removes a page and its descendants from the draft stage.
// Published copies stay live and show up as removed from stage.
func (s *pageService) DeletePage(ctx context.Context, id string) error {
	var deleted int
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.pageRepo.GetByID(ctx, id, models.StageDraft); err != nil {
			return err
		}

		n, err := s.deleteDescendants(ctx, id)
		if err != nil {
			return err
		}
		deleted = n

		return s.pageRepo.DeleteFromStage(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("page deleted from stage", "id", id, "descendants", deleted)
	return nil
}

// deleteDescendants removes every draft descendant of id, deepest first
func (s *pageService) deleteDescendants(ctx context.Context, id string) (int, error) {
	children, err := s.pageRepo.ChildrenOf(ctx, sitetreeRepo.ChildQuery{
		ParentID:  &id,
		ExcludeID: id,
		Stage:     models.StageDraft,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list child pages: %w", err)
	}

	deleted := 0
	for _, child := range children {
		n, err := s.deleteDescendants(ctx, child.ID)
		if err != nil {
			return 0, err
		}
		if err := s.pageRepo.DeleteFromStage(ctx, child.ID); err != nil {
			return 0, err
		}
		deleted += n + 1
	}

	return deleted, nil
}

func (s *pageService) requireVersioning(page *models.Page) error {
	if !s.types.SupportsVersioning(page.ClassName) {
		return &domain.CapabilityMissingError{
			PageType:   page.ClassName,
			Capability: "versioning",
		}
	}
	return nil
}

// validateNoCircularReference ensures moving a page won't create a cycle
func (s *pageService) validateNoCircularReference(ctx context.Context, pageID, newParentID string) error {
	if pageID == newParentID {
		return fmt.Errorf("%w: cannot move page to be its own parent", domain.ErrValidation)
	}

	currentID := newParentID
	for {
		parent, err := s.pageRepo.GetByID(ctx, currentID, models.StageDraft)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: parent page %s not found", domain.ErrValidation, newParentID)
			}
			return err
		}

		if parent.ParentID == nil {
			return nil
		}

		if *parent.ParentID == pageID {
			return fmt.Errorf("%w: cannot move page below its own descendant", domain.ErrValidation)
		}

		currentID = *parent.ParentID
	}
}

func (s *pageService) validateCreateRequest(req *sitetreeSvc.CreatePageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxPageTitleLength),
		),
		validation.Field(&req.ClassName,
			validation.Required,
			validation.By(s.registeredType),
		),
		validation.Field(&req.URLSegment,
			validation.Required,
			validation.Length(1, config.MaxURLSegmentLength),
			validation.Match(urlSegmentPattern).Error("must be lowercase letters, digits and dashes"),
		),
	)
}

func (s *pageService) validateUpdateRequest(req *sitetreeSvc.UpdatePageRequest) error {
	if req.Title == nil && req.URLSegment == nil && req.ShowInMenus == nil && req.Sort == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Title != nil {
		rules = append(rules, validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxPageTitleLength),
		))
	}
	if req.URLSegment != nil {
		rules = append(rules, validation.Field(&req.URLSegment,
			validation.Required,
			validation.Length(1, config.MaxURLSegmentLength),
			validation.Match(urlSegmentPattern).Error("must be lowercase letters, digits and dashes"),
		))
	}

	return validation.ValidateStruct(req, rules...)
}

func (s *pageService) registeredType(value interface{}) error {
	name, _ := value.(string)
	if name != "" && !s.types.Has(name) {
		return fmt.Errorf("unknown page type %s", name)
	}
	return nil
}

// Slugify turns a title into a URL segment: "About Us!" -> "about-us"
func Slugify(title string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
