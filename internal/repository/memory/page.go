// Package memory provides an in-memory page store.
//
// It mirrors the postgres repository's semantics (two stages, ordering,
// removed-from-stage diff) and backs the server when no DATABASE_URL is
// configured, as well as the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"

	"github.com/google/uuid"
)

type row struct {
	page models.Page
	seq  uint64 // insertion order tie-break
}

// PageRepository is an in-memory PageRepository. Safe for concurrent use.
type PageRepository struct {
	mu    sync.RWMutex
	draft map[string]row
	live  map[string]row
	seq   uint64
	now   func() time.Time
}

// NewPageRepository creates an empty store
func NewPageRepository() *PageRepository {
	return &PageRepository{
		draft: make(map[string]row),
		live:  make(map[string]row),
		now:   time.Now,
	}
}

var _ sitetreeRepo.PageRepository = (*PageRepository)(nil)

// Create inserts a draft page; an empty ID is generated
func (r *PageRepository) Create(ctx context.Context, page *models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	if _, exists := r.draft[page.ID]; exists {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("page '%s' already exists", page.ID),
			ResourceType: "page",
			ResourceID:   page.ID,
		}
	}

	now := r.now()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	if page.UpdatedAt.IsZero() {
		page.UpdatedAt = now
	}

	r.seq++
	r.draft[page.ID] = row{page: clonePage(*page), seq: r.seq}
	return nil
}

// GetByID retrieves a page from the given stage
func (r *PageRepository) GetByID(ctx context.Context, id string, stage models.Stage) (*models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.stage(stage)[id]
	if !ok {
		return nil, fmt.Errorf("page %s (%s): %w", id, stage, domain.ErrNotFound)
	}
	page := clonePage(stored.page)
	return &page, nil
}

// Update writes a draft page
func (r *PageRepository) Update(ctx context.Context, page *models.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.draft[page.ID]
	if !ok {
		return fmt.Errorf("page %s: %w", page.ID, domain.ErrNotFound)
	}

	updated := stored.page
	updated.ParentID = page.ParentID
	updated.Title = page.Title
	updated.URLSegment = page.URLSegment
	updated.ShowInMenus = page.ShowInMenus
	updated.Sort = page.Sort
	updated.UpdatedAt = page.UpdatedAt
	r.draft[page.ID] = row{page: clonePage(updated), seq: stored.seq}
	return nil
}

// ChildrenOf lists direct children ordered by sort, creation time, then insertion
func (r *PageRepository) ChildrenOf(ctx context.Context, q sitetreeRepo.ChildQuery) ([]models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []row
	for id, stored := range r.stage(q.Stage) {
		if id == q.ExcludeID || !sameParent(stored.page.ParentID, q.ParentID) {
			continue
		}
		if q.OnlyShowInMenus && !stored.page.ShowInMenus {
			continue
		}
		if q.Stage == models.StageLive && q.Mode == models.LiveModeRemovedFromStage {
			if _, inDraft := r.draft[id]; inDraft {
				continue
			}
		}
		matched = append(matched, stored)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.page.Sort != b.page.Sort {
			return a.page.Sort < b.page.Sort
		}
		if !a.page.CreatedAt.Equal(b.page.CreatedAt) {
			return a.page.CreatedAt.Before(b.page.CreatedAt)
		}
		return a.seq < b.seq
	})

	pages := make([]models.Page, 0, len(matched))
	for _, m := range matched {
		pages = append(pages, clonePage(m.page))
	}
	return pages, nil
}

// Publish copies the draft row into the live stage
func (r *PageRepository) Publish(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.draft[id]
	if !ok {
		return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	r.live[id] = row{page: clonePage(stored.page), seq: stored.seq}
	return nil
}

// Unpublish removes the live row
func (r *PageRepository) Unpublish(ctx context.Context, id string) error {
	return r.remove(r.live, id)
}

// DeleteFromStage removes the draft row
func (r *PageRepository) DeleteFromStage(ctx context.Context, id string) error {
	return r.remove(r.draft, id)
}

func (r *PageRepository) remove(rows map[string]row, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := rows[id]; !ok {
		return fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	delete(rows, id)
	return nil
}

func (r *PageRepository) stage(stage models.Stage) map[string]row {
	if stage == models.StageLive {
		return r.live
	}
	return r.draft
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// clonePage detaches the ParentID pointer from the stored copy
func clonePage(p models.Page) models.Page {
	if p.ParentID != nil {
		parent := *p.ParentID
		p.ParentID = &parent
	}
	return p
}
