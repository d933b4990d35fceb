package sitetree

import (
	"context"
	"io"
	"log/slog"
	"testing"

	models "sitetree/internal/domain/models/sitetree"
	sitetreeRepo "sitetree/internal/domain/repositories/sitetree"
	"sitetree/internal/pagetypes"
	"sitetree/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRegistry(t *testing.T) *pagetypes.Registry {
	t.Helper()
	r, err := pagetypes.New([]models.PageType{
		{Name: "SiteTree", Versioned: true, ShowInMenus: true},
		{Name: "Page", Parent: "SiteTree"},
		{Name: "Article", Parent: "Page"},
		{Name: "NewsArticle", Parent: "Article"},
		{Name: "PressRelease", Parent: "NewsArticle"},
		{Name: "Gallery", Parent: "Page"},
		{Name: "Holder", Parent: "Page", ExcludedChildren: []string{"Gallery"}},
		{Name: "ArticleHolder", Parent: "Page", ExcludedChildren: []string{"Article"}},
		{Name: "Folder"},
	})
	require.NoError(t, err)
	return r
}

func ptr(s string) *string { return &s }

func addPage(t *testing.T, repo *memory.PageRepository, id, className string, parent *string, show bool) *models.Page {
	t.Helper()
	page := &models.Page{
		ID:          id,
		ParentID:    parent,
		ClassName:   className,
		Title:       id,
		URLSegment:  id,
		ShowInMenus: show,
	}
	require.NoError(t, repo.Create(context.Background(), page))
	return page
}

func ids(pages []models.Page) []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.ID)
	}
	return out
}

// countingRepo records ChildrenOf calls on top of the in-memory store
type countingRepo struct {
	*memory.PageRepository
	calls int
}

func (r *countingRepo) ChildrenOf(ctx context.Context, q sitetreeRepo.ChildQuery) ([]models.Page, error) {
	r.calls++
	return r.PageRepository.ChildrenOf(ctx, q)
}
