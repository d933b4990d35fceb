package sitetree

import (
	"context"
	"strings"
	"testing"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageFixture(t *testing.T) (*memory.PageRepository, sitetreeSvc.PageService) {
	repo := memory.NewPageRepository()
	return repo, NewPageService(repo, memory.NewTransactionManager(), testRegistry(t), testLogger())
}

func boolPtr(b bool) *bool { return &b }

func TestPageService_CreatePage(t *testing.T) {
	_, svc := newPageFixture(t)
	ctx := context.Background()

	holder, err := svc.CreatePage(ctx, &sitetreeSvc.CreatePageRequest{ClassName: "Holder", Title: "  Our Galleries! "})
	require.NoError(t, err)
	assert.NotEmpty(t, holder.ID)
	assert.Nil(t, holder.ParentID)
	assert.Equal(t, "Our Galleries!", holder.Title)
	assert.Equal(t, "our-galleries", holder.URLSegment)
	assert.True(t, holder.ShowInMenus)

	child, err := svc.CreatePage(ctx, &sitetreeSvc.CreatePageRequest{
		ParentID:    &holder.ID,
		ClassName:   "Gallery",
		Title:       "Summer",
		ShowInMenus: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, holder.ID, *child.ParentID)
	assert.False(t, child.ShowInMenus)

	root, err := svc.CreatePage(ctx, &sitetreeSvc.CreatePageRequest{ParentID: ptr(""), ClassName: "Page", Title: "Home"})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
}

func TestPageService_CreatePageValidation(t *testing.T) {
	_, svc := newPageFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     sitetreeSvc.CreatePageRequest
		wantErr error
	}{
		{name: "missing title", req: sitetreeSvc.CreatePageRequest{ClassName: "Page"}, wantErr: domain.ErrValidation},
		{name: "unknown type", req: sitetreeSvc.CreatePageRequest{ClassName: "Nope", Title: "x"}, wantErr: domain.ErrValidation},
		{name: "bad segment", req: sitetreeSvc.CreatePageRequest{ClassName: "Page", Title: "x", URLSegment: "Not OK"}, wantErr: domain.ErrValidation},
		{name: "title too long", req: sitetreeSvc.CreatePageRequest{ClassName: "Page", Title: strings.Repeat("a", 256)}, wantErr: domain.ErrValidation},
		{name: "missing parent", req: sitetreeSvc.CreatePageRequest{ParentID: ptr("ghost"), ClassName: "Page", Title: "x"}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.CreatePage(ctx, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPageService_UpdatePageMove(t *testing.T) {
	repo, svc := newPageFixture(t)
	ctx := context.Background()
	addPage(t, repo, "a", "Page", nil, true)
	addPage(t, repo, "b", "Page", ptr("a"), true)
	addPage(t, repo, "c", "Page", ptr("b"), true)

	_, err := svc.UpdatePage(ctx, "a", &sitetreeSvc.UpdatePageRequest{ParentID: sitetreeSvc.OptionalParent{Present: true, Value: ptr("c")}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdatePage(ctx, "a", &sitetreeSvc.UpdatePageRequest{ParentID: sitetreeSvc.OptionalParent{Present: true, Value: ptr("a")}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdatePage(ctx, "a", &sitetreeSvc.UpdatePageRequest{ParentID: sitetreeSvc.OptionalParent{Present: true, Value: ptr("ghost")}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	moved, err := svc.UpdatePage(ctx, "c", &sitetreeSvc.UpdatePageRequest{ParentID: sitetreeSvc.OptionalParent{Present: true}})
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)

	title := "Renamed"
	renamed, err := svc.UpdatePage(ctx, "b", &sitetreeSvc.UpdatePageRequest{Title: &title, ShowInMenus: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)
	assert.False(t, renamed.ShowInMenus)
	assert.Equal(t, "a", *renamed.ParentID)

	_, err = svc.UpdatePage(ctx, "b", &sitetreeSvc.UpdatePageRequest{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPageService_PublishLifecycle(t *testing.T) {
	repo, svc := newPageFixture(t)
	ctx := context.Background()
	addPage(t, repo, "p", "Page", nil, true)
	addPage(t, repo, "f", "Folder", nil, true)

	live, err := svc.PublishPage(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "p", live.ID)

	_, err = svc.GetPage(ctx, "p", models.StageLive)
	require.NoError(t, err)

	_, err = svc.PublishPage(ctx, "f")
	assert.ErrorIs(t, err, domain.ErrCapabilityMissing)

	require.NoError(t, svc.UnpublishPage(ctx, "p"))
	_, err = svc.GetPage(ctx, "p", models.StageLive)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.UnpublishPage(ctx, "p"), domain.ErrNotFound)
}

func TestPageService_DeletePageCascadesOnDraftOnly(t *testing.T) {
	repo, svc := newPageFixture(t)
	ctx := context.Background()
	addPage(t, repo, "holder", "Holder", nil, true)
	addPage(t, repo, "child", "Page", ptr("holder"), true)
	addPage(t, repo, "grandchild", "Page", ptr("child"), true)
	require.NoError(t, repo.Publish(ctx, "child"))

	require.NoError(t, svc.DeletePage(ctx, "holder"))

	for _, id := range []string{"holder", "child", "grandchild"} {
		_, err := svc.GetPage(ctx, id, models.StageDraft)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}

	live, err := svc.GetPage(ctx, "child", models.StageLive)
	require.NoError(t, err)
	assert.Equal(t, "child", live.ID)

	assert.ErrorIs(t, svc.DeletePage(ctx, "holder"), domain.ErrNotFound)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"About Us":           "about-us",
		"  Hello, World!  ":  "hello-world",
		"2026 Annual Report": "2026-annual-report",
		"---":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
