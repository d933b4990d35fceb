package sitetree

import (
	"context"
	"errors"
	"testing"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type filterFixture struct {
	repo     *memory.PageRepository
	registry interface {
		sitetreeSvc.TypeRegistry
		SetExcludedChildren(name string, excluded []string) error
	}
	filter *ExcludeChildren
}

func newFilterFixture(t *testing.T, augmenters ...sitetreeSvc.StageAugmenter) *filterFixture {
	repo := memory.NewPageRepository()
	registry := testRegistry(t)
	base := NewHierarchy(repo, registry, testLogger(), augmenters...)
	return &filterFixture{
		repo:     repo,
		registry: registry,
		filter:   NewExcludeChildren(base, registry, testLogger()),
	}
}

func TestExcludeChildren_ArticleGalleryExample(t *testing.T) {
	f := newFilterFixture(t)
	parent := addPage(t, f.repo, "P", "Holder", nil, true)
	addPage(t, f.repo, "A", "Article", ptr("P"), true)
	addPage(t, f.repo, "B", "Article", ptr("P"), true)
	addPage(t, f.repo, "C", "Gallery", ptr("P"), true)

	ctx := context.Background()

	tree, err := f.filter.ListStagedChildren(ctx, parent, true, sitetreeSvc.Action("treeview"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(tree))

	edit, err := f.filter.ListStagedChildren(ctx, parent, true, sitetreeSvc.Action("edit"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, ids(edit))
}

func TestExcludeChildren_NonAdministrativeActionsPassThrough(t *testing.T) {
	f := newFilterFixture(t)
	parent := &models.Page{ID: "P", ClassName: "Holder"}
	children := []models.Page{
		{ID: "A", ClassName: "Article"},
		{ID: "C", ClassName: "Gallery"},
	}

	tests := []struct {
		name string
		rc   sitetreeSvc.RequestContext
	}{
		{name: "nil request context", rc: nil},
		{name: "absent action", rc: sitetreeSvc.Action("")},
		{name: "edit", rc: sitetreeSvc.Action("edit")},
		{name: "children", rc: sitetreeSvc.Action(sitetreeSvc.ActionChildren)},
		{name: "listview", rc: sitetreeSvc.Action("listview")},
		{name: "case differs", rc: sitetreeSvc.Action("TreeView")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.filter.FilterIfAdministrative(parent, children, tt.rc)
			assert.Equal(t, children, got)
		})
	}
}

func TestExcludeChildren_EmptyConfigurationIsIdentity(t *testing.T) {
	f := newFilterFixture(t)
	parent := &models.Page{ID: "P", ClassName: "Page"}
	children := []models.Page{
		{ID: "A", ClassName: "Article"},
		{ID: "C", ClassName: "Gallery"},
	}

	assert.Empty(t, f.filter.ResolveExcludedTypes(parent))
	for _, action := range []string{sitetreeSvc.ActionTreeView, sitetreeSvc.ActionGetSubtree} {
		assert.Equal(t, children, f.filter.FilterIfAdministrative(parent, children, sitetreeSvc.Action(action)))
	}
}

func TestExcludeChildren_SubtypesAreExcluded(t *testing.T) {
	f := newFilterFixture(t)
	parent := &models.Page{ID: "P", ClassName: "ArticleHolder"}
	children := []models.Page{
		{ID: "1", ClassName: "Article"},
		{ID: "2", ClassName: "Page"},
		{ID: "3", ClassName: "NewsArticle"},
		{ID: "4", ClassName: "Gallery"},
		{ID: "5", ClassName: "PressRelease"},
	}

	assert.Equal(t,
		map[string]struct{}{"Article": {}, "NewsArticle": {}, "PressRelease": {}},
		f.filter.ResolveExcludedTypes(parent),
	)

	for _, action := range []string{sitetreeSvc.ActionTreeView, sitetreeSvc.ActionGetSubtree} {
		t.Run(action, func(t *testing.T) {
			got := f.filter.FilterIfAdministrative(parent, children, sitetreeSvc.Action(action))
			assert.Equal(t, []string{"2", "4"}, ids(got))
		})
	}
}

func TestExcludeChildren_IdempotentSubsetInOrder(t *testing.T) {
	f := newFilterFixture(t)
	parent := &models.Page{ID: "P", ClassName: "ArticleHolder"}
	children := []models.Page{
		{ID: "1", ClassName: "Gallery"},
		{ID: "2", ClassName: "NewsArticle"},
		{ID: "3", ClassName: "Page"},
		{ID: "4", ClassName: "Article"},
		{ID: "5", ClassName: "Gallery"},
	}
	rc := sitetreeSvc.Action(sitetreeSvc.ActionTreeView)

	once := f.filter.FilterIfAdministrative(parent, children, rc)
	twice := f.filter.FilterIfAdministrative(parent, once, rc)

	assert.Equal(t, []string{"1", "3", "5"}, ids(once))
	assert.Equal(t, once, twice)
	assert.Subset(t, ids(children), ids(once))
	// input untouched
	assert.Len(t, children, 5)
}

func TestExcludeChildren_ConfigurationChangesApplyImmediately(t *testing.T) {
	f := newFilterFixture(t)
	parent := addPage(t, f.repo, "P", "Holder", nil, true)
	addPage(t, f.repo, "A", "Article", ptr("P"), true)
	addPage(t, f.repo, "C", "Gallery", ptr("P"), true)
	rc := sitetreeSvc.Action(sitetreeSvc.ActionTreeView)
	ctx := context.Background()

	before, err := f.filter.ListStagedChildren(ctx, parent, true, rc)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(before))

	require.NoError(t, f.registry.SetExcludedChildren("Holder", []string{"Article"}))

	after, err := f.filter.ListStagedChildren(ctx, parent, true, rc)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, ids(after))
}

func TestExcludeChildren_LiveChildren(t *testing.T) {
	f := newFilterFixture(t)
	ctx := context.Background()
	parent := addPage(t, f.repo, "P", "Holder", nil, true)
	addPage(t, f.repo, "A", "Article", ptr("P"), true)
	addPage(t, f.repo, "C", "Gallery", ptr("P"), true)
	addPage(t, f.repo, "D", "Article", ptr("P"), true)
	for _, id := range []string{"P", "A", "C", "D"} {
		require.NoError(t, f.repo.Publish(ctx, id))
	}
	require.NoError(t, f.repo.DeleteFromStage(ctx, "D"))

	live, err := f.filter.ListLiveChildren(ctx, parent, true, false, sitetreeSvc.Action(sitetreeSvc.ActionGetSubtree))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, ids(live))

	unfiltered, err := f.filter.ListLiveChildren(ctx, parent, true, false, sitetreeSvc.Action("edit"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "D"}, ids(unfiltered))

	removed, err := f.filter.ListLiveChildren(ctx, parent, true, true, sitetreeSvc.Action(sitetreeSvc.ActionTreeView))
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, ids(removed))
}

func TestExcludeChildren_LiveChildrenRequiresVersioning(t *testing.T) {
	repo := &countingRepo{PageRepository: memory.NewPageRepository()}
	registry := testRegistry(t)
	filter := NewExcludeChildren(NewHierarchy(repo, registry, testLogger()), registry, testLogger())
	folder := &models.Page{ID: "F", ClassName: "Folder"}
	ctx := context.Background()

	for _, showAll := range []bool{true, false} {
		for _, onlyRemoved := range []bool{true, false} {
			for _, action := range []string{"", "edit", sitetreeSvc.ActionTreeView} {
				children, err := filter.ListLiveChildren(ctx, folder, showAll, onlyRemoved, sitetreeSvc.Action(action))

				assert.Nil(t, children)
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrCapabilityMissing))

				var capErr *domain.CapabilityMissingError
				require.True(t, errors.As(err, &capErr))
				assert.Equal(t, "Folder", capErr.PageType)
			}
		}
	}

	assert.Zero(t, repo.calls, "store must not be queried for unversioned types")
}

func TestExcludeChildren_AugmentedCandidatesAreFiltered(t *testing.T) {
	virtual := sitetreeSvc.StageAugmenterFunc(func(ctx context.Context, node *models.Page, children []models.Page, showAll bool) ([]models.Page, error) {
		return append(children,
			models.Page{ID: "virtual-gallery", ParentID: &node.ID, ClassName: "Gallery"},
			models.Page{ID: "virtual-page", ParentID: &node.ID, ClassName: "Page"},
		), nil
	})
	f := newFilterFixture(t, virtual)
	parent := addPage(t, f.repo, "P", "Holder", nil, true)
	addPage(t, f.repo, "A", "Article", ptr("P"), true)
	ctx := context.Background()

	tree, err := f.filter.ListStagedChildren(ctx, parent, true, sitetreeSvc.Action(sitetreeSvc.ActionTreeView))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "virtual-page"}, ids(tree))

	edit, err := f.filter.ListStagedChildren(ctx, parent, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "virtual-gallery", "virtual-page"}, ids(edit))
}

func TestExcludeChildren_AugmenterErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	failing := sitetreeSvc.StageAugmenterFunc(func(ctx context.Context, node *models.Page, children []models.Page, showAll bool) ([]models.Page, error) {
		return nil, boom
	})
	f := newFilterFixture(t, failing)
	parent := addPage(t, f.repo, "P", "Holder", nil, true)

	_, err := f.filter.ListStagedChildren(context.Background(), parent, true, sitetreeSvc.Action(sitetreeSvc.ActionTreeView))
	assert.ErrorIs(t, err, boom)
}

type recorderFunc func(parentType string, n int)

func (f recorderFunc) ChildrenExcluded(parentType string, n int) { f(parentType, n) }

func TestExcludeChildren_RecordsExclusions(t *testing.T) {
	repo := memory.NewPageRepository()
	registry := testRegistry(t)

	recorded := map[string]int{}
	rec := recorderFunc(func(parentType string, n int) { recorded[parentType] += n })
	filter := NewExcludeChildren(NewHierarchy(repo, registry, testLogger()), registry, testLogger(), WithExclusionRecorder(rec))

	parent := addPage(t, repo, "P", "Holder", nil, true)
	addPage(t, repo, "A", "Article", ptr("P"), true)
	addPage(t, repo, "C", "Gallery", ptr("P"), true)
	addPage(t, repo, "D", "Gallery", ptr("P"), true)

	ctx := context.Background()
	_, err := filter.ListStagedChildren(ctx, parent, true, sitetreeSvc.Action(sitetreeSvc.ActionTreeView))
	require.NoError(t, err)
	_, err = filter.ListStagedChildren(ctx, parent, true, sitetreeSvc.Action(sitetreeSvc.ActionChildren))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Holder": 2}, recorded)
}
