package sitetree

import (
	"context"
	"testing"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTreeFixture(t *testing.T, maxDepth int) (*memory.PageRepository, sitetreeSvc.TreeService) {
	repo := memory.NewPageRepository()
	registry := testRegistry(t)
	filter := NewExcludeChildren(NewHierarchy(repo, registry, testLogger()), registry, testLogger())
	return repo, NewTreeService(repo, filter, "", maxDepth, testLogger())
}

// seedSite builds:
//
//	home (Page)
//	gallery-holder (Holder)
//	  ├─ article (Article)
//	  │    └─ photo (Gallery)
//	  └─ gallery (Gallery)
//	hidden (Page, not in menus)
func seedSite(t *testing.T, repo *memory.PageRepository) {
	addPage(t, repo, "home", "Page", nil, true)
	addPage(t, repo, "gallery-holder", "Holder", nil, true)
	addPage(t, repo, "article", "Article", ptr("gallery-holder"), true)
	addPage(t, repo, "photo", "Gallery", ptr("article"), true)
	addPage(t, repo, "gallery", "Gallery", ptr("gallery-holder"), true)
	addPage(t, repo, "hidden", "Page", nil, false)
}

func nodeIDs(nodes []*models.TreeNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestTreeService_TreeViewHidesExcludedChildren(t *testing.T) {
	repo, svc := newTreeFixture(t, 0)
	seedSite(t, repo)

	tree, err := svc.TreeView(context.Background(), sitetreeSvc.Action(sitetreeSvc.ActionTreeView), sitetreeSvc.TreeOptions{ShowAll: true})
	require.NoError(t, err)

	require.Equal(t, []string{"home", "gallery-holder", "hidden"}, nodeIDs(tree))
	holder := tree[1]
	require.Equal(t, []string{"article"}, nodeIDs(holder.Children))
	// Exclusion applies to the Holder's direct children only
	assert.Equal(t, []string{"photo"}, nodeIDs(holder.Children[0].Children))
}

func TestTreeService_TreeViewWithoutAdminActionShowsEverything(t *testing.T) {
	repo, svc := newTreeFixture(t, 0)
	seedSite(t, repo)

	tree, err := svc.TreeView(context.Background(), sitetreeSvc.Action("edit"), sitetreeSvc.TreeOptions{})
	require.NoError(t, err)

	// Root type declares show-in-menus, so hidden pages drop without ShowAll
	require.Equal(t, []string{"home", "gallery-holder"}, nodeIDs(tree))
	assert.Equal(t, []string{"article", "gallery"}, nodeIDs(tree[1].Children))
}

func TestTreeService_MaxDepthTruncates(t *testing.T) {
	repo, svc := newTreeFixture(t, 1)
	seedSite(t, repo)

	tree, err := svc.TreeView(context.Background(), nil, sitetreeSvc.TreeOptions{ShowAll: true, MaxDepth: 5})
	require.NoError(t, err)

	for _, node := range tree {
		assert.True(t, node.Truncated, node.ID)
		assert.Empty(t, node.Children, node.ID)
	}
}

func TestTreeService_Subtree(t *testing.T) {
	repo, svc := newTreeFixture(t, 0)
	seedSite(t, repo)
	ctx := context.Background()

	node, err := svc.Subtree(ctx, sitetreeSvc.Action(sitetreeSvc.ActionGetSubtree), "gallery-holder", sitetreeSvc.TreeOptions{ShowAll: true})
	require.NoError(t, err)
	assert.Equal(t, "gallery-holder", node.ID)
	assert.Equal(t, []string{"article"}, nodeIDs(node.Children))

	_, err = svc.Subtree(ctx, sitetreeSvc.Action(sitetreeSvc.ActionGetSubtree), "missing", sitetreeSvc.TreeOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTreeService_Children(t *testing.T) {
	repo, svc := newTreeFixture(t, 0)
	seedSite(t, repo)
	ctx := context.Background()

	plain, err := svc.Children(ctx, sitetreeSvc.Action(sitetreeSvc.ActionChildren), "gallery-holder", sitetreeSvc.TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"article", "gallery"}, ids(plain))

	admin, err := svc.Children(ctx, sitetreeSvc.Action(sitetreeSvc.ActionGetSubtree), "gallery-holder", sitetreeSvc.TreeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"article"}, ids(admin))

	roots, err := svc.Children(ctx, nil, "", sitetreeSvc.TreeOptions{ShowAll: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "gallery-holder", "hidden"}, ids(roots))
}

func TestTreeService_LiveStage(t *testing.T) {
	repo, svc := newTreeFixture(t, 0)
	seedSite(t, repo)
	ctx := context.Background()
	for _, id := range []string{"gallery-holder", "article", "gallery"} {
		require.NoError(t, repo.Publish(ctx, id))
	}

	tree, err := svc.TreeView(ctx, sitetreeSvc.Action(sitetreeSvc.ActionTreeView), sitetreeSvc.TreeOptions{Stage: models.StageLive, ShowAll: true})
	require.NoError(t, err)
	require.Equal(t, []string{"gallery-holder"}, nodeIDs(tree))
	assert.Equal(t, []string{"article"}, nodeIDs(tree[0].Children))
}

func TestTreeService_LiveStageOnUnversionedParent(t *testing.T) {
	repo, svc := newTreeFixture(t, 0)
	addPage(t, repo, "files", "Folder", nil, true)
	ctx := context.Background()

	_, err := svc.Children(ctx, nil, "files", sitetreeSvc.TreeOptions{Stage: models.StageDraft})
	require.NoError(t, err)

	require.NoError(t, repo.Publish(ctx, "files"))
	_, err = svc.Children(ctx, nil, "files", sitetreeSvc.TreeOptions{Stage: models.StageLive})
	assert.ErrorIs(t, err, domain.ErrCapabilityMissing)
}

func TestValidateStage(t *testing.T) {
	stage, err := ValidateStage("")
	require.NoError(t, err)
	assert.Equal(t, models.StageDraft, stage)

	stage, err = ValidateStage("live")
	require.NoError(t, err)
	assert.Equal(t, models.StageLive, stage)

	_, err = ValidateStage("staging")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
