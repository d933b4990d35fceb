package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"sitetree/internal/domain"
	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/httputil"
	serviceSitetree "sitetree/internal/service/sitetree"
)

// TreeHandler serves the CMS site tree
type TreeHandler struct {
	treeService sitetreeSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService sitetreeSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// TreeView renders the whole site tree
// GET /admin/pages/treeview?show_all=&stage=&only_deleted_from_stage=&max_depth=
func (h *TreeHandler) TreeView(w http.ResponseWriter, r *http.Request) {
	opts, err := parseTreeOptions(r)
	if err != nil {
		handleError(w, err)
		return
	}

	nodes, err := h.treeService.TreeView(r.Context(), sitetreeSvc.Action(sitetreeSvc.ActionTreeView), opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, nodes)
}

// GetSubtree renders the tree below one page
// GET /admin/pages/{id}/getsubtree
func (h *TreeHandler) GetSubtree(w http.ResponseWriter, r *http.Request) {
	id, err := pathPageID(r, false)
	if err != nil {
		handleError(w, err)
		return
	}

	opts, err := parseTreeOptions(r)
	if err != nil {
		handleError(w, err)
		return
	}

	node, err := h.treeService.Subtree(r.Context(), sitetreeSvc.Action(sitetreeSvc.ActionGetSubtree), id, opts)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, node)
}

// parseTreeOptions reads the listing flags shared by every tree endpoint
func parseTreeOptions(r *http.Request) (sitetreeSvc.TreeOptions, error) {
	var opts sitetreeSvc.TreeOptions
	var err error

	if opts.ShowAll, err = httputil.QueryBool(r, "show_all", false); err != nil {
		return opts, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if opts.OnlyDeletedFromStage, err = httputil.QueryBool(r, "only_deleted_from_stage", false); err != nil {
		return opts, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if opts.MaxDepth, err = httputil.QueryInt(r, "max_depth", 0); err != nil {
		return opts, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	stage := r.URL.Query().Get("stage")
	if opts.Stage, err = serviceSitetree.ValidateStage(stage); err != nil {
		return opts, err
	}

	// Pages deleted from draft only exist in live
	if opts.OnlyDeletedFromStage {
		if stage != "" && opts.Stage != models.StageLive {
			return opts, fmt.Errorf("%w: only_deleted_from_stage requires stage=live", domain.ErrValidation)
		}
		opts.Stage = models.StageLive
	}

	return opts, nil
}

// parsePublicTreeOptions only allows the live stage, as menus render it
func parsePublicTreeOptions(r *http.Request) (sitetreeSvc.TreeOptions, error) {
	q := r.URL.Query()
	for _, key := range []string{"show_all", "only_deleted_from_stage"} {
		if q.Has(key) {
			return sitetreeSvc.TreeOptions{}, fmt.Errorf("%w: %s requires an admin route", domain.ErrValidation, key)
		}
	}
	if stage := q.Get("stage"); stage != "" && stage != string(models.StageLive) {
		return sitetreeSvc.TreeOptions{}, fmt.Errorf("%w: only the live stage is public", domain.ErrValidation)
	}

	return sitetreeSvc.TreeOptions{Stage: models.StageLive}, nil
}
