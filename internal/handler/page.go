package handler

import (
	"log/slog"
	"net/http"
	"time"

	models "sitetree/internal/domain/models/sitetree"
	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/httputil"
	serviceSitetree "sitetree/internal/service/sitetree"
)

// PageHandler handles page HTTP requests
type PageHandler struct {
	pageService sitetreeSvc.PageService
	treeService sitetreeSvc.TreeService
	logger      *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(pageService sitetreeSvc.PageService, treeService sitetreeSvc.TreeService, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		pageService: pageService,
		treeService: treeService,
		logger:      logger,
	}
}

// updatePageRequest is the PATCH body; parent_id distinguishes absent from null
type updatePageRequest struct {
	Title       *string                 `json:"title"`
	URLSegment  *string                 `json:"url_segment"`
	ShowInMenus *bool                   `json:"show_in_menus"`
	Sort        *int                    `json:"sort"`
	ParentID    httputil.OptionalString `json:"parent_id"`
}

// CreatePage creates a draft page
// POST /admin/pages
func (h *PageHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var req sitetreeSvc.CreatePageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	page, err := h.pageService.CreatePage(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, page)
}

// GetPage retrieves a page from the requested stage
// GET /admin/pages/{id}?stage=draft|live
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathPageID(r, false)
	if err != nil {
		handleError(w, err)
		return
	}

	stage, err := serviceSitetree.ValidateStage(r.URL.Query().Get("stage"))
	if err != nil {
		handleError(w, err)
		return
	}

	page, err := h.pageService.GetPage(r.Context(), id, stage)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// UpdatePage edits or moves a draft page
// PATCH /admin/pages/{id}
func (h *PageHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathPageID(r, false)
	if err != nil {
		handleError(w, err)
		return
	}

	var body updatePageRequest
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req := &sitetreeSvc.UpdatePageRequest{
		Title:       body.Title,
		URLSegment:  body.URLSegment,
		ShowInMenus: body.ShowInMenus,
		Sort:        body.Sort,
		ParentID: sitetreeSvc.OptionalParent{
			Present: body.ParentID.Present,
			Value:   body.ParentID.Value,
		},
	}

	page, err := h.pageService.UpdatePage(r.Context(), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// PublishPage copies a draft page to live
// POST /admin/pages/{id}/publish
func (h *PageHandler) PublishPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathPageID(r, false)
	if err != nil {
		handleError(w, err)
		return
	}

	page, err := h.pageService.PublishPage(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, page)
}

// UnpublishPage removes a page from live
// POST /admin/pages/{id}/unpublish
func (h *PageHandler) UnpublishPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathPageID(r, false)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.pageService.UnpublishPage(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// DeletePage removes a page and its descendants from the draft stage
// DELETE /admin/pages/{id}
func (h *PageHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathPageID(r, false)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.pageService.DeletePage(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// GetChildren lists the direct children of a page from either stage; {id} may be "root".
// The request action defaults to "children" and can be overridden with
// ?action=, so admin tree widgets loading one level get the same filtering.
// GET /admin/pages/{id}/children?action=&show_all=&stage=&only_deleted_from_stage=
func (h *PageHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	opts, err := parseTreeOptions(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.listChildren(w, r, opts)
}

// GetPublishedChildren lists the live children of a page for anonymous visitors.
// Drafts, pages hidden from menus and the removed-from-stage diff are admin only.
// GET /api/pages/{id}/children?action=
func (h *PageHandler) GetPublishedChildren(w http.ResponseWriter, r *http.Request) {
	opts, err := parsePublicTreeOptions(r)
	if err != nil {
		handleError(w, err)
		return
	}
	h.listChildren(w, r, opts)
}

func (h *PageHandler) listChildren(w http.ResponseWriter, r *http.Request, opts sitetreeSvc.TreeOptions) {
	id, err := pathPageID(r, true)
	if err != nil {
		handleError(w, err)
		return
	}

	action := sitetreeSvc.Action(sitetreeSvc.ActionChildren)
	if a := r.URL.Query().Get("action"); a != "" {
		action = sitetreeSvc.Action(a)
	}

	children, err := h.treeService.Children(r.Context(), action, id, opts)
	if err != nil {
		handleError(w, err)
		return
	}
	if children == nil {
		children = []models.Page{}
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}

// HealthCheck is a simple health check endpoint
func (h *PageHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
