package handler

import (
	"log/slog"
	"net/http"

	sitetreeSvc "sitetree/internal/domain/services/sitetree"
	"sitetree/internal/httputil"
)

// PageTypeHandler exposes the page type table to administrators
type PageTypeHandler struct {
	pageTypeService sitetreeSvc.PageTypeService
	logger          *slog.Logger
}

// NewPageTypeHandler creates a new page type handler
func NewPageTypeHandler(pageTypeService sitetreeSvc.PageTypeService, logger *slog.Logger) *PageTypeHandler {
	return &PageTypeHandler{
		pageTypeService: pageTypeService,
		logger:          logger,
	}
}

type updatePageTypeRequest struct {
	ExcludedChildren []string `json:"excluded_children"`
}

// ListPageTypes returns every page type with its excluded_children
// GET /admin/pagetypes
func (h *PageTypeHandler) ListPageTypes(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.pageTypeService.ListPageTypes(r.Context()))
}

// UpdatePageType replaces excluded_children of a page type
// PATCH /admin/pagetypes/{name}
func (h *PageTypeHandler) UpdatePageType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		httputil.RespondError(w, http.StatusBadRequest, "page type name is required")
		return
	}

	var req updatePageTypeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pt, err := h.pageTypeService.SetExcludedChildren(r.Context(), name, req.ExcludedChildren)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("page type updated", "page_type", name, "user_id", httputil.GetUserID(r))
	httputil.RespondJSON(w, http.StatusOK, pt)
}
