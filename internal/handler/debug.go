package handler

import (
	"net/http"
	"slices"

	models "sitetree/internal/domain/models/sitetree"
	"sitetree/internal/httputil"
)

// ExclusionResolver expands a node's excluded_children into concrete type names
type ExclusionResolver interface {
	ResolveExcludedTypes(node *models.Page) map[string]struct{}
}

// DebugHandler exposes internals for troubleshooting. Only registered when DEBUG=true.
type DebugHandler struct {
	resolver ExclusionResolver
}

func NewDebugHandler(resolver ExclusionResolver) *DebugHandler {
	return &DebugHandler{resolver: resolver}
}

// GetExcludedTypes shows which child types the tree view hides below a page type
// GET /debug/pagetypes/{name}/excluded
func (h *DebugHandler) GetExcludedTypes(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	set := h.resolver.ResolveExcludedTypes(&models.Page{ClassName: name})
	names := make([]string, 0, len(set))
	for typeName := range set {
		names = append(names, typeName)
	}
	slices.Sort(names)

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"page_type": name,
		"excluded":  names,
	})
}
