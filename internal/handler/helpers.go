package handler

import (
	"errors"
	"fmt"
	"net/http"

	"sitetree/internal/domain"
	"sitetree/internal/httputil"

	"github.com/google/uuid"
)

// rootPageID addresses the virtual node above root-level pages in URLs
const rootPageID = "root"

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var capabilityErr *domain.CapabilityMissingError

	switch {
	case errors.As(err, &capabilityErr):
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, capabilityErr.Error(), map[string]interface{}{
			"page_type":  capabilityErr.PageType,
			"capability": capabilityErr.Capability,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathPageID reads the {id} path value and checks it is a page UUID.
// allowRoot maps "root" to "", the root level of the tree.
func pathPageID(r *http.Request, allowRoot bool) (string, error) {
	id := r.PathValue("id")
	if id == "" {
		return "", fmt.Errorf("%w: page ID is required", domain.ErrValidation)
	}
	if allowRoot && id == rootPageID {
		return "", nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: invalid page ID %q", domain.ErrValidation, id)
	}
	return id, nil
}
