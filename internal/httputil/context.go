package httputil

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
)

// WithUserID adds the authenticated CMS user to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves the user ID, empty when the request is anonymous
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
