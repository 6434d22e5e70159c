package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// WorkspaceRequired rejects tokens that are not scoped to a workspace
func WorkspaceRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, attendance.ErrWorkspaceRequired)
			return
		}

		workspaceID, ok := claims["workspace_id"].(string)
		if !ok || workspaceID == "" {
			response.HandleError(w, attendance.ErrWorkspaceRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
