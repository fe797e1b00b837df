package testutil

import (
	"net/http"

	id "lms/pkg/domain"
	"lms/pkg/requestcontext"
)

// WithCaller adds a caller identity to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithCaller(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), userID, role))
}

// WithStudent marks the request as coming from a student.
func WithStudent(req *http.Request, userID id.UserID) *http.Request {
	return WithCaller(req, userID, id.RoleStudent)
}

// WithAdmin marks the request as coming from an admin.
func WithAdmin(req *http.Request, userID id.UserID) *http.Request {
	return WithCaller(req, userID, id.RoleAdmin)
}
