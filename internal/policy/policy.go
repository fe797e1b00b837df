// Package policy decides which roles may perform which actions.
//
// Every decision switches over the closed id.Role set. An unknown role falls
// through to deny.
package policy

import (
	"fmt"

	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
)

// Action names an authorization point.
type Action string

const (
	ActionEnroll          Action = "enroll"
	ActionUpdateProgress  Action = "update_progress"
	ActionViewEnrollment  Action = "view_enrollment"
	ActionListEnrollments Action = "list_enrollments"
	ActionManageCatalog   Action = "manage_catalog"
	ActionReconcileIndex  Action = "reconcile_course_index"
)

// Allowed reports whether role may perform action.
func Allowed(role id.Role, action Action) bool {
	switch action {
	case ActionEnroll, ActionUpdateProgress, ActionViewEnrollment:
		return studentOnly(role)
	case ActionListEnrollments:
		return studentOrAdmin(role)
	case ActionManageCatalog, ActionReconcileIndex:
		return adminOnly(role)
	default:
		return false
	}
}

// Authorize returns a Forbidden error when role may not perform action.
func Authorize(role id.Role, action Action) error {
	if Allowed(role, action) {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("role %q may not %s", role, action))
}

func studentOnly(role id.Role) bool {
	switch role {
	case id.RoleStudent:
		return true
	case id.RoleAdmin:
		return false
	default:
		return false
	}
}

func adminOnly(role id.Role) bool {
	switch role {
	case id.RoleAdmin:
		return true
	case id.RoleStudent:
		return false
	default:
		return false
	}
}

func studentOrAdmin(role id.Role) bool {
	switch role {
	case id.RoleStudent, id.RoleAdmin:
		return true
	default:
		return false
	}
}
