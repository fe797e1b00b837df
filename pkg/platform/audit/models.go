package audit

import (
	"time"

	id "lms/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so sinks can
// route and retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers changes to who is enrolled in what.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authentication and authorization outcomes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity and repair signals.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	// Subject is the entity acted on, usually a course id.
	Subject string
	Action  string
	Reason  string
	// RequestID correlates the event with request logs.
	RequestID string
	// ActorID is set when someone other than UserID performed the action,
	// e.g. an admin reconciling a student's course index.
	ActorID string
	IP      string
}

type AuditEvent string

const (
	// Account events
	EventUserRegistered AuditEvent = "user.registered"
	EventUserLoggedIn   AuditEvent = "user.logged_in"
	EventAuthFailed     AuditEvent = "auth.failed"

	// Catalog events
	EventCourseCreated AuditEvent = "course.created"
	EventCourseUpdated AuditEvent = "course.updated"
	EventCourseDeleted AuditEvent = "course.deleted"

	// Enrollment events
	EventEnrollmentCreated   AuditEvent = "enrollment.created"
	EventProgressUpdated     AuditEvent = "enrollment.progress_updated"
	EventCourseIndexPending  AuditEvent = "user.course_index_pending"
	EventCourseIndexRepaired AuditEvent = "user.course_index_reconciled"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:    CategoryCompliance,
	EventEnrollmentCreated: CategoryCompliance,
	EventCourseDeleted:     CategoryCompliance,

	EventAuthFailed:   CategorySecurity,
	EventUserLoggedIn: CategorySecurity,

	EventCourseCreated:       CategoryOperations,
	EventCourseUpdated:       CategoryOperations,
	EventProgressUpdated:     CategoryOperations,
	EventCourseIndexPending:  CategoryOperations,
	EventCourseIndexRepaired: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
