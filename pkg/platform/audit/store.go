// Package audit defines the audit event model and the sinks it is written to.
package audit

import (
	"context"
	"errors"

	id "lms/pkg/domain"
)

// ErrListUnsupported is returned by publishers whose store cannot be read back.
var ErrListUnsupported = errors.New("audit store does not support listing")

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader is implemented by stores that can return a user's events.
type Reader interface {
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
