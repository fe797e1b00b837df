package worker

import (
	"context"

	audit "lms/pkg/platform/audit"
)

// Worker drains audit events from a channel into a store. A failed append is
// reported to onError and does not stop the loop.
type Worker struct {
	store   audit.Store
	inbox   <-chan audit.Event
	onError func(audit.Event, error)
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, onError func(audit.Event, error)) *Worker {
	if onError == nil {
		onError = func(audit.Event, error) {}
	}
	return &Worker{store: store, inbox: inbox, onError: onError}
}

// Run blocks until the inbox is closed and drained. Appends use ctx, so a
// cancelled ctx makes the remaining appends fail fast rather than hang.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(ctx, event); err != nil {
			w.onError(event, err)
		}
	}
}
