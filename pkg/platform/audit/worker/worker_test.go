package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	id "lms/pkg/domain"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("broker down") }

func TestWorker_DrainsInbox(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	userID := id.NewUserID()
	for range 3 {
		inbox <- audit.Event{UserID: userID, Action: string(audit.EventEnrollmentCreated)}
	}
	close(inbox)

	NewWorker(store, inbox, nil).Run(context.Background())

	events, err := store.ListByUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestWorker_ReportsFailuresAndContinues(t *testing.T) {
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	var failed []string
	NewWorker(failingStore{}, inbox, func(e audit.Event, _ error) {
		failed = append(failed, e.Action)
	}).Run(context.Background())

	assert.Equal(t, []string{"a", "b"}, failed)
}
