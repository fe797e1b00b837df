package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "lms/pkg/domain"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/audit/store/memory"
)

type PublisherSuite struct {
	suite.Suite
	store *memory.InMemoryStore
	ctx   context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.store = memory.NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *PublisherSuite) TestSyncEmitFillsDefaults() {
	pub := NewPublisher(s.store)
	defer pub.Close()
	student := id.NewUserID()

	before := time.Now()
	s.Require().NoError(pub.Emit(s.ctx, audit.Event{UserID: student, Action: string(audit.EventEnrollmentCreated)}))

	events, err := pub.List(s.ctx, student)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.False(events[0].Timestamp.Before(before))
	s.Equal(audit.CategoryCompliance, events[0].Category)
}

func (s *PublisherSuite) TestExplicitFieldsAreKept() {
	pub := NewPublisher(s.store)
	defer pub.Close()
	student := id.NewUserID()
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	s.Require().NoError(pub.Emit(s.ctx, audit.Event{
		UserID:    student,
		Action:    string(audit.EventCourseIndexPending),
		Category:  audit.CategorySecurity,
		Timestamp: at,
	}))

	events, err := pub.List(s.ctx, student)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(at, events[0].Timestamp)
	s.Equal(audit.CategorySecurity, events[0].Category)
}

func (s *PublisherSuite) TestEventsStayPerUserAndOrdered() {
	pub := NewPublisher(s.store)
	defer pub.Close()
	ada, grace := id.NewUserID(), id.NewUserID()

	for _, e := range []audit.Event{
		{UserID: ada, Action: string(audit.EventUserRegistered)},
		{UserID: grace, Action: string(audit.EventUserRegistered)},
		{UserID: ada, Action: string(audit.EventEnrollmentCreated)},
		{UserID: ada, Action: string(audit.EventProgressUpdated)},
	} {
		s.Require().NoError(pub.Emit(s.ctx, e))
	}

	events, err := pub.List(s.ctx, ada)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal(string(audit.EventProgressUpdated), events[2].Action)

	events, err = pub.List(s.ctx, grace)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PublisherSuite) TestAsyncCloseDrainsBuffer() {
	pub := NewPublisher(s.store, WithAsyncBuffer(64))
	student := id.NewUserID()

	for range 20 {
		s.Require().NoError(pub.Emit(s.ctx, audit.Event{UserID: student, Action: string(audit.EventProgressUpdated)}))
	}
	pub.Close()

	events, err := s.store.ListByUser(s.ctx, student)
	s.Require().NoError(err)
	s.Len(events, 20)
}

func (s *PublisherSuite) TestEmitAfterCloseWritesThrough() {
	pub := NewPublisher(s.store, WithAsyncBuffer(4))
	pub.Close()
	pub.Close()

	student := id.NewUserID()
	s.Require().NoError(pub.Emit(s.ctx, audit.Event{UserID: student, Action: string(audit.EventUserLoggedIn)}))
	events, err := s.store.ListByUser(s.ctx, student)
	s.Require().NoError(err)
	s.Len(events, 1)
}

// gatedStore blocks every Append until release is closed.
type gatedStore struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu     sync.Mutex
	events []audit.Event
}

func newGatedStore() *gatedStore {
	return &gatedStore{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedStore) Append(_ context.Context, event audit.Event) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	g.mu.Lock()
	defer g.mu.Unlock()
	g.events = append(g.events, event)
	return nil
}

func TestPublisher_FullBufferDropsEvent(t *testing.T) {
	store := newGatedStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	ctx := context.Background()
	event := audit.Event{UserID: id.NewUserID(), Action: string(audit.EventEnrollmentCreated)}

	require.NoError(t, pub.Emit(ctx, event))
	<-store.entered
	require.NoError(t, pub.Emit(ctx, event), "buffer has room for one")
	assert.ErrorIs(t, pub.Emit(ctx, event), ErrBufferFull)

	close(store.release)
	pub.Close()
	assert.Len(t, store.events, 2)
}

type appendOnlyStore struct{}

func (appendOnlyStore) Append(context.Context, audit.Event) error { return nil }

func TestPublisher_ListUnsupported(t *testing.T) {
	pub := NewPublisher(appendOnlyStore{})
	_, err := pub.List(context.Background(), id.NewUserID())
	assert.ErrorIs(t, err, audit.ErrListUnsupported)
}
