package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	catalogmodels "lms/internal/catalog/models"
	catalogstore "lms/internal/catalog/store"
	"lms/internal/enrollment/metrics"
	"lms/internal/enrollment/store"
	usermodels "lms/internal/users/models"
	userstore "lms/internal/users/store"
	id "lms/pkg/domain"
	dErrors "lms/pkg/domain-errors"
	audit "lms/pkg/platform/audit"
	"lms/pkg/platform/audit/publisher"
	auditmemory "lms/pkg/platform/audit/store/memory"
	"lms/pkg/requestcontext"
)

var errIndexDown = errors.New("users collection unavailable")

// flakyIndex fails AddCourseReference while failing is set.
type flakyIndex struct {
	*userstore.InMemoryUserStore
	mu      sync.Mutex
	failing bool
}

func (f *flakyIndex) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyIndex) AddCourseReference(ctx context.Context, userID id.UserID, courseID id.CourseID, now time.Time) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errIndexDown
	}
	return f.InMemoryUserStore.AddCourseReference(ctx, userID, courseID, now)
}

// brokenCatalog returns a storage error for one course id.
type brokenCatalog struct {
	*catalogstore.InMemoryCourseStore
	broken id.CourseID
}

func (b *brokenCatalog) FindByID(ctx context.Context, courseID id.CourseID) (*catalogmodels.Course, error) {
	if courseID == b.broken {
		return nil, errors.New("catalog read timeout")
	}
	return b.InMemoryCourseStore.FindByID(ctx, courseID)
}

type EnrollmentServiceSuite struct {
	suite.Suite
	enrollments *store.InMemoryEnrollmentStore
	users       *flakyIndex
	courses     *brokenCatalog
	audit       *auditmemory.InMemoryStore
	metrics     *metrics.Metrics
	service     *Service
	ctx         context.Context
	now         time.Time
}

func TestEnrollmentServiceSuite(t *testing.T) {
	suite.Run(t, new(EnrollmentServiceSuite))
}

func (s *EnrollmentServiceSuite) SetupTest() {
	s.enrollments = store.NewInMemory()
	s.users = &flakyIndex{InMemoryUserStore: userstore.NewInMemory()}
	s.courses = &brokenCatalog{InMemoryCourseStore: catalogstore.NewInMemory()}
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.service = New(s.enrollments, s.users, s.courses,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
		WithFanout(2),
	)
	s.now = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *EnrollmentServiceSuite) newUser(role id.Role) Caller {
	user, err := usermodels.NewUser(id.NewUserID(), "", id.NewUserID().String()+"@example.com", "hash", role, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Save(s.ctx, user))
	return Caller{UserID: user.ID, Role: role}
}

func (s *EnrollmentServiceSuite) newCourse(title string) *catalogmodels.Course {
	course, err := catalogmodels.NewCourse(id.NewCourseID(), catalogmodels.Details{
		Title: title,
		Level: catalogmodels.LevelBeginner,
		Price: 49.99,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.courses.Create(s.ctx, course))
	return course
}

func (s *EnrollmentServiceSuite) TestEnroll() {
	s.Run("creates an enrollment at zero progress and indexes the course", func() {
		student := s.newUser(id.RoleStudent)
		course := s.newCourse("Go Basics")

		outcome, err := s.service.Enroll(s.ctx, student, course.ID)
		s.Require().NoError(err)
		s.True(outcome.IndexSynced)
		s.NoError(outcome.IndexErr)
		s.Equal(0, outcome.Enrollment.Progress)
		s.Equal(s.now, outcome.Enrollment.EnrolledAt)

		exists, err := s.enrollments.Exists(s.ctx, student.UserID, course.ID)
		s.Require().NoError(err)
		s.True(exists)

		user, err := s.users.FindByID(s.ctx, student.UserID)
		s.Require().NoError(err)
		s.True(user.HasCourseReference(course.ID))
		s.Len(s.audit.ListByAction(s.ctx, audit.EventEnrollmentCreated), 1)
	})

	s.Run("second enroll is already enrolled", func() {
		student := s.newUser(id.RoleStudent)
		course := s.newCourse("Go Basics")
		_, err := s.service.Enroll(s.ctx, student, course.ID)
		s.Require().NoError(err)

		_, err = s.service.Enroll(s.ctx, student, course.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyEnrolled))

		list, err := s.enrollments.ListByUser(s.ctx, student.UserID)
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("unknown course creates nothing", func() {
		student := s.newUser(id.RoleStudent)

		_, err := s.service.Enroll(s.ctx, student, id.NewCourseID())
		s.True(dErrors.HasCode(err, dErrors.CodeCourseNotFound))

		list, err := s.enrollments.ListByUser(s.ctx, student.UserID)
		s.Require().NoError(err)
		s.Empty(list)
	})

	s.Run("admins cannot enroll", func() {
		admin := s.newUser(id.RoleAdmin)
		course := s.newCourse("Go Basics")

		_, err := s.service.Enroll(s.ctx, admin, course.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("a token for a deleted user is unauthenticated", func() {
		course := s.newCourse("Go Basics")

		_, err := s.service.Enroll(s.ctx, Caller{UserID: id.NewUserID(), Role: id.RoleStudent}, course.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("catalog storage failure is internal", func() {
		student := s.newUser(id.RoleStudent)
		s.courses.broken = id.NewCourseID()
		defer func() { s.courses.broken = id.CourseID{} }()

		_, err := s.service.Enroll(s.ctx, student, s.courses.broken)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *EnrollmentServiceSuite) TestConcurrentEnrollHasOneWinner() {
	student := s.newUser(id.RoleStudent)
	course := s.newCourse("Concurrency in Go")

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = s.service.Enroll(s.ctx, student, course.ID)
		}()
	}
	close(start)
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case dErrors.HasCode(err, dErrors.CodeAlreadyEnrolled):
			conflicted++
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, conflicted)

	list, err := s.enrollments.ListByUser(s.ctx, student.UserID)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.EnrollmentsCreated))
}

func (s *EnrollmentServiceSuite) TestIndexFailureLeavesSafeStateAndReconciles() {
	student := s.newUser(id.RoleStudent)
	admin := s.newUser(id.RoleAdmin)
	course := s.newCourse("Distributed Systems")
	s.users.setFailing(true)

	outcome, err := s.service.Enroll(s.ctx, student, course.ID)
	s.Require().NoError(err, "index failure must not fail the enroll")
	s.False(outcome.IndexSynced)
	s.ErrorIs(outcome.IndexErr, errIndexDown)
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.IndexSyncFailures))
	s.Len(s.audit.ListByAction(s.ctx, audit.EventCourseIndexPending), 1)

	exists, err := s.enrollments.Exists(s.ctx, student.UserID, course.ID)
	s.Require().NoError(err)
	s.True(exists, "ledger holds the enrollment")

	user, err := s.users.FindByID(s.ctx, student.UserID)
	s.Require().NoError(err)
	s.False(user.HasCourseReference(course.ID), "index lags the ledger")

	courses, err := s.service.ListEnrolledCourses(s.ctx, student)
	s.Require().NoError(err)
	s.Require().Len(courses, 1, "read path trusts the ledger, not the index")

	_, err = s.service.Enroll(s.ctx, student, course.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyEnrolled), "retry is still a duplicate")

	s.users.setFailing(false)

	_, err = s.service.ReconcileCourseIndex(s.ctx, student, student.UserID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden), "students cannot reconcile")

	added, err := s.service.ReconcileCourseIndex(s.ctx, admin, student.UserID)
	s.Require().NoError(err)
	s.Equal(1, added)

	user, err = s.users.FindByID(s.ctx, student.UserID)
	s.Require().NoError(err)
	s.True(user.HasCourseReference(course.ID))

	added, err = s.service.ReconcileCourseIndex(s.ctx, admin, student.UserID)
	s.Require().NoError(err)
	s.Zero(added, "reconcile is idempotent")

	events := s.audit.ListByAction(s.ctx, audit.EventCourseIndexRepaired)
	s.Require().Len(events, 1)
	s.Equal(admin.UserID.String(), events[0].ActorID)
}

func (s *EnrollmentServiceSuite) TestReconcileUnknownUser() {
	admin := s.newUser(id.RoleAdmin)
	_, err := s.service.ReconcileCourseIndex(s.ctx, admin, id.NewUserID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EnrollmentServiceSuite) TestUpdateProgress() {
	student := s.newUser(id.RoleStudent)
	course := s.newCourse("Go Basics")
	_, err := s.service.Enroll(s.ctx, student, course.ID)
	s.Require().NoError(err)

	s.Run("every value in range is stored exactly", func() {
		for _, p := range []int{0, 1, 55, 20, 99, 100} {
			updated, err := s.service.UpdateProgress(s.ctx, student, course.ID, p)
			s.Require().NoError(err)
			s.Equal(p, updated.Progress)

			found, err := s.service.GetEnrollment(s.ctx, student, course.ID)
			s.Require().NoError(err)
			s.Equal(p, found.Progress)
		}
	})

	s.Run("out of range is rejected and the stored value is unchanged", func() {
		_, err := s.service.UpdateProgress(s.ctx, student, course.ID, 40)
		s.Require().NoError(err)

		for _, p := range []int{-1, 101, 1000} {
			_, err := s.service.UpdateProgress(s.ctx, student, course.ID, p)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidProgress), p)
		}
		found, err := s.service.GetEnrollment(s.ctx, student, course.ID)
		s.Require().NoError(err)
		s.Equal(40, found.Progress)
	})

	s.Run("updatedAt moves and enrolledAt stays", func() {
		later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
		updated, err := s.service.UpdateProgress(later, student, course.ID, 70)
		s.Require().NoError(err)
		s.Equal(s.now, updated.EnrolledAt)
		s.Equal(s.now.Add(time.Hour), updated.UpdatedAt)
	})

	s.Run("no enrollment is not enrolled", func() {
		other := s.newCourse("Rust Basics")
		_, err := s.service.UpdateProgress(s.ctx, student, other.ID, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEnrolled))

		_, err = s.service.GetEnrollment(s.ctx, student, other.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotEnrolled))
	})

	s.Run("admins cannot update progress", func() {
		_, err := s.service.UpdateProgress(s.ctx, s.newUser(id.RoleAdmin), course.ID, 10)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *EnrollmentServiceSuite) TestListEnrolledCourses() {
	s.Run("deleted course is dropped and counted", func() {
		student := s.newUser(id.RoleStudent)
		a := s.newCourse("A")
		b := s.newCourse("B")
		for _, c := range []*catalogmodels.Course{a, b} {
			_, err := s.service.Enroll(s.ctx, student, c.ID)
			s.Require().NoError(err)
		}
		s.Require().NoError(s.courses.Delete(s.ctx, b.ID))

		courses, err := s.service.ListEnrolledCourses(s.ctx, student)
		s.Require().NoError(err)
		s.Require().Len(courses, 1)
		s.Equal(a.ID, courses[0].ID)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.DanglingDropped))
	})

	s.Run("keeps ledger order under concurrent lookups", func() {
		student := s.newUser(id.RoleStudent)
		for _, title := range []string{"one", "two", "three", "four", "five"} {
			c := s.newCourse(title)
			_, err := s.service.Enroll(s.ctx, student, c.ID)
			s.Require().NoError(err)
		}
		ledger, err := s.enrollments.ListByUser(s.ctx, student.UserID)
		s.Require().NoError(err)
		var want []id.CourseID
		for _, e := range ledger {
			want = append(want, e.CourseID)
		}

		courses, err := s.service.ListEnrolledCourses(s.ctx, student)
		s.Require().NoError(err)
		var got []id.CourseID
		for _, c := range courses {
			got = append(got, c.ID)
		}
		s.Equal(want, got)
	})

	s.Run("no enrollments is an empty list", func() {
		courses, err := s.service.ListEnrolledCourses(s.ctx, s.newUser(id.RoleStudent))
		s.Require().NoError(err)
		s.Empty(courses)
	})

	s.Run("admins may list", func() {
		_, err := s.service.ListEnrolledCourses(s.ctx, s.newUser(id.RoleAdmin))
		s.NoError(err)
	})

	s.Run("catalog storage failure fails the request", func() {
		student := s.newUser(id.RoleStudent)
		c := s.newCourse("Flaky")
		_, err := s.service.Enroll(s.ctx, student, c.ID)
		s.Require().NoError(err)
		s.courses.broken = c.ID
		defer func() { s.courses.broken = id.CourseID{} }()

		_, err = s.service.ListEnrolledCourses(s.ctx, student)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *EnrollmentServiceSuite) TestBeginnerCourseScenario() {
	student := s.newUser(id.RoleStudent)
	course := s.newCourse("Intro to Go")
	s.Equal(49.99, course.Price)
	s.Equal(catalogmodels.LevelBeginner, course.Level)

	outcome, err := s.service.Enroll(s.ctx, student, course.ID)
	s.Require().NoError(err)
	s.Equal(0, outcome.Enrollment.Progress)

	_, err = s.service.UpdateProgress(s.ctx, student, course.ID, 55)
	s.Require().NoError(err)

	courses, err := s.service.ListEnrolledCourses(s.ctx, student)
	s.Require().NoError(err)
	s.Require().Len(courses, 1)
	s.Equal(course.ID, courses[0].ID)

	enrollment, err := s.service.GetEnrollment(s.ctx, student, course.ID)
	s.Require().NoError(err)
	s.Equal(55, enrollment.Progress)
}
