package command

import (
	"context"
	"fmt"
	"sync"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/internal/infrastructure/payment"
)

// In-memory doubles shared by the command handler tests.

type fakeQuizRepo struct {
	quizzes map[int64]*quiz.Quiz
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id int64) (*quiz.Quiz, error) {
	q, ok := r.quizzes[id]
	if !ok {
		return nil, shared.ErrQuizNotFound
	}
	return q, nil
}

type fakeAttemptRepo struct {
	attempts []*quiz.Attempt
	failNext error
}

func (r *fakeAttemptRepo) CreateAttempt(_ context.Context, attempt *quiz.Attempt) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *fakeAttemptRepo) ListByUser(_ context.Context, userID int64, limit int) ([]quiz.Attempt, error) {
	var out []quiz.Attempt
	for i := len(r.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.attempts[i].UserID == userID {
			out = append(out, *r.attempts[i])
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[int64]*course.Course
	videos  map[int64][]course.Video
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*course.Course, error) {
	c, ok := r.courses[id]
	if !ok || c.Status == course.StatusArchived {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeCourseRepo) GetVideos(_ context.Context, courseID int64) ([]course.Video, error) {
	return r.videos[courseID], nil
}

type fakeProgressRepo struct {
	records map[string]*course.CourseProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]*course.CourseProgress)}
}

func progressKey(userID, courseID int64) string {
	return fmt.Sprintf("%d:%d", userID, courseID)
}

func (r *fakeProgressRepo) Get(_ context.Context, userID, courseID int64) (*course.CourseProgress, error) {
	p, ok := r.records[progressKey(userID, courseID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProgressRepo) Upsert(_ context.Context, progress *course.CourseProgress) error {
	key := progressKey(progress.UserID, progress.CourseID)
	cp := *progress
	if old, ok := r.records[key]; ok && old.CompletedAt != nil {
		// Mirrors the SQL guard: completed_at is never overwritten.
		cp.CompletedAt = old.CompletedAt
	}
	r.records[key] = &cp
	return nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID int64) ([]course.CourseProgress, error) {
	var out []course.CourseProgress
	for _, p := range r.records {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	plans map[int64]*subscription.Plan
}

func (r *fakePlanRepo) GetByID(_ context.Context, id int64) (*subscription.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, shared.ErrPlanNotFound
	}
	return p, nil
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]subscription.Plan, error) {
	var out []subscription.Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeSubRepo struct {
	mu     sync.Mutex
	active map[int64]*subscription.Subscription
	all    []*subscription.Subscription
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{active: make(map[int64]*subscription.Subscription)}
}

func (r *fakeSubRepo) GetActiveByUser(_ context.Context, userID int64) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.active[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubRepo) CreateSuperseding(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.active[sub.UserID]; ok {
		old.Supersede(sub.CreatedAt)
		delete(r.active, sub.UserID)
	}
	cp := *sub
	r.active[sub.UserID] = &cp
	r.all = append(r.all, &cp)
	return nil
}

func (r *fakeSubRepo) Update(_ context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *sub
	if cp.Status == subscription.StatusActive {
		r.active[cp.UserID] = &cp
	} else {
		delete(r.active, cp.UserID)
	}
	for i := range r.all {
		if r.all[i].ID == cp.ID {
			r.all[i] = &cp
			return nil
		}
	}
	r.all = append(r.all, &cp)
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(t shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type failingGateway struct {
	err error
}

func (g *failingGateway) Charge(_ context.Context, _ payment.ChargeRequest) (*payment.ChargeResult, error) {
	return nil, g.err
}
