package query

import (
	"context"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
)

// In-memory doubles shared by the query handler tests.

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
	records []course.CourseProgress
}

func (r *fakeProgressRepo) Get(_ context.Context, userID, courseID int64) (*course.CourseProgress, error) {
	for i := range r.records {
		if r.records[i].UserID == userID && r.records[i].CourseID == courseID {
			cp := r.records[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProgressRepo) Upsert(_ context.Context, progress *course.CourseProgress) error {
	for i := range r.records {
		if r.records[i].UserID == progress.UserID && r.records[i].CourseID == progress.CourseID {
			r.records[i] = *progress
			return nil
		}
	}
	r.records = append(r.records, *progress)
	return nil
}

func (r *fakeProgressRepo) ListByUser(_ context.Context, userID int64) ([]course.CourseProgress, error) {
	var out []course.CourseProgress
	for i := range r.records {
		if r.records[i].UserID == userID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

type fakeAttemptRepo struct {
	attempts []quiz.Attempt
}

func (r *fakeAttemptRepo) CreateAttempt(_ context.Context, attempt *quiz.Attempt) error {
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) ListByUser(_ context.Context, userID int64, limit int) ([]quiz.Attempt, error) {
	var out []quiz.Attempt
	for i := len(r.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.attempts[i].UserID == userID {
			out = append(out, r.attempts[i])
		}
	}
	return out, nil
}

type fakePlanRepo struct {
	plans []subscription.Plan
}

func (r *fakePlanRepo) GetByID(_ context.Context, id int64) (*subscription.Plan, error) {
	for i := range r.plans {
		if r.plans[i].ID == id {
			p := r.plans[i]
			return &p, nil
		}
	}
	return nil, shared.ErrPlanNotFound
}

func (r *fakePlanRepo) ListActive(_ context.Context) ([]subscription.Plan, error) {
	var out []subscription.Plan
	for i := range r.plans {
		if r.plans[i].IsActive {
			out = append(out, r.plans[i])
		}
	}
	return out, nil
}

type fakeSubRepo struct {
	active map[int64]*subscription.Subscription
}

func (r *fakeSubRepo) GetActiveByUser(_ context.Context, userID int64) (*subscription.Subscription, error) {
	s, ok := r.active[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubRepo) CreateSuperseding(_ context.Context, sub *subscription.Subscription) error {
	if r.active == nil {
		r.active = make(map[int64]*subscription.Subscription)
	}
	cp := *sub
	r.active[sub.UserID] = &cp
	return nil
}

func (r *fakeSubRepo) Update(_ context.Context, sub *subscription.Subscription) error {
	cp := *sub
	if cp.Status == subscription.StatusActive {
		r.active[cp.UserID] = &cp
	} else {
		delete(r.active, cp.UserID)
	}
	return nil
}
