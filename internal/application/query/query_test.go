package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learning-platform/internal/domain/course"
	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/internal/domain/subscription"
	"github.com/learnhub/learning-platform/pkg/logger"
)

func progressRecord(userID, courseID int64, pct int, completed bool) course.CourseProgress {
	now := time.Now().UTC()
	p := course.CourseProgress{
		UserID:             userID,
		CourseID:           courseID,
		ProgressPercentage: pct,
		StartedAt:          now.Add(-24 * time.Hour),
		LastAccessedAt:     now,
	}
	if completed {
		p.CompletedAt = &now
	}
	return p
}

func TestGetCourseProgress_NotStarted(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: map[int64]*course.Course{
		1: {ID: 1, Title: "Go course", Status: course.StatusPublished},
	}}
	h := NewGetCourseProgressHandler(courseRepo, &fakeProgressRepo{})

	dto, err := h.Handle(context.Background(), GetCourseProgressQuery{UserID: 5, CourseID: 1})
	require.NoError(t, err)

	// Нет записи - нулевой прогресс, а не ошибка.
	assert.False(t, dto.Started)
	assert.Equal(t, 0, dto.ProgressPercentage)
	assert.False(t, dto.IsCompleted)
	assert.Nil(t, dto.StartedAt)
}

func TestGetCourseProgress_Existing(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: map[int64]*course.Course{
		1: {ID: 1, Title: "Go course", Status: course.StatusPublished},
	}}
	progressRepo := &fakeProgressRepo{records: []course.CourseProgress{
		progressRecord(5, 1, 70, false),
	}}
	h := NewGetCourseProgressHandler(courseRepo, progressRepo)

	dto, err := h.Handle(context.Background(), GetCourseProgressQuery{UserID: 5, CourseID: 1})
	require.NoError(t, err)

	assert.True(t, dto.Started)
	assert.Equal(t, 70, dto.ProgressPercentage)
	require.NotNil(t, dto.StartedAt)
	require.NotNil(t, dto.LastAccessedAt)
}

func TestGetCourseProgress_ArchivedCourse(t *testing.T) {
	courseRepo := &fakeCourseRepo{courses: map[int64]*course.Course{
		2: {ID: 2, Title: "Old course", Status: course.StatusArchived},
	}}
	h := NewGetCourseProgressHandler(courseRepo, &fakeProgressRepo{})

	_, err := h.Handle(context.Background(), GetCourseProgressQuery{UserID: 5, CourseID: 2})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGetLearnerStats_Aggregates(t *testing.T) {
	progressRepo := &fakeProgressRepo{records: []course.CourseProgress{
		progressRecord(5, 1, 100, true),
		progressRecord(5, 2, 40, false),
		progressRecord(5, 3, 10, false),
		progressRecord(9, 4, 90, false), // чужая запись
	}}
	h := NewGetLearnerStatsHandler(progressRepo, nil, logger.Nop())

	stats, err := h.Handle(context.Background(), GetLearnerStatsQuery{UserID: 5})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalCourses)
	assert.Equal(t, 1, stats.CompletedCourses)
	assert.Equal(t, 50, stats.AverageProgress)
}

func TestGetLearnerStats_NoCourses(t *testing.T) {
	h := NewGetLearnerStatsHandler(&fakeProgressRepo{}, nil, logger.Nop())

	stats, err := h.Handle(context.Background(), GetLearnerStatsQuery{UserID: 5})
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalCourses)
	assert.Equal(t, 0, stats.AverageProgress)
}

func TestListPlans_AttachesFeatures(t *testing.T) {
	planRepo := &fakePlanRepo{plans: []subscription.Plan{
		{ID: 1, Name: "basic", PriceMonthly: 990, IsActive: true},
		{ID: 2, Name: "pro", PriceMonthly: 1990, IsActive: true},
		{ID: 3, Name: "legacy", PriceMonthly: 490, IsActive: false},
	}}
	h := NewListPlansHandler(planRepo, nil, logger.Nop())

	result, err := h.Handle(context.Background(), ListPlansQuery{})
	require.NoError(t, err)

	require.Len(t, result.Plans, 2)
	assert.Equal(t, "basic", result.Plans[0].Name)
	assert.NotEmpty(t, result.Plans[0].Features)
	// Неизвестное имя плана - просто без фич.
	for _, p := range result.Plans {
		assert.NotEqual(t, "legacy", p.Name)
	}
}

func TestGetQuizHistory_NewestFirstWithLimit(t *testing.T) {
	repo := &fakeAttemptRepo{}
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		repo.attempts = append(repo.attempts, quiz.Attempt{
			ID:        string(rune('a' + i)),
			UserID:    5,
			QuizID:    10,
			Score:     i * 20,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	h := NewGetQuizHistoryHandler(repo)

	result, err := h.Handle(context.Background(), GetQuizHistoryQuery{UserID: 5, Limit: 3})
	require.NoError(t, err)

	require.Len(t, result.Attempts, 3)
	assert.Equal(t, "e", result.Attempts[0].AttemptID)
	assert.Equal(t, 80, result.Attempts[0].Score)
}

func TestGetQuizHistory_DefaultLimit(t *testing.T) {
	q := GetQuizHistoryQuery{UserID: 5}
	require.NoError(t, q.Validate())
	assert.Equal(t, defaultHistoryLimit, q.Limit)

	q = GetQuizHistoryQuery{UserID: 5, Limit: 10000}
	require.NoError(t, q.Validate())
	assert.Equal(t, maxHistoryLimit, q.Limit)
}

func TestGetEntitlement_ActiveSubscription(t *testing.T) {
	now := time.Now().UTC()
	sub := subscription.New("sub-1", "pay_ref", 5, 2, now)
	subRepo := &fakeSubRepo{active: map[int64]*subscription.Subscription{5: sub}}
	h := NewGetEntitlementHandler(subRepo, nil, logger.Nop())

	dto, err := h.Handle(context.Background(), GetEntitlementQuery{UserID: 5})
	require.NoError(t, err)

	assert.True(t, dto.Active)
	assert.Equal(t, int64(2), dto.PlanID)
	require.NotNil(t, dto.ExpiresAt)
}

func TestGetEntitlement_NoSubscription(t *testing.T) {
	h := NewGetEntitlementHandler(&fakeSubRepo{}, nil, logger.Nop())

	dto, err := h.Handle(context.Background(), GetEntitlementQuery{UserID: 5})
	require.NoError(t, err)

	assert.False(t, dto.Active)
	assert.Zero(t, dto.PlanID)
	assert.Nil(t, dto.ExpiresAt)
}

func TestGetEntitlement_ExpiredWindow(t *testing.T) {
	started := time.Now().UTC().Add(-40 * 24 * time.Hour)
	sub := subscription.New("sub-1", "pay_ref", 5, 2, started)
	subRepo := &fakeSubRepo{active: map[int64]*subscription.Subscription{5: sub}}
	h := NewGetEntitlementHandler(subRepo, nil, logger.Nop())

	dto, err := h.Handle(context.Background(), GetEntitlementQuery{UserID: 5})
	require.NoError(t, err)

	// Статус active, но окно истекло - доступа нет.
	assert.False(t, dto.Active)
}
