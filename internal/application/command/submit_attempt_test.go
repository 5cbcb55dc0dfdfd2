package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
)

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:            10,
		CourseID:      1,
		Title:         "Go basics",
		PassThreshold: 50,
		Status:        quiz.StatusActive,
		Questions: []quiz.Question{
			{
				ID: 101, QuizID: 10, Text: "q1", Type: quiz.QuestionTypeMultipleChoice,
				Options: []quiz.Option{
					{ID: 1001, QuestionID: 101, IsCorrect: true},
					{ID: 1002, QuestionID: 101},
				},
			},
			{
				ID: 102, QuizID: 10, Text: "q2", Type: quiz.QuestionTypeTrueFalse,
				Options: []quiz.Option{
					{ID: 1003, QuestionID: 102},
					{ID: 1004, QuestionID: 102, IsCorrect: true},
				},
			},
		},
	}
}

func newSubmitHandler(q *quiz.Quiz) (*SubmitAttemptHandler, *fakeAttemptRepo, *capturingPublisher) {
	quizRepo := &fakeQuizRepo{quizzes: map[int64]*quiz.Quiz{}}
	if q != nil {
		quizRepo.quizzes[q.ID] = q
	}
	attemptRepo := &fakeAttemptRepo{}
	pub := &capturingPublisher{}
	return NewSubmitAttemptHandler(quizRepo, attemptRepo, pub), attemptRepo, pub
}

func TestSubmitAttempt_AllCorrect(t *testing.T) {
	h, attemptRepo, pub := newSubmitHandler(testQuiz())

	result, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID: 7,
		QuizID: 10,
		Answers: []SubmittedAnswer{
			{QuestionID: 101, SelectedOptionID: 1001},
			{QuestionID: 102, SelectedOptionID: 1004},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 2, result.CorrectCount)
	assert.True(t, result.Passed)
	assert.NotEmpty(t, result.AttemptID)

	require.Len(t, attemptRepo.attempts, 1)
	assert.Equal(t, result.AttemptID, attemptRepo.attempts[0].ID)
	assert.Len(t, pub.byType(shared.EventAttemptGraded), 1)
}

func TestSubmitAttempt_DuplicateAnswersDoNotInflateScore(t *testing.T) {
	h, attemptRepo, _ := newSubmitHandler(testQuiz())

	// Validate accepts repeats of the same question; grading must still
	// keep the score and correct count within the question set.
	result, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID: 7,
		QuizID: 10,
		Answers: []SubmittedAnswer{
			{QuestionID: 101, SelectedOptionID: 1001},
			{QuestionID: 101, SelectedOptionID: 1001},
			{QuestionID: 101, SelectedOptionID: 1001},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 1, result.CorrectCount)
	assert.LessOrEqual(t, result.CorrectCount, result.TotalQuestions)

	// Every submitted answer is still recorded on the attempt.
	require.Len(t, attemptRepo.attempts, 1)
	assert.Len(t, attemptRepo.attempts[0].Answers, 3)
}

func TestSubmitAttempt_OmittedQuestionsCountWrong(t *testing.T) {
	h, _, _ := newSubmitHandler(testQuiz())

	result, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID: 7,
		QuizID: 10,
		Answers: []SubmittedAnswer{
			{QuestionID: 101, SelectedOptionID: 1001},
		},
	})
	require.NoError(t, err)

	// One of two questions answered: 50, passes at threshold 50.
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.True(t, result.Passed)
}

func TestSubmitAttempt_EmptySubmission(t *testing.T) {
	h, attemptRepo, _ := newSubmitHandler(testQuiz())

	result, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID: 7,
		QuizID: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.Passed)
	assert.Empty(t, result.Results)
	// Even a zero-score attempt is recorded.
	assert.Len(t, attemptRepo.attempts, 1)
}

func TestSubmitAttempt_QuizNotFound(t *testing.T) {
	h, _, _ := newSubmitHandler(nil)

	_, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID:  7,
		QuizID:  99,
		Answers: []SubmittedAnswer{{QuestionID: 1, SelectedOptionID: 1}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitAttempt_InactiveQuizHidden(t *testing.T) {
	q := testQuiz()
	q.Status = quiz.StatusInactive
	h, attemptRepo, _ := newSubmitHandler(q)

	_, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID:  7,
		QuizID:  10,
		Answers: []SubmittedAnswer{{QuestionID: 101, SelectedOptionID: 1001}},
	})

	// Inactive grades like missing: same not-found class for the caller.
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, attemptRepo.attempts)
}

func TestSubmitAttempt_Validation(t *testing.T) {
	h, _, _ := newSubmitHandler(testQuiz())

	_, err := h.Handle(context.Background(), SubmitAttemptCommand{UserID: 0, QuizID: 10})
	assert.True(t, shared.IsValidation(err))

	_, err = h.Handle(context.Background(), SubmitAttemptCommand{
		UserID:  7,
		QuizID:  10,
		Answers: []SubmittedAnswer{{QuestionID: 101, SelectedOptionID: 0}},
	})
	assert.True(t, shared.IsValidation(err))
}

func TestSubmitAttempt_PersistFailure(t *testing.T) {
	h, attemptRepo, pub := newSubmitHandler(testQuiz())
	attemptRepo.failNext = shared.ErrInternal

	_, err := h.Handle(context.Background(), SubmitAttemptCommand{
		UserID:  7,
		QuizID:  10,
		Answers: []SubmittedAnswer{{QuestionID: 101, SelectedOptionID: 1001}},
	})
	require.Error(t, err)
	assert.Empty(t, pub.byType(shared.EventAttemptGraded), "no event for a failed write")
}
