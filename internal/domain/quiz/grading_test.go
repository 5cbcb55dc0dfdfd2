package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuiz(threshold int, questions ...Question) *Quiz {
	return &Quiz{
		ID:            1,
		CourseID:      10,
		Title:         "Go basics",
		PassThreshold: threshold,
		Status:        StatusActive,
		Questions:     questions,
	}
}

func makeQuestion(id int64, correctOptionID int64, optionIDs ...int64) Question {
	q := Question{ID: id, QuizID: 1, Type: QuestionTypeMultipleChoice}
	for _, oid := range optionIDs {
		q.Options = append(q.Options, Option{
			ID:         oid,
			QuestionID: id,
			IsCorrect:  oid == correctOptionID,
		})
	}
	return q
}

func TestGrade_AllCorrect(t *testing.T) {
	q := makeQuiz(70,
		makeQuestion(1, 11, 11, 12),
		makeQuestion(2, 22, 21, 22),
		makeQuestion(3, 31, 31, 32),
	)

	graded := Grade(q, []Answer{
		{QuestionID: 1, SelectedOptionID: 11},
		{QuestionID: 2, SelectedOptionID: 22},
		{QuestionID: 3, SelectedOptionID: 31},
	})

	assert.Equal(t, 100, graded.Score)
	assert.Equal(t, 3, graded.TotalQuestions)
	assert.Equal(t, 3, graded.CorrectCount)
	assert.True(t, graded.Passed)
}

func TestGrade_HalfCorrect(t *testing.T) {
	// Two questions, one answered right and one wrong: score 50.
	q := makeQuiz(50,
		makeQuestion(1, 11, 11, 12),
		makeQuestion(2, 22, 21, 22),
	)

	graded := Grade(q, []Answer{
		{QuestionID: 1, SelectedOptionID: 11},
		{QuestionID: 2, SelectedOptionID: 21},
	})

	assert.Equal(t, 50, graded.Score)
	assert.Equal(t, 2, graded.TotalQuestions)
	assert.Equal(t, 1, graded.CorrectCount)
	assert.True(t, graded.Passed, "threshold 50 is met by score 50")
}

func TestGrade_EmptySubmission(t *testing.T) {
	q := makeQuiz(60, makeQuestion(1, 11, 11, 12), makeQuestion(2, 22, 21, 22))

	graded := Grade(q, nil)

	assert.Equal(t, 0, graded.Score)
	assert.Equal(t, 2, graded.TotalQuestions)
	assert.Equal(t, 0, graded.CorrectCount)
	assert.False(t, graded.Passed)
	assert.Empty(t, graded.Results)
}

func TestGrade_OmittedQuestionsCountAsWrong(t *testing.T) {
	// Three questions, only one answered: 1/3 = 33 (floored).
	q := makeQuiz(30,
		makeQuestion(1, 11, 11, 12),
		makeQuestion(2, 22, 21, 22),
		makeQuestion(3, 31, 31, 32),
	)

	graded := Grade(q, []Answer{{QuestionID: 1, SelectedOptionID: 11}})

	assert.Equal(t, 33, graded.Score)
	assert.Equal(t, 3, graded.TotalQuestions)
	assert.Equal(t, 1, graded.CorrectCount)
	assert.True(t, graded.Passed)
}

func TestGrade_UnknownQuestionNeverCorrect(t *testing.T) {
	q := makeQuiz(0, makeQuestion(1, 11, 11, 12))

	graded := Grade(q, []Answer{
		{QuestionID: 1, SelectedOptionID: 11},
		{QuestionID: 999, SelectedOptionID: 11},
	})

	assert.Equal(t, 100, graded.Score)
	assert.Equal(t, 1, graded.CorrectCount)
	require.Len(t, graded.Results, 2)
	assert.True(t, graded.Results[0].Counted)
	assert.False(t, graded.Results[1].Correct)
	assert.False(t, graded.Results[1].Counted)
	assert.Zero(t, graded.Results[1].CorrectOptionID)
}

func TestGrade_DuplicateAnswersScoredOnce(t *testing.T) {
	// Repeating the same correct answer must not inflate the score past
	// the question count: 1 of 2 questions right is 50, not 150.
	q := makeQuiz(50, makeQuestion(1, 11, 11, 12), makeQuestion(2, 22, 21, 22))

	graded := Grade(q, []Answer{
		{QuestionID: 1, SelectedOptionID: 11},
		{QuestionID: 1, SelectedOptionID: 11},
		{QuestionID: 1, SelectedOptionID: 11},
	})

	assert.Equal(t, 50, graded.Score)
	assert.Equal(t, 2, graded.TotalQuestions)
	assert.Equal(t, 1, graded.CorrectCount)
	require.Len(t, graded.Results, 3)
	assert.True(t, graded.Results[0].Counted)
	assert.False(t, graded.Results[1].Counted)
	assert.False(t, graded.Results[2].Counted)
}

func TestGrade_FirstAnswerWins(t *testing.T) {
	// A correct repeat cannot overturn an earlier wrong answer.
	q := makeQuiz(0, makeQuestion(1, 11, 11, 12))

	graded := Grade(q, []Answer{
		{QuestionID: 1, SelectedOptionID: 12},
		{QuestionID: 1, SelectedOptionID: 11},
	})

	assert.Equal(t, 0, graded.Score)
	assert.Equal(t, 0, graded.CorrectCount)
	require.Len(t, graded.Results, 2)
	assert.False(t, graded.Results[0].Correct)
	assert.True(t, graded.Results[0].Counted)
	// The repeat is echoed back but carries no weight.
	assert.True(t, graded.Results[1].Correct)
	assert.False(t, graded.Results[1].Counted)
}

func TestGrade_ZeroQuestions(t *testing.T) {
	// A quiz with no questions grades to 0 without dividing by zero.
	q := makeQuiz(50)

	graded := Grade(q, []Answer{{QuestionID: 1, SelectedOptionID: 1}})

	assert.Equal(t, 0, graded.Score)
	assert.Equal(t, 0, graded.TotalQuestions)
	assert.Equal(t, 0, graded.CorrectCount)
	assert.False(t, graded.Passed)

	// Threshold 0 passes even with score 0.
	graded = Grade(makeQuiz(0), nil)
	assert.True(t, graded.Passed)
}

func TestGrade_ScoreBounds(t *testing.T) {
	cases := []struct {
		name    string
		answers []Answer
	}{
		{"none", nil},
		{"all", []Answer{{1, 11}, {2, 22}}},
		{"extra unknown", []Answer{{1, 11}, {2, 22}, {3, 1}, {4, 2}}},
		{"all wrong", []Answer{{1, 12}, {2, 21}}},
		{"duplicates", []Answer{{1, 11}, {1, 11}, {1, 11}, {2, 22}, {2, 22}}},
	}

	q := makeQuiz(50, makeQuestion(1, 11, 11, 12), makeQuestion(2, 22, 21, 22))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			graded := Grade(q, tc.answers)
			assert.GreaterOrEqual(t, graded.Score, 0)
			assert.LessOrEqual(t, graded.Score, 100)
			assert.LessOrEqual(t, graded.CorrectCount, graded.TotalQuestions)
		})
	}
}

func TestCorrectOptionID_LowestWins(t *testing.T) {
	// Two options flagged correct: grading must deterministically pick
	// the lowest option ID.
	q := Question{
		ID: 1,
		Options: []Option{
			{ID: 30, IsCorrect: true},
			{ID: 20, IsCorrect: true},
			{ID: 10, IsCorrect: false},
		},
	}
	assert.Equal(t, int64(20), q.CorrectOptionID())
}

func TestCorrectOptionID_NoneFlagged(t *testing.T) {
	q := Question{ID: 1, Options: []Option{{ID: 1}, {ID: 2}}}
	assert.Zero(t, q.CorrectOptionID())

	// A question without a correct option can never be answered correctly.
	quiz := makeQuiz(0, q)
	graded := Grade(quiz, []Answer{{QuestionID: 1, SelectedOptionID: 1}})
	assert.Equal(t, 0, graded.CorrectCount)
}

func TestNewAttempt_SnapshotsAnswers(t *testing.T) {
	q := makeQuiz(50, makeQuestion(1, 11, 11, 12), makeQuestion(2, 22, 21, 22))
	answers := []Answer{
		{QuestionID: 1, SelectedOptionID: 11},
		{QuestionID: 999, SelectedOptionID: 5},
	}
	graded := Grade(q, answers)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	attempt := NewAttempt("att-1", 42, q, answers, graded, now)

	assert.Equal(t, "att-1", attempt.ID)
	assert.Equal(t, int64(42), attempt.UserID)
	assert.Equal(t, q.ID, attempt.QuizID)
	assert.Equal(t, graded.Score, attempt.Score)
	assert.Equal(t, now, attempt.CreatedAt)
	require.Len(t, attempt.Answers, 2)
	assert.True(t, attempt.Answers[0].Correct)
	// Unknown-question answers are recorded, marked not correct.
	assert.Equal(t, int64(999), attempt.Answers[1].QuestionID)
	assert.False(t, attempt.Answers[1].Correct)
}

func TestQuizValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Quiz)
		wantErr error
	}{
		{"valid", func(q *Quiz) {}, nil},
		{"bad id", func(q *Quiz) { q.ID = 0 }, ErrInvalidQuizID},
		{"empty title", func(q *Quiz) { q.Title = "" }, ErrEmptyTitle},
		{"threshold high", func(q *Quiz) { q.PassThreshold = 101 }, ErrInvalidThreshold},
		{"threshold negative", func(q *Quiz) { q.PassThreshold = -1 }, ErrInvalidThreshold},
		{"bad status", func(q *Quiz) { q.Status = "draft" }, ErrInvalidStatus},
		{"duplicate question", func(q *Quiz) {
			q.Questions = append(q.Questions, q.Questions[0])
		}, ErrDuplicateQuestion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := makeQuiz(70, makeQuestion(1, 11, 11, 12))
			tt.mutate(q)
			err := q.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
