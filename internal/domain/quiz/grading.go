package quiz

import (
	"time"
)

// Answer is one submitted (question, selected option) pair.
type Answer struct {
	QuestionID       int64
	SelectedOptionID int64
}

// QuestionResult is the per-question diagnostic returned to the learner.
type QuestionResult struct {
	QuestionID      int64
	Correct         bool
	CorrectOptionID int64 // 0 when the question is unknown to the quiz
	Counted         bool  // false for unknown questions and repeated answers
}

// GradedSubmission is the outcome of grading one answer set against a quiz.
type GradedSubmission struct {
	Score          int // 0-100, floored
	TotalQuestions int
	CorrectCount   int
	Passed         bool
	Results        []QuestionResult
}

// Grade scores a submitted answer set against the quiz definition.
//
// The total is always the quiz's real question count, not len(answers):
// a submission that omits questions is scored as if those were answered
// wrong. Answers referencing questions outside the quiz are never correct
// and are echoed back with Counted=false. Each question is scored at most
// once: the first answer for a question wins and any repeat is echoed
// back uncounted, so correct can never exceed total. A quiz with zero
// questions grades to score 0.
func Grade(q *Quiz, answers []Answer) GradedSubmission {
	correctByQuestion := make(map[int64]int64, len(q.Questions))
	for i := range q.Questions {
		if id := q.Questions[i].CorrectOptionID(); id != 0 {
			correctByQuestion[q.Questions[i].ID] = id
		}
	}
	known := make(map[int64]bool, len(q.Questions))
	for i := range q.Questions {
		known[q.Questions[i].ID] = true
	}

	total := len(q.Questions)
	correct := 0
	results := make([]QuestionResult, 0, len(answers))
	scored := make(map[int64]bool, len(answers))

	for _, ans := range answers {
		correctID, hasCorrect := correctByQuestion[ans.QuestionID]
		isCorrect := hasCorrect && ans.SelectedOptionID == correctID
		counted := known[ans.QuestionID] && !scored[ans.QuestionID]
		if counted {
			scored[ans.QuestionID] = true
			if isCorrect {
				correct++
			}
		}
		results = append(results, QuestionResult{
			QuestionID:      ans.QuestionID,
			Correct:         isCorrect,
			CorrectOptionID: correctID,
			Counted:         counted,
		})
	}

	score := 0
	if total > 0 {
		score = correct * 100 / total
	}

	return GradedSubmission{
		Score:          score,
		TotalQuestions: total,
		CorrectCount:   correct,
		Passed:         score >= q.PassThreshold,
		Results:        results,
	}
}

// NewAttempt materializes a graded submission into an immutable attempt
// ready for persistence. The caller supplies the attempt ID and timestamp
// so grading itself stays pure.
func NewAttempt(id string, userID int64, q *Quiz, answers []Answer, graded GradedSubmission, now time.Time) *Attempt {
	attempt := &Attempt{
		ID:             id,
		UserID:         userID,
		QuizID:         q.ID,
		Score:          graded.Score,
		TotalQuestions: graded.TotalQuestions,
		CorrectCount:   graded.CorrectCount,
		Passed:         graded.Passed,
		CreatedAt:      now,
		Answers:        make([]AnswerRecord, 0, len(answers)),
	}
	for i, ans := range answers {
		attempt.Answers = append(attempt.Answers, AnswerRecord{
			AttemptID:        id,
			QuestionID:       ans.QuestionID,
			SelectedOptionID: ans.SelectedOptionID,
			Correct:          graded.Results[i].Correct,
		})
	}
	return attempt
}
