package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/learning-platform/internal/domain/quiz"
	"github.com/learnhub/learning-platform/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// QuizRepository implements quiz.Repository and quiz.AttemptRepository
// for PostgreSQL.
type QuizRepository struct {
	conn *Connection
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(conn *Connection) *QuizRepository {
	return &QuizRepository{conn: conn}
}

// GetByID returns a quiz with its questions and options loaded.
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*quiz.Quiz, error) {
	query := `
		SELECT id, course_id, title, description, time_limit_minutes,
			   pass_threshold, status, created_at, updated_at
		FROM quizzes
		WHERE id = $1
	`

	q := &quiz.Quiz{}
	err := r.conn.QueryRow(ctx, query, id).Scan(
		&q.ID,
		&q.CourseID,
		&q.Title,
		&q.Description,
		&q.TimeLimitMinutes,
		&q.PassThreshold,
		&q.Status,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := r.loadQuestions(ctx, q); err != nil {
		return nil, err
	}

	return q, nil
}

// loadQuestions fills in the quiz's questions and their options.
func (r *QuizRepository) loadQuestions(ctx context.Context, q *quiz.Quiz) error {
	query := `
		SELECT id, quiz_id, text, question_type, sort_order
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY sort_order, id
	`

	rows, err := r.conn.Query(ctx, query, q.ID)
	if err != nil {
		return fmt.Errorf("failed to query questions: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]int) // question id -> index in q.Questions
	for rows.Next() {
		var question quiz.Question
		if err := rows.Scan(
			&question.ID,
			&question.QuizID,
			&question.Text,
			&question.Type,
			&question.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to scan question: %w", err)
		}
		byID[question.ID] = len(q.Questions)
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(q.Questions) == 0 {
		return nil
	}

	optQuery := `
		SELECT o.id, o.question_id, o.text, o.is_correct, o.sort_order
		FROM quiz_question_options o
		JOIN quiz_questions qq ON qq.id = o.question_id
		WHERE qq.quiz_id = $1
		ORDER BY o.question_id, o.sort_order, o.id
	`

	optRows, err := r.conn.Query(ctx, optQuery, q.ID)
	if err != nil {
		return fmt.Errorf("failed to query options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt quiz.Option
		if err := optRows.Scan(
			&opt.ID,
			&opt.QuestionID,
			&opt.Text,
			&opt.IsCorrect,
			&opt.SortOrder,
		); err != nil {
			return fmt.Errorf("failed to scan option: %w", err)
		}
		if idx, ok := byID[opt.QuestionID]; ok {
			q.Questions[idx].Options = append(q.Questions[idx].Options, opt)
		}
	}

	return optRows.Err()
}

// CreateAttempt persists an attempt and all of its answer records in a
// single transaction. A failed insert rolls back every row of the attempt.
func (r *QuizRepository) CreateAttempt(ctx context.Context, attempt *quiz.Attempt) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		attemptQuery := `
			INSERT INTO quiz_attempts (
				id, user_id, quiz_id, score, total_questions,
				correct_count, passed, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`

		_, err := tx.Exec(ctx, attemptQuery,
			attempt.ID,
			attempt.UserID,
			attempt.QuizID,
			attempt.Score,
			attempt.TotalQuestions,
			attempt.CorrectCount,
			attempt.Passed,
			attempt.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attempt: %w", err)
		}

		answerQuery := `
			INSERT INTO quiz_attempt_answers (
				attempt_id, question_id, selected_option_id, is_correct
			) VALUES ($1, $2, $3, $4)
		`

		for i := range attempt.Answers {
			a := &attempt.Answers[i]
			_, err := tx.Exec(ctx, answerQuery,
				a.AttemptID,
				a.QuestionID,
				a.SelectedOptionID,
				a.Correct,
			)
			if err != nil {
				return fmt.Errorf("failed to insert answer record: %w", err)
			}
		}

		return nil
	})
}

// ListByUser returns the attempt history for a user, newest first.
// Answer records are not loaded; history listings only need the totals.
func (r *QuizRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]quiz.Attempt, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, user_id, quiz_id, score, total_questions,
			   correct_count, passed, created_at
		FROM quiz_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []quiz.Attempt
	for rows.Next() {
		var a quiz.Attempt
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.QuizID,
			&a.Score,
			&a.TotalQuestions,
			&a.CorrectCount,
			&a.Passed,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}
