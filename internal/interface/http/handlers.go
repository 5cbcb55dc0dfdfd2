package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/learnhub/learning-platform/internal/application/command"
	"github.com/learnhub/learning-platform/internal/application/query"
	"github.com/learnhub/learning-platform/internal/domain/shared"
	"github.com/learnhub/learning-platform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DECODING
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body into dst, limiting its size.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Request body is empty")
		} else {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body")
		}
		return false
	}
	return true
}

// pathID extracts a positive int64 path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", "Resource not found")
	case shared.IsConflict(err):
		writeJSONError(w, http.StatusConflict, "conflict", "The resource was modified concurrently, retry the request")
	case shared.IsInvalidState(err):
		writeJSONError(w, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	case errors.Is(err, shared.ErrServiceUnavailable):
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "A backing service is unavailable, retry later")
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
	default:
		s.logger.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
			logger.Err(err),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type submitAttemptRequest struct {
	Answers []struct {
		QuestionID       int64 `json:"question_id"`
		SelectedOptionID int64 `json:"selected_option_id"`
	} `json:"answers"`
}

// handleSubmitAttempt POST /api/v1/quizzes/{quizID}/submit
func (s *Server) handleSubmitAttempt(w http.ResponseWriter, r *http.Request) {
	quizID, ok := pathID(r, "quizID")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid quiz ID")
		return
	}

	var req submitAttemptRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.SubmitAttemptCommand{
		UserID: userIDFromContext(r.Context()),
		QuizID: quizID,
	}
	for _, a := range req.Answers {
		cmd.Answers = append(cmd.Answers, command.SubmittedAnswer{
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
		})
	}

	result, err := s.deps.SubmitAttempt.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleGetQuizHistory GET /api/v1/users/me/attempts
func (s *Server) handleGetQuizHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := s.deps.GetQuizHistory.Handle(r.Context(), query.GetQuizHistoryQuery{
		UserID: userIDFromContext(r.Context()),
		Limit:  limit,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type updateProgressRequest struct {
	CurrentVideoID *int64 `json:"current_video_id"`
	WatchedSeconds int    `json:"watched_seconds"`
	IsCompleted    bool   `json:"is_completed"`
}

// handleUpdateProgress PUT /api/v1/courses/{courseID}/progress
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "courseID")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid course ID")
		return
	}

	var req updateProgressRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.UpdateProgress.Handle(r.Context(), command.UpdateProgressCommand{
		UserID:         userIDFromContext(r.Context()),
		CourseID:       courseID,
		CurrentVideoID: req.CurrentVideoID,
		WatchedSeconds: req.WatchedSeconds,
		IsCompleted:    req.IsCompleted,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetCourseProgress GET /api/v1/courses/{courseID}/progress
func (s *Server) handleGetCourseProgress(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(r, "courseID")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid course ID")
		return
	}

	result, err := s.deps.GetCourseProgress.Handle(r.Context(), query.GetCourseProgressQuery{
		UserID:   userIDFromContext(r.Context()),
		CourseID: courseID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetLearnerStats GET /api/v1/users/me/stats
func (s *Server) handleGetLearnerStats(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetLearnerStats.Handle(r.Context(), query.GetLearnerStatsQuery{
		UserID: userIDFromContext(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBSCRIPTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type planRequest struct {
	PlanID int64 `json:"plan_id"`
}

type subscribeRequest struct {
	PlanID          int64  `json:"plan_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

// handleListPlans GET /api/v1/plans
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.ListPlans.Handle(r.Context(), query.ListPlansQuery{})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSubscribe POST /api/v1/subscriptions/subscribe
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.Subscribe.Handle(r.Context(), command.SubscribeCommand{
		UserID:          userIDFromContext(r.Context()),
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleCancelSubscription POST /api/v1/subscriptions/cancel
func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.CancelSubscription.Handle(r.Context(), command.CancelSubscriptionCommand{
		UserID: userIDFromContext(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleChangePlan POST /api/v1/subscriptions/change-plan
func (s *Server) handleChangePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.ChangePlan.Handle(r.Context(), command.ChangePlanCommand{
		UserID: userIDFromContext(r.Context()),
		PlanID: req.PlanID,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// handleGetEntitlement GET /api/v1/users/me/entitlement
func (s *Server) handleGetEntitlement(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.GetEntitlement.Handle(r.Context(), query.GetEntitlementQuery{
		UserID: userIDFromContext(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
