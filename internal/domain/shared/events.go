// Package shared contains common domain types, errors and events
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven cache invalidation.
// Each event represents something significant that happened in the domain.
const (
	// Quiz events
	EventAttemptGraded EventType = "quiz.attempt_graded"

	// Progress events
	EventProgressUpdated EventType = "course.progress_updated"
	EventCourseCompleted EventType = "course.completed"

	// Subscription events
	EventSubscriptionCreated   EventType = "subscription.created"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
	EventPlanChanged           EventType = "subscription.plan_changed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a domain event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to interested subscribers.
// Command handlers depend on this narrow interface instead of the full bus.
type EventPublisher interface {
	Publish(event Event) error
}

// EventBus delivers domain events to subscribed handlers.
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for every event.
	SubscribeAll(handler EventHandler) error

	// Close shuts the bus down and waits for in-flight handlers.
	Close() error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Quiz Events
// ═══════════════════════════════════════════════════════════════════════════

// AttemptGradedEvent is emitted when a quiz submission has been graded.
type AttemptGradedEvent struct {
	BaseEvent
	UserID       int64 `json:"user_id"`
	QuizID       int64 `json:"quiz_id"`
	Score        int   `json:"score"`
	CorrectCount int   `json:"correct_count"`
	Passed       bool  `json:"passed"`
}

// Payload implements Event interface.
func (e AttemptGradedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"quiz_id":       e.QuizID,
		"score":         e.Score,
		"correct_count": e.CorrectCount,
		"passed":        e.Passed,
	}
}

// NewAttemptGradedEvent creates a new AttemptGradedEvent.
func NewAttemptGradedEvent(attemptID string, userID, quizID int64, score, correctCount int, passed bool) AttemptGradedEvent {
	return AttemptGradedEvent{
		BaseEvent:    NewBaseEvent(EventAttemptGraded, attemptID),
		UserID:       userID,
		QuizID:       quizID,
		Score:        score,
		CorrectCount: correctCount,
		Passed:       passed,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// ProgressUpdatedEvent is emitted on every progress write.
type ProgressUpdatedEvent struct {
	BaseEvent
	UserID     int64 `json:"user_id"`
	CourseID   int64 `json:"course_id"`
	Percentage int   `json:"percentage"`
}

// Payload implements Event interface.
func (e ProgressUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"course_id":  e.CourseID,
		"percentage": e.Percentage,
	}
}

// NewProgressUpdatedEvent creates a new ProgressUpdatedEvent.
func NewProgressUpdatedEvent(aggregateID string, userID, courseID int64, percentage int) ProgressUpdatedEvent {
	return ProgressUpdatedEvent{
		BaseEvent:  NewBaseEvent(EventProgressUpdated, aggregateID),
		UserID:     userID,
		CourseID:   courseID,
		Percentage: percentage,
	}
}

// CourseCompletedEvent is emitted the first time a course reaches 100%.
type CourseCompletedEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	CourseID int64 `json:"course_id"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"course_id": e.CourseID,
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(aggregateID string, userID, courseID int64) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent: NewBaseEvent(EventCourseCompleted, aggregateID),
		UserID:    userID,
		CourseID:  courseID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Subscription Events
// ═══════════════════════════════════════════════════════════════════════════

// SubscriptionChangedEvent is emitted on any entitlement transition.
// Kind distinguishes created / cancelled / plan_changed.
type SubscriptionChangedEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
	PlanID int64 `json:"plan_id"`
}

// Payload implements Event interface.
func (e SubscriptionChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"plan_id": e.PlanID,
	}
}

// NewSubscriptionChangedEvent creates a new SubscriptionChangedEvent with the
// given kind (one of the subscription.* event types).
func NewSubscriptionChangedEvent(kind EventType, subscriptionID string, userID, planID int64) SubscriptionChangedEvent {
	return SubscriptionChangedEvent{
		BaseEvent: NewBaseEvent(kind, subscriptionID),
		UserID:    userID,
		PlanID:    planID,
	}
}
