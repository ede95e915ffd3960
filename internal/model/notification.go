package model

import (
	"encoding/json"
	"time"
)

type InsightType string

const (
	InsightProductivityTip    InsightType = "ProductivityTip"
	InsightTaskPrioritization InsightType = "TaskPrioritization"
	InsightTimeManagement     InsightType = "TimeManagement"
	InsightPatternRecognition InsightType = "PatternRecognition"
	InsightAccountability     InsightType = "Accountability"
)

type Insight struct {
	ID          string      `json:"id"`
	Message     string      `json:"message"`
	InsightType InsightType `json:"insight_type"`
	Confidence  float64     `json:"confidence"`
	CreatedAt   time.Time   `json:"created_at"`
}

type NotificationType string

const (
	NotificationAccountability NotificationType = "Accountability"
	NotificationTaskReminder   NotificationType = "TaskReminder"
	NotificationDeadline       NotificationType = "Deadline"
	NotificationAchievement    NotificationType = "Achievement"
	NotificationCommunication  NotificationType = "Communication"
	NotificationInsight        NotificationType = "Insight"
)

type Notification struct {
	ID               string           `json:"id"`
	UserID           string           `json:"-"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	NotificationType NotificationType `json:"notification_type"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
	ActionURL        *string          `json:"action_url,omitempty"`
}

type CommunicationActivity struct {
	Service          string     `json:"service"`
	Connected        bool       `json:"connected"`
	MessageCount     int        `json:"message_count"`
	UnreadCount      int        `json:"unread_count"`
	LastActivity     *time.Time `json:"last_activity,omitempty"`
	Mentions         int        `json:"mentions"`
	KeywordsDetected []string   `json:"keywords_detected"`
}

type EventType string

const (
	EventNotification        EventType = "notification"
	EventTaskUpdated         EventType = "task_updated"
	EventCommunicationUpdate EventType = "communication_update"
	EventAccountabilityCheck EventType = "accountability_check"
)

// Event is a push message delivered asynchronously to clients.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

// NewEvent marshals payload into an Event stamped with at.
func NewEvent(typ EventType, payload any, at time.Time) (Event, error) {
	e := Event{Type: typ, At: at}
	if payload == nil {
		return e, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	e.Payload = raw
	return e, nil
}
