package domain

import "time"

// AuthEventType classifies an entry of the authentication audit trail.
type AuthEventType string

const (
	EventRegistered           AuthEventType = "registered"
	EventRegistrationRejected AuthEventType = "registration_rejected"
	EventLoginSucceeded       AuthEventType = "login_succeeded"
	EventLoginFailed          AuthEventType = "login_failed"
	EventLoginThrottled       AuthEventType = "login_throttled"
)

// AuthEvent records the outcome of a register or login attempt. It never
// carries credentials.
type AuthEvent struct {
	Type       AuthEventType `json:"type" bson:"type"`
	Username   string        `json:"username" bson:"username"`
	Role       Role          `json:"role,omitempty" bson:"role,omitempty"`
	OccurredAt time.Time     `json:"occurred_at" bson:"occurred_at"`
}
