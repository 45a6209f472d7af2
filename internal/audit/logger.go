package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventSessionStart      EventType = "session_start"
	EventSessionEnd        EventType = "session_end"
	EventCheckInRecorded   EventType = "checkin_recorded"
	EventCheckInRejected   EventType = "checkin_rejected"
	EventInstructorCreate  EventType = "instructor_create"
	EventAuthFailure       EventType = "auth_failure"
	EventCapabilityDenied  EventType = "capability_denied"
	EventRateLimitExceeded EventType = "rate_limit_exceeded"
)

type Event struct {
	Type         EventType
	InstructorID string
	SessionID    string
	IP           string
	Details      map[string]interface{}
}

// Log emits a structured security/audit event. These lines share the
// "audit" marker so they can be filtered out of regular request logs.
func Log(ctx context.Context, event Event) {
	logger := log.With().
		Str("audit", "attendance").
		Str("event_type", string(event.Type)).
		Time("timestamp", time.Now()).
		Logger()

	if event.InstructorID != "" {
		logger = logger.With().Str("instructor_id", event.InstructorID).Logger()
	}
	if event.SessionID != "" {
		logger = logger.With().Str("session_id", event.SessionID).Logger()
	}
	if event.IP != "" {
		logger = logger.With().Str("ip", event.IP).Logger()
	}

	logEvent := logger.Info()
	for k, v := range event.Details {
		logEvent = logEvent.Interface(k, v)
	}
	logEvent.Msg("audit event")
}
