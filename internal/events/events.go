package events

import (
	"context"
	"time"

	"github.com/gdgoc-itb/lms-service/internal/models"
)

const (
	eventSource  = "lms-service"
	eventVersion = "1.0"
)

// Event types
const (
	TypeUserRegistered      = "user.registered"
	TypeProblemSetSubmitted = "problem_set.submitted"
	TypeProblemSetGraded    = "problem_set.graded"
	TypeEventRSVP           = "event.rsvp"
	TypeEventRSVPCancelled  = "event.rsvp_cancelled"
	TypeCertificateIssued   = "certificate.issued"
)

// Event is the envelope written to the bus.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher delivers domain events. Publishing is best effort for callers.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
	Close() error
}

type UserRegisteredEvent struct {
	UserID string             `json:"userId"`
	Email  string             `json:"email"`
	Access models.AccessLevel `json:"access"`
	By     string             `json:"by,omitempty"`
}

type SubmissionEvent struct {
	UserID        string    `json:"userId"`
	ProblemSetID  uint      `json:"problemSetId"`
	PathID        uint      `json:"pathId"`
	SubmissionURL string    `json:"submissionUrl"`
	FirstSubmit   bool      `json:"firstSubmit"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

type GradedEvent struct {
	UserID       string `json:"userId"`
	ProblemSetID uint   `json:"problemSetId"`
	Grade        int    `json:"grade"`
	Passed       bool   `json:"passed"`
	GradedBy     string `json:"gradedBy"`
}

type RSVPEvent struct {
	EventID uint             `json:"eventId"`
	Kind    models.EventKind `json:"kind"`
	UserID  string           `json:"userId"`
}

type CertificateIssuedEvent struct {
	CertificateID string `json:"certificateId"`
	UserID        string `json:"userId"`
	PathID        uint   `json:"pathId"`
}
