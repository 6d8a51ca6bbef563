// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"chalkstone_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published after a new account is stored.
type UserRegistered struct {
	BaseEvent
	UserID   uuid.UUID `json:"userId"`
	Username string    `json:"username"`
	UserType string    `json:"userType"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// =============================================================================
// Issue Domain Events
// =============================================================================

// IssueReported is published when a citizen report has been stored.
type IssueReported struct {
	BaseEvent
	IssueID    int64     `json:"issueId"`
	Type       string    `json:"type"`
	ReportedBy uuid.UUID `json:"reportedBy"`
}

func (e IssueReported) EventName() string { return "issues.reported" }

// IssueStatusChanged is published when staff move an issue to a new status.
type IssueStatusChanged struct {
	BaseEvent
	IssueID    int64     `json:"issueId"`
	OldStatus  string    `json:"oldStatus"`
	NewStatus  string    `json:"newStatus"`
	ReportedBy uuid.UUID `json:"reportedBy"`
	ChangedBy  uuid.UUID `json:"changedBy"`
}

func (e IssueStatusChanged) EventName() string { return "issues.status_changed" }

// IssueAssigned is published when the responsible engineer changes.
// EngineerID is nil when the issue was unassigned.
type IssueAssigned struct {
	BaseEvent
	IssueID    int64  `json:"issueId"`
	EngineerID *int64 `json:"engineerId,omitempty"`
}

func (e IssueAssigned) EventName() string { return "issues.assigned" }
