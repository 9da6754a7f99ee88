package events

import (
	"time"

	"github.com/spec-kit/report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportSubmitted     EventType = "report_submitted"
	EventReportStatusChanged EventType = "report_status_changed"
	EventReportResolved      EventType = "report_resolved"
	EventReportDeleted       EventType = "report_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64           `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ReportID  int64       `json:"report_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportSubmittedPayload payload.
type ReportSubmittedPayload struct {
	ProblemType string                `json:"problem_type"`
	Location    string                `json:"location"`
	Priority    domain.ReportPriority `json:"priority"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus domain.ReportStatus `json:"old_status"`
	NewStatus domain.ReportStatus `json:"new_status"`
}

// ReportResolvedPayload carries everything the mail worker needs so it never
// touches the database on the dispatch path.
type ReportResolvedPayload struct {
	OwnerID         int64  `json:"owner_id"`
	OwnerUsername   string `json:"owner_username"`
	OwnerEmail      string `json:"owner_email"`
	ProblemType     string `json:"problem_type"`
	Location        string `json:"location"`
	ResolutionNotes string `json:"resolution_notes"`
	AdminID         int64  `json:"admin_id"`
	AdminUsername   string `json:"admin_username"`
}

// ReportDeletedPayload payload.
type ReportDeletedPayload struct {
	OwnerID     int64  `json:"owner_id"`
	ProblemType string `json:"problem_type"`
}
