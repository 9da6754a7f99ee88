package domain

import "time"

// ReportStatus enumerates lifecycle states for reports.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "Pending"
	ReportStatusInProgress ReportStatus = "In Progress"
	ReportStatusResolved   ReportStatus = "Resolved"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case ReportStatusPending, ReportStatusInProgress, ReportStatusResolved:
		return true
	}
	return false
}

// ReportPriority enumerates triage urgency.
type ReportPriority string

const (
	ReportPriorityLow    ReportPriority = "Low"
	ReportPriorityMedium ReportPriority = "Medium"
	ReportPriorityHigh   ReportPriority = "High"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p ReportPriority) bool {
	switch p {
	case ReportPriorityLow, ReportPriorityMedium, ReportPriorityHigh:
		return true
	}
	return false
}

// Report is the aggregate for resident-submitted issues.
//
// ReporterName is denormalized from the submitting user at write time and is
// not kept in sync with later username changes. SubmittedAt is a preformatted
// display timestamp; CreatedAt is the authoritative creation instant.
type Report struct {
	ID              int64
	OwnerID         int64
	ReporterName    string
	ProblemType     string
	Location        string
	Issue           string
	SubmittedAt     string
	Status          ReportStatus
	Priority        ReportPriority
	Photo           *string
	Latitude        *float64
	Longitude       *float64
	ResolutionNotes *string
	CreatedAt       time.Time
}
