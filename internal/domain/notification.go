package domain

import "time"

// NotificationTypeStatusUpdate is the default ledger entry type.
const NotificationTypeStatusUpdate = "status_update"

// Notification is a one-way, read-on-list message to a user about a
// report-lifecycle event. ReportID is nil for non-report notifications.
type Notification struct {
	ID          int64
	RecipientID int64
	ReportID    *int64
	Message     string
	Type        string
	IsRead      bool
	CreatedAt   time.Time
}
