package domain

import "time"

// AdminAction tags the kind of privileged operation recorded.
type AdminAction string

const (
	ActionUpdateStatus  AdminAction = "UPDATE_STATUS"
	ActionResolveReport AdminAction = "RESOLVE_REPORT"
	ActionDeleteReport  AdminAction = "DELETE_REPORT"
	ActionEmailSent     AdminAction = "EMAIL_SENT"
)

// AdminLog is an append-only record of a privileged actor's action.
type AdminLog struct {
	ID         int64
	AdminID    int64
	Action     AdminAction
	TargetType string
	TargetID   *int64
	Details    *string
	CreatedAt  time.Time
}
