package dto

// NotificationItem is a ledger entry as listed to its recipient.
type NotificationItem struct {
	ID        int64  `json:"id"`
	ReportID  *int64 `json:"report_id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}
