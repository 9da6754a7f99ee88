package dto

// SubmitReportRequest payload.
type SubmitReportRequest struct {
	ProblemType string   `json:"problem_type"`
	Location    string   `json:"location"`
	Issue       string   `json:"issue"`
	Priority    string   `json:"priority"`
	PhotoData   string   `json:"photo_data"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdateStatusRequest payload for the status-only transition.
type UpdateStatusRequest struct {
	ReportID int64  `json:"report_id"`
	Status   string `json:"status"`
}

// UpdateWithResolutionRequest payload for status + notes + notify.
type UpdateWithResolutionRequest struct {
	ReportID        int64  `json:"report_id"`
	Status          string `json:"status"`
	ResolutionNotes string `json:"resolution_notes"`
}

// DeleteReportRequest payload.
type DeleteReportRequest struct {
	ReportID int64 `json:"report_id"`
}

// ReportDetail is the full record, photo payload included.
type ReportDetail struct {
	ID              int64    `json:"id"`
	ProblemType     string   `json:"problem_type"`
	Location        string   `json:"location"`
	Issue           string   `json:"issue"`
	Date            string   `json:"date"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	PhotoData       *string  `json:"photo_data"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	ResolutionNotes *string  `json:"resolution_notes"`
	CreatedAt       string   `json:"created_at"`
}

// AdminReportItem is the admin list row: no photo payload, issue truncated
// to a preview.
type AdminReportItem struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	ReporterName string `json:"name"`
	ProblemType  string `json:"problem_type"`
	Location     string `json:"location"`
	IssuePreview string `json:"issue"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	HasPhoto     bool   `json:"has_photo"`
	CreatedAt    string `json:"created_at"`
}

// StatsResponse aggregates role-scoped counts.
type StatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Resolved   int64 `json:"resolved"`
	MyReports  int64 `json:"my_reports"`
}
