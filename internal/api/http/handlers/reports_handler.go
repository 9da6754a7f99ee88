package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/dto"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/service"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

const timestampLayout = "2006-01-02 15:04"

// ReportsHandler exposes resident-facing report endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Submit handles POST /api/submit_report.
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	var req dto.SubmitReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	report, err := h.reports.Submit(c.UserContext(), principal.User, service.SubmitInput{
		ProblemType: req.ProblemType,
		Location:    req.Location,
		Issue:       req.Issue,
		Priority:    domain.ReportPriority(req.Priority),
		PhotoData:   req.PhotoData,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Report submitted successfully!",
		"report_id": report.ID,
	})
}

// ListOwn handles GET /api/user_reports.
func (h *ReportsHandler) ListOwn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	reports, err := h.reports.ListOwn(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}

	items := make([]dto.ReportDetail, 0, len(reports))
	for i := range reports {
		items = append(items, reportDetail(&reports[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"reports": items,
	})
}

// Detail handles GET /api/report_details/:id.
func (h *ReportsHandler) Detail(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	reportID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("Invalid report id!")
	}

	report, err := h.reports.Detail(c.UserContext(), principal.User, reportID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  reportDetail(report),
	})
}

// DeleteOwn handles POST /api/delete_user_report: strictly owner-scoped.
func (h *ReportsHandler) DeleteOwn(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	var req dto.DeleteReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	if err := h.reports.DeleteOwn(c.UserContext(), principal.User, req.ReportID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Report deleted successfully!",
	})
}

// Stats handles GET /api/stats.
func (h *ReportsHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	stats, err := h.reports.Stats(c.UserContext(), principal.User)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": dto.StatsResponse{
			Total:      stats.Total,
			Pending:    stats.Pending,
			InProgress: stats.InProgress,
			Resolved:   stats.Resolved,
			MyReports:  stats.MyReports,
		},
	})
}

func reportDetail(report *domain.Report) dto.ReportDetail {
	return dto.ReportDetail{
		ID:              report.ID,
		ProblemType:     report.ProblemType,
		Location:        report.Location,
		Issue:           report.Issue,
		Date:            report.SubmittedAt,
		Status:          string(report.Status),
		Priority:        string(report.Priority),
		PhotoData:       report.Photo,
		Latitude:        report.Latitude,
		Longitude:       report.Longitude,
		ResolutionNotes: report.ResolutionNotes,
		CreatedAt:       report.CreatedAt.Format(timestampLayout),
	}
}
