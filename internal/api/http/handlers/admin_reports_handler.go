package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/report-service/internal/api/dto"
	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/service"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// AdminReportsHandler exposes the admin triage surface.
type AdminReportsHandler struct {
	reports *service.ReportService
}

// NewAdminReportsHandler constructs handler.
func NewAdminReportsHandler(reports *service.ReportService) *AdminReportsHandler {
	return &AdminReportsHandler{reports: reports}
}

// ListAll handles GET /api/all_reports with page/page_size pagination.
func (h *AdminReportsHandler) ListAll(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 0)

	items, err := h.reports.ListAll(c.UserContext(), page, pageSize)
	if err != nil {
		return err
	}

	rows := make([]dto.AdminReportItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, dto.AdminReportItem{
			ID:           item.Report.ID,
			Username:     item.ReporterUsername,
			ReporterName: item.Report.ReporterName,
			ProblemType:  item.Report.ProblemType,
			Location:     item.Report.Location,
			IssuePreview: item.Report.Issue,
			Date:         item.Report.SubmittedAt,
			Status:       string(item.Report.Status),
			Priority:     string(item.Report.Priority),
			HasPhoto:     item.HasPhoto,
			CreatedAt:    item.Report.CreatedAt.Format(timestampLayout),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"page":    page,
		"reports": rows,
	})
}

// UpdateStatus handles POST /api/update_report_status.
func (h *AdminReportsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	report, err := h.reports.SetStatus(c.UserContext(), principal.User, req.ReportID, domain.ReportStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Status updated to " + string(report.Status) + "!",
	})
}

// UpdateWithResolution handles POST /api/update_report_with_resolution.
func (h *AdminReportsHandler) UpdateWithResolution(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	var req dto.UpdateWithResolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	report, err := h.reports.SetStatusWithResolution(c.UserContext(), principal.User, req.ReportID,
		domain.ReportStatus(req.Status), req.ResolutionNotes)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Status updated to " + string(report.Status) + "!",
	})
}

// Delete handles POST /api/delete_report: owner or admin.
func (h *AdminReportsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated(auth.MsgLoginRequired)
	}

	var req dto.DeleteReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload!")
	}

	if err := h.reports.Delete(c.UserContext(), principal.User, req.ReportID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Report deleted successfully!",
	})
}
