package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/events"
	"github.com/spec-kit/report-service/internal/photo"
	"github.com/spec-kit/report-service/internal/repository"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

const (
	submittedAtLayout = "2006-01-02 15:04"
	issuePreviewLen   = 120

	defaultPageSize = 20
	maxPageSize     = 100
)

// PhotoNormalizer bounds uploaded photo payloads.
type PhotoNormalizer interface {
	Normalize(payload string) (string, error)
}

// ReportService coordinates the report lifecycle and its side effects.
type ReportService struct {
	reports       repository.ReportRepository
	notifications repository.NotificationRepository
	adminLogs     repository.AdminLogRepository
	users         repository.UserRepository
	normalizer    PhotoNormalizer
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo       repository.ReportRepository
	NotificationRepo repository.NotificationRepository
	AdminLogRepo     repository.AdminLogRepository
	UserRepo         repository.UserRepository
	Normalizer       PhotoNormalizer
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
}

// SubmitInput describes a report submission.
type SubmitInput struct {
	ProblemType string
	Location    string
	Issue       string
	Priority    domain.ReportPriority
	PhotoData   string
	Latitude    *float64
	Longitude   *float64
}

// Stats aggregates role-scoped report counts.
type Stats struct {
	Total      int64
	Pending    int64
	InProgress int64
	Resolved   int64
	MyReports  int64
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:       deps.ReportRepo,
		notifications: deps.NotificationRepo,
		adminLogs:     deps.AdminLogRepo,
		users:         deps.UserRepo,
		normalizer:    deps.Normalizer,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
	}
}

// Submit creates a report owned by the caller. The submitter's username is
// denormalized into the record at write time.
func (s *ReportService) Submit(ctx context.Context, owner *domain.User, input SubmitInput) (*domain.Report, error) {
	problemType := strings.TrimSpace(input.ProblemType)
	location := strings.TrimSpace(input.Location)
	issue := strings.TrimSpace(input.Issue)
	if problemType == "" || location == "" || issue == "" {
		return nil, apperrors.NewValidationError("Please fill in all required fields!")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.ReportPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("Invalid priority!")
	}

	var photoData *string
	if input.PhotoData != "" && s.normalizer != nil {
		normalized, err := s.normalizer.Normalize(input.PhotoData)
		if err != nil {
			if errors.Is(err, photo.ErrPhotoTooLarge) {
				return nil, apperrors.NewValidationError("Photo is too large!")
			}
			return nil, apperrors.MapError(err)
		}
		photoData = &normalized
	}

	report := &domain.Report{
		OwnerID:      owner.ID,
		ReporterName: owner.Username,
		ProblemType:  problemType,
		Location:     location,
		Issue:        issue,
		SubmittedAt:  time.Now().Format(submittedAtLayout),
		Status:       domain.ReportStatusPending,
		Priority:     priority,
		Photo:        photoData,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportSubmitted,
		ReportID: report.ID,
		Actor:    events.Actor{UserID: owner.ID, Role: owner.Role},
		Payload: events.ReportSubmittedPayload{
			ProblemType: report.ProblemType,
			Location:    report.Location,
			Priority:    report.Priority,
		},
	})
	return report, nil
}

// ListOwn returns the caller's reports, newest first.
func (s *ReportService) ListOwn(ctx context.Context, ownerID int64) ([]domain.Report, error) {
	reports, err := s.reports.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

// ListAll returns a page of all reports with the submitter username joined
// in. Photo payloads are omitted and issue text is truncated to a preview;
// full records come from Detail.
func (s *ReportService) ListAll(ctx context.Context, page, pageSize int) ([]repository.ReportListItem, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, err := s.reports.ListAll(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range items {
		items[i].Report.Issue = preview(items[i].Report.Issue, issuePreviewLen)
	}
	return items, nil
}

// Detail returns the full record including the photo payload. Non-admin
// callers may only read their own reports.
func (s *ReportService) Detail(ctx context.Context, requester *domain.User, reportID int64) (*domain.Report, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin() && report.OwnerID != requester.ID {
		return nil, apperrors.NewForbidden("Unauthorized!")
	}
	return report, nil
}

// SetStatus applies an admin status transition. A notification is appended
// to the owner's ledger and the action is audit-logged; neither side effect
// can roll back the committed status change.
func (s *ReportService) SetStatus(ctx context.Context, admin *domain.User, reportID int64, newStatus domain.ReportStatus) (*domain.Report, error) {
	return s.updateStatus(ctx, admin, reportID, newStatus, nil)
}

// SetStatusWithResolution applies a status transition carrying resolution
// notes. A genuine transition into Resolved additionally dispatches the
// resolution email, at most once; re-saving an already-Resolved report never
// re-sends.
func (s *ReportService) SetStatusWithResolution(ctx context.Context, admin *domain.User, reportID int64, newStatus domain.ReportStatus, resolutionNotes string) (*domain.Report, error) {
	notes := strings.TrimSpace(resolutionNotes)
	return s.updateStatus(ctx, admin, reportID, newStatus, &notes)
}

func (s *ReportService) updateStatus(ctx context.Context, admin *domain.User, reportID int64, newStatus domain.ReportStatus, resolutionNotes *string) (*domain.Report, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("Invalid status!")
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	oldStatus := report.Status
	report.Status = newStatus
	if resolutionNotes != nil && *resolutionNotes != "" {
		report.ResolutionNotes = resolutionNotes
	}
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.appendNotification(ctx, report, statusMessage(newStatus, report.ResolutionNotes, resolutionNotes != nil))
	s.appendAdminLog(ctx, admin.ID, actionForStatus(newStatus, resolutionNotes != nil), report.ID,
		fmt.Sprintf("Status changed to %s", newStatus))

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		ReportID: report.ID,
		Actor:    events.Actor{UserID: admin.ID, Role: admin.Role},
		Payload: events.ReportStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
		},
	})

	if newStatus == domain.ReportStatusResolved && oldStatus != domain.ReportStatusResolved {
		s.publishResolved(ctx, admin, report)
	}
	return report, nil
}

// Delete removes a report. Owners may delete their own; admins may delete
// any. Dependent notifications go first so the ledger never holds orphans.
// Admin deletions of another user's report are audit-logged.
func (s *ReportService) Delete(ctx context.Context, requester *domain.User, reportID int64) error {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return err
	}
	isOwner := report.OwnerID == requester.ID
	if !isOwner && !requester.IsAdmin() {
		return apperrors.NewForbidden("Unauthorized!")
	}

	if err := s.reports.Delete(ctx, reportID); err != nil {
		return apperrors.MapError(err)
	}

	if !isOwner {
		s.appendAdminLog(ctx, requester.ID, domain.ActionDeleteReport, reportID,
			fmt.Sprintf("Deleted report submitted by %s", report.ReporterName))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportDeleted,
		ReportID: reportID,
		Actor:    events.Actor{UserID: requester.ID, Role: requester.Role},
		Payload: events.ReportDeletedPayload{
			OwnerID:     report.OwnerID,
			ProblemType: report.ProblemType,
		},
	})
	return nil
}

// DeleteOwn removes a report only when the caller owns it, regardless of
// role. Backs the owner-only delete endpoint.
func (s *ReportService) DeleteOwn(ctx context.Context, requester *domain.User, reportID int64) error {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return err
	}
	if report.OwnerID != requester.ID {
		return apperrors.NewForbidden("Unauthorized!")
	}
	if err := s.reports.Delete(ctx, reportID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportDeleted,
		ReportID: reportID,
		Actor:    events.Actor{UserID: requester.ID, Role: requester.Role},
		Payload: events.ReportDeletedPayload{
			OwnerID:     report.OwnerID,
			ProblemType: report.ProblemType,
		},
	})
	return nil
}

// Stats returns aggregate counts. Non-admin callers get their own report
// count in MyReports; admins see the global total there.
func (s *ReportService) Stats(ctx context.Context, requester *domain.User) (Stats, error) {
	counts, err := s.reports.CountByStatus(ctx)
	if err != nil {
		return Stats{}, apperrors.MapError(err)
	}

	stats := Stats{
		Total:      counts.Total,
		Pending:    counts.Pending,
		InProgress: counts.InProgress,
		Resolved:   counts.Resolved,
		MyReports:  counts.Total,
	}
	if !requester.IsAdmin() {
		mine, err := s.reports.CountByOwner(ctx, requester.ID)
		if err != nil {
			return Stats{}, apperrors.MapError(err)
		}
		stats.MyReports = mine
	}
	return stats, nil
}

func (s *ReportService) getReport(ctx context.Context, reportID int64) (*domain.Report, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Report not found!")
		}
		return nil, apperrors.MapError(err)
	}
	return report, nil
}

// appendNotification is best-effort: the status mutation has already
// committed, so a ledger failure is logged and swallowed.
func (s *ReportService) appendNotification(ctx context.Context, report *domain.Report, message string) {
	reportID := report.ID
	notification := &domain.Notification{
		RecipientID: report.OwnerID,
		ReportID:    &reportID,
		Message:     message,
		Type:        domain.NotificationTypeStatusUpdate,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to append notification",
			zap.Int64("report_id", report.ID),
			zap.Int64("recipient_id", report.OwnerID),
			zap.Error(err))
	}
}

func (s *ReportService) appendAdminLog(ctx context.Context, adminID int64, action domain.AdminAction, targetID int64, details string) {
	entry := &domain.AdminLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: "report",
		TargetID:   &targetID,
		Details:    &details,
	}
	if err := s.adminLogs.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to append admin log",
			zap.Int64("admin_id", adminID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func (s *ReportService) publishResolved(ctx context.Context, admin *domain.User, report *domain.Report) {
	owner, err := s.users.GetByID(ctx, report.OwnerID)
	if err != nil {
		s.logger.Warn("resolution notice skipped: owner lookup failed",
			zap.Int64("report_id", report.ID), zap.Error(err))
		return
	}
	notes := ""
	if report.ResolutionNotes != nil {
		notes = *report.ResolutionNotes
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportResolved,
		ReportID: report.ID,
		Actor:    events.Actor{UserID: admin.ID, Role: admin.Role},
		Payload: events.ReportResolvedPayload{
			OwnerID:         owner.ID,
			OwnerUsername:   owner.Username,
			OwnerEmail:      owner.Email,
			ProblemType:     report.ProblemType,
			Location:        report.Location,
			ResolutionNotes: notes,
			AdminID:         admin.ID,
			AdminUsername:   admin.Username,
		},
	})
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func statusMessage(status domain.ReportStatus, notes *string, withResolution bool) string {
	msg := fmt.Sprintf("Your report status has been updated to %s", status)
	if withResolution && status == domain.ReportStatusResolved && notes != nil && *notes != "" {
		msg += fmt.Sprintf(". Resolution: %s", *notes)
	}
	return msg
}

func actionForStatus(status domain.ReportStatus, withResolution bool) domain.AdminAction {
	if withResolution && status == domain.ReportStatusResolved {
		return domain.ActionResolveReport
	}
	return domain.ActionUpdateStatus
}

func preview(text string, max int) string {
	text = strings.TrimSpace(text)
	if len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}
