package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/events"
	"github.com/spec-kit/report-service/internal/repository"
	"github.com/spec-kit/report-service/internal/service"
)

const queueSize = 64

// NotificationWorker drains resolution events off the request path and
// dispatches the resolution email. Transport latency or failure therefore
// never stalls the status-update endpoint.
type NotificationWorker struct {
	mailer    service.Mailer
	adminLogs repository.AdminLogRepository
	logger    *zap.Logger
	jobs      chan resolutionJob
	done      chan struct{}
}

type resolutionJob struct {
	reportID int64
	payload  events.ReportResolvedPayload
}

// NewNotificationWorker constructs the worker and subscribes it to report
// resolution events.
func NewNotificationWorker(dispatcher events.Dispatcher, mailer service.Mailer, adminLogs repository.AdminLogRepository, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		mailer:    mailer,
		adminLogs: adminLogs,
		logger:    logger,
		jobs:      make(chan resolutionJob, queueSize),
		done:      make(chan struct{}),
	}
	if dispatcher != nil {
		dispatcher.Subscribe(events.EventReportResolved, w.handleResolved)
	}
	return w
}

// handleResolved enqueues the dispatch without blocking the publisher. A
// full queue drops the notice with a log line; email is best-effort.
func (w *NotificationWorker) handleResolved(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReportResolvedPayload)
	if !ok {
		w.logger.Warn("unexpected payload on report_resolved event",
			zap.Int64("report_id", event.ReportID))
		return nil
	}
	select {
	case w.jobs <- resolutionJob{reportID: event.ReportID, payload: payload}:
	default:
		w.logger.Warn("notification queue full; dropping resolution notice",
			zap.Int64("report_id", event.ReportID))
	}
	return nil
}

// Start launches the dispatch loop. It returns immediately; cancel ctx to
// drain and stop.
func (w *NotificationWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-w.jobs:
				w.dispatch(ctx, job)
			}
		}
	}()
}

// Wait blocks until the dispatch loop has exited.
func (w *NotificationWorker) Wait() {
	<-w.done
}

func (w *NotificationWorker) dispatch(ctx context.Context, job resolutionJob) {
	if w.mailer == nil || !w.mailer.IsEnabled() {
		w.logger.Info("mail transport disabled; skipping resolution notice",
			zap.Int64("report_id", job.reportID))
		return
	}

	notice := service.ResolutionNotice{
		RecipientEmail:  job.payload.OwnerEmail,
		RecipientName:   job.payload.OwnerUsername,
		ReportID:        job.reportID,
		ProblemType:     job.payload.ProblemType,
		Location:        job.payload.Location,
		ResolutionNotes: job.payload.ResolutionNotes,
		ResolvedBy:      job.payload.AdminUsername,
	}
	if err := w.mailer.SendResolutionNotice(notice); err != nil {
		w.logger.Warn("resolution notice failed",
			zap.Int64("report_id", job.reportID),
			zap.String("recipient", job.payload.OwnerEmail),
			zap.Error(err))
		return
	}

	w.logger.Info("resolution notice sent",
		zap.Int64("report_id", job.reportID),
		zap.String("recipient", job.payload.OwnerEmail))

	reportID := job.reportID
	details := fmt.Sprintf("Resolution email sent to %s for report #%d", job.payload.OwnerEmail, job.reportID)
	entry := &domain.AdminLog{
		AdminID:    job.payload.AdminID,
		Action:     domain.ActionEmailSent,
		TargetType: "report",
		TargetID:   &reportID,
		Details:    &details,
	}
	if err := w.adminLogs.Create(ctx, entry); err != nil {
		w.logger.Warn("failed to record sent notice", zap.Error(err))
	}
}
