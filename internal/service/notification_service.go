package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/repository"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// NotificationService exposes the per-user message ledger.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{notifications: notifications, logger: logger}
}

// ListRecent returns the recipient's notifications, newest first, and marks
// every notification for that recipient as read. There is no per-item
// acknowledgment: listing is the ack.
func (s *NotificationService) ListRecent(ctx context.Context, recipientID int64, limit int) ([]domain.Notification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.notifications.MarkAllRead(ctx, recipientID); err != nil {
		// Read state is a convenience; listing still succeeds.
		s.logger.Warn("failed to mark notifications read",
			zap.Int64("recipient_id", recipientID), zap.Error(err))
	}
	return notifications, nil
}

// UnreadCount returns how many notifications the recipient has not yet
// listed.
func (s *NotificationService) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	count, err := s.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}
