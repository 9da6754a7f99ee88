package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/events"
	"github.com/spec-kit/report-service/internal/repository"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockReportRepo struct {
	mock.Mock
}

func (m *mockReportRepo) Create(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportRepo) Update(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportRepo) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportRepo) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Report, error) {
	args := m.Called(ctx, ownerID)
	if r := args.Get(0); r != nil {
		return r.([]domain.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportRepo) ListAll(ctx context.Context, limit, offset int) ([]repository.ReportListItem, error) {
	args := m.Called(ctx, limit, offset)
	if r := args.Get(0); r != nil {
		return r.([]repository.ReportListItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReportRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockReportRepo) CountByStatus(ctx context.Context) (repository.StatusCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.StatusCounts), args.Error(1)
}

func (m *mockReportRepo) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *mockNotificationRepo) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, recipientID, limit)
	if n := args.Get(0); n != nil {
		return n.([]domain.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, recipientID int64) error {
	args := m.Called(ctx, recipientID)
	return args.Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

type mockAdminLogRepo struct {
	mock.Mock
}

func (m *mockAdminLogRepo) Create(ctx context.Context, entry *domain.AdminLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAdminLogRepo) ListRecent(ctx context.Context, limit int) ([]domain.AdminLog, error) {
	args := m.Called(ctx, limit)
	if l := args.Get(0); l != nil {
		return l.([]domain.AdminLog), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range d.published {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// stubNormalizer returns a fixed payload or error.
type stubNormalizer struct {
	result string
	err    error
}

func (s *stubNormalizer) Normalize(payload string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.result != "" {
		return s.result, nil
	}
	return payload, nil
}
