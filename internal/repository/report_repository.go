package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/report-service/internal/domain"
)

// ReportListItem is a list-view projection: the photo payload is omitted and
// the submitter's current username is joined in for admin views.
type ReportListItem struct {
	Report           domain.Report
	ReporterUsername string
	HasPhoto         bool
}

// StatusCounts aggregates reports per lifecycle state.
type StatusCounts struct {
	Total      int64
	Pending    int64
	InProgress int64
	Resolved   int64
}

// ReportRepository encapsulates report persistence.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	Update(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id int64) (*domain.Report, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Report, error)
	ListAll(ctx context.Context, limit, offset int) ([]ReportListItem, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (StatusCounts, error)
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (owner_user_id, reporter_name, problem_type, location, issue, submitted_at, status, priority, photo, latitude, longitude)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		report.OwnerID,
		report.ReporterName,
		report.ProblemType,
		report.Location,
		report.Issue,
		report.SubmittedAt,
		report.Status,
		report.Priority,
		report.Photo,
		report.Latitude,
		report.Longitude,
	).Scan(&report.ID, &report.CreatedAt)
}

func (r *reportRepository) Update(ctx context.Context, report *domain.Report) error {
	const query = `
        UPDATE reports SET status=$1, priority=$2, resolution_notes=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		report.Status,
		report.Priority,
		report.ResolutionNotes,
		report.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	const query = `
        SELECT id, owner_user_id, reporter_name, problem_type, location, issue, submitted_at,
               status, priority, photo, latitude, longitude, resolution_notes, created_at
        FROM reports WHERE id=$1`
	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.OwnerID,
		&report.ReporterName,
		&report.ProblemType,
		&report.Location,
		&report.Issue,
		&report.SubmittedAt,
		&report.Status,
		&report.Priority,
		&report.Photo,
		&report.Latitude,
		&report.Longitude,
		&report.ResolutionNotes,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Report, error) {
	const query = `
        SELECT id, owner_user_id, reporter_name, problem_type, location, issue, submitted_at,
               status, priority, photo, latitude, longitude, resolution_notes, created_at
        FROM reports WHERE owner_user_id=$1 ORDER BY id DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Report
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.ID,
			&report.OwnerID,
			&report.ReporterName,
			&report.ProblemType,
			&report.Location,
			&report.Issue,
			&report.SubmittedAt,
			&report.Status,
			&report.Priority,
			&report.Photo,
			&report.Latitude,
			&report.Longitude,
			&report.ResolutionNotes,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, report)
	}
	return result, rows.Err()
}

func (r *reportRepository) ListAll(ctx context.Context, limit, offset int) ([]ReportListItem, error) {
	const query = `
        SELECT r.id, r.owner_user_id, r.reporter_name, r.problem_type, r.location, r.issue,
               r.submitted_at, r.status, r.priority, r.photo IS NOT NULL, r.latitude, r.longitude,
               r.resolution_notes, r.created_at, u.username
        FROM reports r
        JOIN users u ON r.owner_user_id = u.id
        ORDER BY r.id DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReportListItem
	for rows.Next() {
		var item ReportListItem
		if err := rows.Scan(
			&item.Report.ID,
			&item.Report.OwnerID,
			&item.Report.ReporterName,
			&item.Report.ProblemType,
			&item.Report.Location,
			&item.Report.Issue,
			&item.Report.SubmittedAt,
			&item.Report.Status,
			&item.Report.Priority,
			&item.HasPhoto,
			&item.Report.Latitude,
			&item.Report.Longitude,
			&item.Report.ResolutionNotes,
			&item.Report.CreatedAt,
			&item.ReporterUsername,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// Delete removes dependent notifications first, then the report, in one
// transaction so no orphaned ledger entries survive.
func (r *reportRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM notifications WHERE report_id=$1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM reports WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func (r *reportRepository) CountByStatus(ctx context.Context) (StatusCounts, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status=$1),
               COUNT(*) FILTER (WHERE status=$2),
               COUNT(*) FILTER (WHERE status=$3)
        FROM reports`
	var counts StatusCounts
	if err := r.pool.QueryRow(ctx, query,
		domain.ReportStatusPending,
		domain.ReportStatusInProgress,
		domain.ReportStatusResolved,
	).Scan(&counts.Total, &counts.Pending, &counts.InProgress, &counts.Resolved); err != nil {
		return StatusCounts{}, err
	}
	return counts, nil
}

func (r *reportRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE owner_user_id=$1`, ownerID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
