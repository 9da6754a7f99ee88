package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/report-service/internal/domain"
)

// AdminLogRepository stores append-only audit entries.
type AdminLogRepository interface {
	Create(ctx context.Context, entry *domain.AdminLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.AdminLog, error)
}

type adminLogRepository struct {
	pool *pgxpool.Pool
}

// NewAdminLogRepository builds repository.
func NewAdminLogRepository(pool *pgxpool.Pool) AdminLogRepository {
	return &adminLogRepository{pool: pool}
}

func (r *adminLogRepository) Create(ctx context.Context, entry *domain.AdminLog) error {
	const query = `
        INSERT INTO admin_logs (admin_user_id, action, target_type, target_id, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.AdminID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *adminLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.AdminLog, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id, admin_user_id, action, target_type, target_id, details, created_at
        FROM admin_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AdminLog
	for rows.Next() {
		var entry domain.AdminLog
		if err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
