package repository

import (
	"context"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type ActivityRepository interface {
	Insert(ctx context.Context, userID *int64, action, description string) error
	List(ctx context.Context, limit int) ([]domain.ActivityLog, error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Insert(ctx context.Context, userID *int64, action, description string) error {
	query := `
		INSERT INTO activity_logs (user_id, action, description)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, action, description); err != nil {
		return fmt.Errorf("error inserting activity log: %w", err)
	}

	return nil
}

func (r *activityRepository) List(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT log_id, user_id, action, description, timestamp
		FROM activity_logs
		ORDER BY timestamp DESC, log_id DESC
		LIMIT $1
	`

	var logs []domain.ActivityLog
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("error listing activity logs: %w", err)
	}

	return logs, nil
}
