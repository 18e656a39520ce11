package service

import (
	"context"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// Activity log actions recorded by the API surface.
const (
	ActionInventory  = "Inventory"
	ActionOrders     = "Orders"
	ActionStockCard  = "Stock Card"
	ActionPredictive = "Predictive Restock"
)

// ActivityService writes the audit trail. Writes are best-effort: a failed
// insert is logged and swallowed so it can never fail the request that
// triggered it.
type ActivityService struct {
	repo repository.ActivityRepository
}

func NewActivityService(repo repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

func (s *ActivityService) Record(ctx context.Context, userID *int64, action, description string) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.repo.Insert(ctx, userID, action, description); err != nil {
		log.Warn().Err(err).Str("action", action).Str("description", description).
			Msg("activity log write failed")
	}
}

func (s *ActivityService) List(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	logs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = make([]domain.ActivityLog, 0)
	}
	return logs, nil
}
