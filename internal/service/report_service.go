package service

import (
	"context"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
)

type ReportService struct {
	reports repository.ReportRepository
}

func NewReportService(reports repository.ReportRepository) *ReportService {
	return &ReportService{reports: reports}
}

func (s *ReportService) Monthly(ctx context.Context, year, month int) ([]domain.MonthlyReportRow, error) {
	rows, err := s.reports.MonthlyReport(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = make([]domain.MonthlyReportRow, 0)
	}
	return rows, nil
}
