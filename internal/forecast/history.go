package forecast

import (
	"context"
	"errors"
	"fmt"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/repository"
	"github.com/capstone-itrack/backend-go/pkg/logger"
)

var ErrNoHistory = errors.New("no history records for item")

// History sources reported alongside loads.
const (
	SourceDB   = "db"
	SourceXLSX = "xlsx"
)

// Loader resolves issuance history for the pipeline: the orders database
// first, the curated workbook when the database has nothing to offer.
type Loader struct {
	repo        repository.HistoryRepository
	historyFile string
}

func NewLoader(repo repository.HistoryRepository, historyFile string) *Loader {
	return &Loader{repo: repo, historyFile: historyFile}
}

// FromDB pulls the full order-line history. Zero rows is a valid result.
func (l *Loader) FromDB(ctx context.Context) ([]domain.HistoryRecord, error) {
	if l.repo == nil {
		return nil, fmt.Errorf("history repository not configured")
	}
	return l.repo.LoadHistory(ctx)
}

// FromSpreadsheet reads the curated history workbook.
func (l *Loader) FromSpreadsheet() ([]domain.HistoryRecord, error) {
	return ReadHistoryWorkbook(l.historyFile)
}

// HistoryFile exposes the configured workbook path for report payloads.
func (l *Loader) HistoryFile() string {
	return l.historyFile
}

// Load returns DB history when any exists, otherwise falls back to the
// workbook. The returned source tag tells callers which one fed them.
func (l *Loader) Load(ctx context.Context) ([]domain.HistoryRecord, string, error) {
	records, err := l.FromDB(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("db history load failed, trying workbook")
	} else if len(records) > 0 {
		return records, SourceDB, nil
	}

	records, xlsxErr := l.FromSpreadsheet()
	if xlsxErr != nil {
		if err != nil {
			return nil, "", fmt.Errorf("db load failed (%v) and workbook load failed: %w", err, xlsxErr)
		}
		return nil, "", xlsxErr
	}
	return records, SourceXLSX, nil
}
