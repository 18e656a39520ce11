package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service reads the shared Drive folder where operators drop the curated
// history workbook. It only ever downloads; the folder is the operators'
// surface, not ours.
type Service struct {
	srv      *drive.Service
	folderID string
}

func NewService(credentialsFile, folderID string) (*Service, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("drive credentials file not configured")
	}
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id not configured")
	}

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read drive credentials: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse drive credentials: %w", err)
	}

	client := config.Client(context.Background())

	srv, err := drive.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to build drive client: %w", err)
	}

	return &Service{srv: srv, folderID: folderID}, nil
}

// Workbook is one candidate history file in the shared folder.
type Workbook struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modified_time"`
	Size         int64  `json:"size"`
}

// ListWorkbooks returns the folder's spreadsheet files, newest first.
func (s *Service) ListWorkbooks() ([]Workbook, error) {
	result, err := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", s.folderID)).
		Fields("files(id, name, mimeType, modifiedTime, size)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list drive folder: %w", err)
	}

	var workbooks []Workbook
	for _, f := range result.Files {
		if f.MimeType != xlsxMimeType && !strings.HasSuffix(strings.ToLower(f.Name), ".xlsx") {
			continue
		}
		workbooks = append(workbooks, Workbook{
			ID:           f.Id,
			Name:         f.Name,
			ModifiedTime: f.ModifiedTime,
			Size:         f.Size,
		})
	}

	// ModifiedTime is RFC3339, so string order is time order.
	sort.Slice(workbooks, func(i, j int) bool {
		return workbooks[i].ModifiedTime > workbooks[j].ModifiedTime
	})

	return workbooks, nil
}

// SyncLatest downloads the newest workbook over destPath, going through a
// temp file so a failed download never clobbers the current history file.
func (s *Service) SyncLatest(destPath string) (*Workbook, error) {
	workbooks, err := s.ListWorkbooks()
	if err != nil {
		return nil, err
	}
	if len(workbooks) == 0 {
		return nil, fmt.Errorf("no workbooks found in drive folder")
	}
	latest := workbooks[0]

	resp, err := s.srv.Files.Get(latest.ID).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", latest.Name, err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".history-*.xlsx")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	size, err := tmp.ReadFrom(resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return nil, fmt.Errorf("failed to replace history file: %w", err)
	}

	latest.Size = size
	return &latest, nil
}
