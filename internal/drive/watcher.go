package drive

import (
	"context"
	"log"
	"time"
)

// Watcher polls the shared folder and pulls the newest workbook over the
// history file whenever operators upload a fresh one. It is the hands-off
// alternative to POSTing /api/ingest/history after every upload.
type Watcher struct {
	service  *Service
	destPath string
	interval time.Duration

	// id@modifiedTime of the last workbook pulled, so unchanged folders
	// cost one list call per cycle and no download.
	lastSynced string
}

func NewWatcher(service *Service, destPath string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Watcher{
		service:  service,
		destPath: destPath,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, syncing once per interval. Cycle
// failures are logged and the loop continues.
func (w *Watcher) Run(ctx context.Context) {
	log.Printf("Drive watcher started, polling every %s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Drive watcher stopped")
			return
		case <-ticker.C:
		}

		if err := w.syncOnce(); err != nil {
			log.Printf("Drive watch cycle failed: %v", err)
		}
	}
}

func (w *Watcher) syncOnce() error {
	workbooks, err := w.service.ListWorkbooks()
	if err != nil {
		return err
	}
	if len(workbooks) == 0 {
		return nil
	}

	latest := workbooks[0]
	stamp := latest.ID + "@" + latest.ModifiedTime
	if stamp == w.lastSynced {
		return nil
	}

	synced, err := w.service.SyncLatest(w.destPath)
	if err != nil {
		return err
	}

	w.lastSynced = stamp
	log.Printf("Drive watch synced %s (%d bytes) to %s", synced.Name, synced.Size, w.destPath)
	return nil
}
