package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/pkg/logger"
)

// CachedModel is one item's fitted model plus the metadata responses and
// snapshots carry.
type CachedModel struct {
	Name     string    `json:"name"`
	FittedAt time.Time `json:"fitted_at"`
	Months   int       `json:"months"`
	Model    Model     `json:"-"`
}

// SnapshotMirror is an optional remote copy of the snapshot file, so a
// fresh instance can warm its cache before the first scheduled training.
type SnapshotMirror interface {
	Upload(ctx context.Context, name string, data []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
}

// ModelCache owns the fitted models and the latest training status. It is
// constructed once in main and passed by handle; all access goes through
// the lock. Training stages a full replacement map and swaps it in one
// critical section, so readers see either the old cache or the new one,
// never a mixture.
type ModelCache struct {
	mu     sync.RWMutex
	models map[string]CachedModel
	status domain.TrainStatus

	path   string
	mirror SnapshotMirror
}

func NewModelCache(path string, mirror SnapshotMirror) *ModelCache {
	return &ModelCache{
		models: make(map[string]CachedModel),
		path:   path,
		mirror: mirror,
	}
}

// Get looks up a fitted model by any spelling of the item name.
func (c *ModelCache) Get(name string) (CachedModel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.models[NormalizeName(name)]
	return entry, ok
}

func (c *ModelCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.models)
}

// Names returns the cached items' display names, sorted.
func (c *ModelCache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.models))
	for _, entry := range c.models {
		names = append(names, entry.Name)
	}
	sort.Strings(names)
	return names
}

// Status returns a copy of the latest training status.
func (c *ModelCache) Status() domain.TrainStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := c.status
	status.Trained = append([]string{}, c.status.Trained...)
	status.Skipped = append([]string{}, c.status.Skipped...)
	status.ModelCount = len(c.models)
	return status
}

// Swap atomically replaces the whole cache and its status.
func (c *ModelCache) Swap(models map[string]CachedModel, status domain.TrainStatus) {
	if models == nil {
		models = make(map[string]CachedModel)
	}
	status.ModelCount = len(models)

	c.mu.Lock()
	c.models = models
	c.status = status
	c.mu.Unlock()
}

// snapshotFile is the on-disk layout. Models carry their envelope next to
// the display metadata.
type snapshotFile struct {
	Version    int                      `json:"version"`
	SavedAtUTC time.Time                `json:"saved_at_utc"`
	Source     string                   `json:"source"`
	Trained    []string                 `json:"trained"`
	Skipped    []string                 `json:"skipped"`
	Models     map[string]snapshotEntry `json:"models"`
}

type snapshotEntry struct {
	Name     string        `json:"name"`
	FittedAt time.Time     `json:"fitted_at"`
	Months   int           `json:"months"`
	Model    ModelEnvelope `json:"model"`
}

const snapshotVersion = 1

// Save writes the snapshot to disk via a temp file and rename, then
// mirrors it best-effort when a mirror is configured.
func (c *ModelCache) Save(ctx context.Context) error {
	c.mu.RLock()
	snap := snapshotFile{
		Version:    snapshotVersion,
		SavedAtUTC: c.status.LastTrainedUTC,
		Source:     c.status.Source,
		Trained:    append([]string(nil), c.status.Trained...),
		Skipped:    append([]string(nil), c.status.Skipped...),
		Models:     make(map[string]snapshotEntry, len(c.models)),
	}
	var encodeErr error
	for key, entry := range c.models {
		env, err := EncodeModel(entry.Model)
		if err != nil {
			encodeErr = err
			break
		}
		snap.Models[key] = snapshotEntry{
			Name:     entry.Name,
			FittedAt: entry.FittedAt,
			Months:   entry.Months,
			Model:    env,
		}
	}
	c.mu.RUnlock()

	if encodeErr != nil {
		return encodeErr
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	if c.mirror != nil {
		if err := c.mirror.Upload(ctx, filepath.Base(c.path), data); err != nil {
			logger.Log.Warn().Err(err).Msg("snapshot mirror upload failed")
		}
	}

	logger.Log.Info().Int("models", len(snap.Models)).Str("path", c.path).Msg("model snapshot saved")
	return nil
}

// Load rehydrates the cache from disk. A missing file is not an error: the
// cache simply starts empty, and when a mirror is configured its copy is
// tried first. Corrupt snapshots are errors so a bad deploy is visible.
func (c *ModelCache) Load(ctx context.Context) error {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) && c.mirror != nil {
		var dlErr error
		data, dlErr = c.mirror.Download(ctx, filepath.Base(c.path))
		if dlErr != nil {
			logger.Log.Info().Str("path", c.path).Msg("no model snapshot found, starting with empty cache")
			return nil
		}
		err = nil
	}
	if errors.Is(err, os.ErrNotExist) {
		logger.Log.Info().Str("path", c.path).Msg("no model snapshot found, starting with empty cache")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", c.path, err)
	}

	models := make(map[string]CachedModel, len(snap.Models))
	for key, entry := range snap.Models {
		model, err := DecodeModel(entry.Model)
		if err != nil {
			return fmt.Errorf("failed to decode model for %q: %w", entry.Name, err)
		}
		models[key] = CachedModel{
			Name:     entry.Name,
			FittedAt: entry.FittedAt,
			Months:   entry.Months,
			Model:    model,
		}
	}

	c.Swap(models, domain.TrainStatus{
		LastTrainedUTC: snap.SavedAtUTC,
		Trained:        snap.Trained,
		Skipped:        snap.Skipped,
		Source:         domain.TrainSourceSnapshot,
	})

	logger.Log.Info().Int("models", len(models)).Str("path", c.path).Msg("model snapshot loaded")
	return nil
}
