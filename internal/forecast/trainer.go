package forecast

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/pkg/logger"
)

// ErrTrainingInProgress rejects a training trigger while another run holds
// the trainer. Callers surface it as a conflict rather than queueing.
var ErrTrainingInProgress = errors.New("training run already in progress")

// Trainer fits models for every eligible item in a history load and swaps
// the results into the cache as one unit. A single Trainer serializes all
// training in the process: scheduler cycles and manual triggers share it.
type Trainer struct {
	cache     *ModelCache
	fitter    Fitter
	minMonths int
	workers   int

	mu sync.Mutex
}

func NewTrainer(cache *ModelCache, fitter Fitter, minMonths, workers int) *Trainer {
	if minMonths <= 0 {
		minMonths = DefaultMinTrainMonths
	}
	if workers <= 0 {
		workers = 4
	}
	return &Trainer{cache: cache, fitter: fitter, minMonths: minMonths, workers: workers}
}

// Train aggregates the records, fits every eligible item on a bounded
// worker pool, swaps the staged models into the cache, and persists the
// snapshot. Individual fit failures skip the item; they never abort the
// batch. A second concurrent call returns ErrTrainingInProgress.
func (t *Trainer) Train(ctx context.Context, records []domain.HistoryRecord, source string) (domain.TrainStatus, error) {
	if !t.mu.TryLock() {
		return domain.TrainStatus{}, ErrTrainingInProgress
	}
	defer t.mu.Unlock()

	log := logger.Component("trainer")
	started := time.Now().UTC()

	agg := AggregateMonthly(records)

	// Classify first so the skipped list is settled before workers share it.
	var (
		eligible []domain.MonthlySeries
		trained  []string
		skipped  []string
	)
	for _, key := range agg.Keys() {
		series := agg.Items[key]
		if !Eligible(series, t.minMonths) {
			skipped = append(skipped, series.Name)
			continue
		}
		eligible = append(eligible, series)
	}

	var (
		staged   = make(map[string]CachedModel)
		resultMu sync.Mutex
		wg       sync.WaitGroup
		jobs     = make(chan domain.MonthlySeries)
	)

	for i := 0; i < t.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for series := range jobs {
				model, err := t.fitter.Fit(series.Values())

				resultMu.Lock()
				if err != nil {
					log.Warn().Err(err).Str("item", series.Name).Msg("model fit failed, item skipped")
					skipped = append(skipped, series.Name)
				} else {
					staged[series.Key] = CachedModel{
						Name:     series.Name,
						FittedAt: started,
						Months:   len(series.Points),
						Model:    model,
					}
					trained = append(trained, series.Name)
				}
				resultMu.Unlock()
			}
		}()
	}

	for _, series := range eligible {
		jobs <- series
	}
	close(jobs)
	wg.Wait()

	sort.Strings(trained)
	sort.Strings(skipped)

	status := domain.TrainStatus{
		LastTrainedUTC: started,
		Trained:        trained,
		Skipped:        skipped,
		Source:         source,
	}
	t.cache.Swap(staged, status)

	if err := t.cache.Save(ctx); err != nil {
		log.Error().Err(err).Msg("failed to persist model snapshot")
	}

	log.Info().
		Int("trained", len(trained)).
		Int("skipped", len(skipped)).
		Str("source", source).
		Dur("took", time.Since(started)).
		Msg("training run finished")

	return t.cache.Status(), nil
}
