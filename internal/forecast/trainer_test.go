package forecast

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel answers scripted predictions so tests control the raw output.
type stubModel struct {
	preds []float64
}

func (m stubModel) Predict(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		if i < len(m.preds) {
			out[i] = m.preds[i]
		} else if len(m.preds) > 0 {
			out[i] = m.preds[len(m.preds)-1]
		}
	}
	return out
}

func (m stubModel) Kind() string { return "stub" }

// stubFitter delegates to a closure so each test scripts its own fits.
type stubFitter struct {
	fn func(values []float64) (Model, error)
}

func (f stubFitter) Fit(values []float64) (Model, error) { return f.fn(values) }

func historyFor(name string, start time.Time, qtys ...int) []domain.HistoryRecord {
	records := make([]domain.HistoryRecord, len(qtys))
	for i, q := range qtys {
		records[i] = domain.HistoryRecord{Date: start.AddDate(0, i, 0), ItemName: name, Quantity: q}
	}
	return records
}

func TestTrainFitsEligibleSkipsRest(t *testing.T) {
	start := day(2024, time.July, 1)
	var records []domain.HistoryRecord
	records = append(records, historyFor("Bond Paper", start, 50, 60, 55, 70, 65, 58, 62, 59, 64, 61, 66, 63)...)
	records = append(records, historyFor("Stapler", start, 13, 9, 11, 14, 8, 12, 10, 15, 9, 13, 11, 12)...)
	records = append(records, historyFor("Rare Widget", start, 5, 7)...)
	records = append(records, historyFor("Flatline", start, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4)...)

	path := filepath.Join(t.TempDir(), "models.json")
	cache := NewModelCache(path, nil)
	fitter := stubFitter{fn: func(values []float64) (Model, error) {
		return stubModel{preds: []float64{values[len(values)-1]}}, nil
	}}
	trainer := NewTrainer(cache, fitter, DefaultMinTrainMonths, 2)

	status, err := trainer.Train(context.Background(), records, domain.TrainSourceDB)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bond Paper", "Stapler"}, status.Trained)
	assert.Equal(t, []string{"Flatline", "Rare Widget"}, status.Skipped)
	assert.Equal(t, domain.TrainSourceDB, status.Source)
	assert.Equal(t, 2, status.ModelCount)
	assert.False(t, status.LastTrainedUTC.IsZero())

	assert.Equal(t, 2, cache.Len())
	entry, ok := cache.Get("  BOND paper ")
	require.True(t, ok)
	assert.Equal(t, "Bond Paper", entry.Name)
	assert.Equal(t, 12, entry.Months)

	// The run persisted a snapshot.
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestTrainFitFailureSkipsItem(t *testing.T) {
	start := day(2024, time.July, 1)
	var records []domain.HistoryRecord
	records = append(records, historyFor("Bond Paper", start, 50, 60, 55, 70, 65, 58, 62, 59, 64, 61, 66, 63)...)
	records = append(records, historyFor("Stapler", start, 13, 9, 11, 14, 8, 12, 10, 15, 9, 13, 11, 12)...)

	fitter := stubFitter{fn: func(values []float64) (Model, error) {
		if values[0] == 13 {
			return nil, errors.New("optimizer diverged")
		}
		return stubModel{preds: []float64{1}}, nil
	}}

	cache := NewModelCache(filepath.Join(t.TempDir(), "models.json"), nil)
	trainer := NewTrainer(cache, fitter, DefaultMinTrainMonths, 2)

	status, err := trainer.Train(context.Background(), records, domain.TrainSourceDB)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bond Paper"}, status.Trained)
	assert.Equal(t, []string{"Stapler"}, status.Skipped)
	assert.Equal(t, 1, cache.Len())

	_, ok := cache.Get("stapler")
	assert.False(t, ok)
}

func TestTrainRejectsConcurrentRun(t *testing.T) {
	start := day(2024, time.July, 1)
	records := historyFor("Bond Paper", start, 50, 60, 55, 70, 65, 58, 62, 59, 64, 61, 66, 63)

	gate := make(chan struct{})
	started := make(chan struct{})
	fitter := stubFitter{fn: func(values []float64) (Model, error) {
		close(started)
		<-gate
		return stubModel{preds: []float64{1}}, nil
	}}

	cache := NewModelCache(filepath.Join(t.TempDir(), "models.json"), nil)
	trainer := NewTrainer(cache, fitter, DefaultMinTrainMonths, 1)

	done := make(chan error, 1)
	go func() {
		_, err := trainer.Train(context.Background(), records, domain.TrainSourceDB)
		done <- err
	}()

	<-started
	_, err := trainer.Train(context.Background(), records, domain.TrainSourceDB)
	assert.ErrorIs(t, err, ErrTrainingInProgress)

	close(gate)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("first training run did not finish")
	}
	assert.Equal(t, 1, cache.Len())
}
