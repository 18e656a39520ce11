package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bondPaperYear = []float64{50, 60, 55, 70, 65, 58, 62, 59, 64, 61, 66, 63}

func TestFitRejectsBadSeries(t *testing.T) {
	fitter := NewFitter(12)

	_, err := fitter.Fit([]float64{50, 60, 55})
	assert.ErrorIs(t, err, ErrSeriesTooShort)

	flat := make([]float64, 12)
	for i := range flat {
		flat[i] = 5
	}
	_, err = fitter.Fit(flat)
	assert.ErrorIs(t, err, ErrSeriesDegenerate)

	bad := append([]float64{}, bondPaperYear...)
	bad[4] = math.NaN()
	_, err = fitter.Fit(bad)
	assert.ErrorIs(t, err, ErrBadSeriesValue)
}

func TestFitShortHistoryUsesDampedHolt(t *testing.T) {
	fitter := NewFitter(12)

	model, err := fitter.Fit(bondPaperYear)
	require.NoError(t, err)
	assert.Equal(t, KindHoltDamped, model.Kind())

	preds := model.Predict(6)
	require.Len(t, preds, 6)
	for i, v := range preds {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "month %d is not finite", i+1)
		// A series hovering around 60 must not forecast wildly off it.
		assert.InDelta(t, 60, v, 30, "month %d", i+1)
	}
}

func TestFitTwoSeasonsUsesHoltWinters(t *testing.T) {
	season := []float64{30, 32, 35, 45, 60, 80, 95, 90, 70, 50, 38, 32}
	values := make([]float64, 0, 3*len(season))
	for rep := 0; rep < 3; rep++ {
		for _, v := range season {
			values = append(values, v+float64(rep)*3)
		}
	}

	fitter := NewFitter(12)
	model, err := fitter.Fit(values)
	require.NoError(t, err)
	assert.Equal(t, KindHoltWinters, model.Kind())

	preds := model.Predict(12)
	require.Len(t, preds, 12)

	// The fitted year must keep the seasonal shape: its July-ish peak well
	// above its winter trough.
	min, max := preds[0], preds[0]
	argmax := 0
	for i, v := range preds {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		if v > max {
			max, argmax = v, i
		}
		if v < min {
			min = v
		}
	}
	assert.Greater(t, max, min*1.5)
	assert.InDelta(t, 6, argmax, 2, "peak should stay near mid-year")
}

func TestPredictDampedTrendFlattens(t *testing.T) {
	model := &ExpSmoothingModel{Family: KindHoltDamped, Level: 100, Trend: 10, Phi: 0.5}

	preds := model.Predict(4)
	require.Len(t, preds, 4)

	// phi 0.5: damped trend contributions 5, 7.5, 8.75, 9.375.
	assert.InDelta(t, 105, preds[0], 1e-9)
	assert.InDelta(t, 107.5, preds[1], 1e-9)
	assert.InDelta(t, 108.75, preds[2], 1e-9)

	// Later steps approach the asymptote instead of growing linearly.
	gapEarly := preds[1] - preds[0]
	gapLate := preds[3] - preds[2]
	assert.Less(t, gapLate, gapEarly)
}

func TestPredictNonPositiveHorizon(t *testing.T) {
	model := &ExpSmoothingModel{Family: KindHoltDamped, Level: 10, Phi: 1}
	assert.Nil(t, model.Predict(0))
	assert.Nil(t, model.Predict(-1))
}

func TestModelSnapshotRoundTrip(t *testing.T) {
	fitter := NewFitter(12)
	model, err := fitter.Fit(bondPaperYear)
	require.NoError(t, err)

	env, err := EncodeModel(model)
	require.NoError(t, err)
	assert.Equal(t, model.Kind(), env.Kind)

	revived, err := DecodeModel(env)
	require.NoError(t, err)

	assert.Equal(t, model.Kind(), revived.Kind())
	assert.Equal(t, model.Predict(6), revived.Predict(6))
}

func TestDecodeModelUnknownKind(t *testing.T) {
	_, err := DecodeModel(ModelEnvelope{Kind: "prophet", State: []byte(`{}`)})
	assert.Error(t, err)
}
