package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Model is a fitted forecaster for one item's monthly series. Predictions
// are raw floats; rounding and clipping happen at the forecasting surface
// so every model family gets identical postprocessing.
type Model interface {
	// Predict returns point forecasts for the next horizon months.
	Predict(horizon int) []float64
	// Kind names the model family, used in snapshots and logs.
	Kind() string
}

// Fitter fits a Model to a chronologically ordered monthly series.
type Fitter interface {
	Fit(values []float64) (Model, error)
}

// Model families stored in snapshots.
const (
	KindHoltWinters = "holt_winters"
	KindHoltDamped  = "holt_damped"
)

var (
	ErrSeriesTooShort   = errors.New("series has too few populated months to fit")
	ErrSeriesDegenerate = errors.New("series variance is degenerate")
	ErrBadSeriesValue   = errors.New("series contains a non-finite value")
)

// ModelEnvelope wraps a fitted model with its family tag so snapshots can
// be decoded back into the right concrete type.
type ModelEnvelope struct {
	Kind  string          `json:"kind"`
	State json.RawMessage `json:"state"`
}

// EncodeModel wraps a model for snapshot storage.
func EncodeModel(m Model) (ModelEnvelope, error) {
	state, err := json.Marshal(m)
	if err != nil {
		return ModelEnvelope{}, fmt.Errorf("failed to encode %s model: %w", m.Kind(), err)
	}
	return ModelEnvelope{Kind: m.Kind(), State: state}, nil
}

// DecodeModel revives a snapshot entry into a usable Model.
func DecodeModel(env ModelEnvelope) (Model, error) {
	switch env.Kind {
	case KindHoltWinters, KindHoltDamped:
		var m ExpSmoothingModel
		if err := json.Unmarshal(env.State, &m); err != nil {
			return nil, fmt.Errorf("failed to decode %s model: %w", env.Kind, err)
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", env.Kind)
	}
}
