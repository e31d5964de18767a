// Package attribution implements multi-touch marketing attribution: it turns
// stored sessions and conversion events into per-channel credit reports.
//
// The package is organized into focused modules:
//   - attribution.go: Attribution model enum and validation
//   - channel.go: Touchpoints and channel naming
//   - paths.go: Conversion path construction
//   - credit.go: Per-model credit distribution
//   - report.go: Aggregation into channel statistics and report totals
//
// Everything here is a pure, synchronous transformation over data already
// fetched into memory; the wall clock used by time-decay is passed in
// explicitly.
package attribution

import "fmt"

// Model identifies one of the supported credit-distribution models.
//
// The model is a closed enum rather than a free string so an unrecognized
// value is rejected up front instead of silently producing zero credit.
type Model string

const (
	ModelFirstTouch    Model = "first-touch"
	ModelLastTouch     Model = "last-touch"
	ModelLinear        Model = "linear"
	ModelPositionBased Model = "position-based"
	ModelTimeDecay     Model = "time-decay"
)

// DefaultModel is applied when a caller omits the model parameter.
const DefaultModel = ModelFirstTouch

// InvalidModelError reports an unrecognized attribution model value.
type InvalidModelError struct {
	Value string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("invalid attribution model: %q", e.Value)
}

// AllModels returns the supported models in their canonical order.
func AllModels() []Model {
	return []Model{
		ModelFirstTouch,
		ModelLastTouch,
		ModelLinear,
		ModelPositionBased,
		ModelTimeDecay,
	}
}

// Valid reports whether m is one of the supported models.
func (m Model) Valid() bool {
	switch m {
	case ModelFirstTouch, ModelLastTouch, ModelLinear, ModelPositionBased, ModelTimeDecay:
		return true
	}
	return false
}

// ParseModel validates a raw model string. An empty value falls back to
// DefaultModel; anything else unrecognized returns InvalidModelError.
func ParseModel(raw string) (Model, error) {
	if raw == "" {
		return DefaultModel, nil
	}
	m := Model(raw)
	if !m.Valid() {
		return "", &InvalidModelError{Value: raw}
	}
	return m, nil
}
