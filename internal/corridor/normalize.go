package corridor

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region errors
var (
	// ErrInvalidBand rejects a coordinate definition with RMax <= RMin.
	ErrInvalidBand = errors.New("corridor band has r_max <= r_min")

	// ErrUnknownParameter rejects a coordinate definition that names a
	// parameter with no definition.
	ErrUnknownParameter = errors.New("no parameter definition for coordinate")

	// ErrMissingReading rejects a frame that lacks a reading for a defined
	// coordinate.
	ErrMissingReading = errors.New("no reading for coordinate")
)

// #endregion errors

// #region normalize
// Normalize maps a raw parameter reading into a weighted risk coordinate.
// DirectionMax parameters scale (x - RMin)/(RMax - RMin); DirectionMin
// parameters scale the reverse. The result clips to [0,1] at the band edges,
// so readings outside the band saturate rather than fail validation.
func Normalize(param Parameter, def CoordinateDef, x float64) (risk.Coordinate, error) {
	denom := def.RMax - def.RMin
	if denom <= 0 {
		return risk.Coordinate{}, fmt.Errorf("coordinate %d (%s): r_min=%g r_max=%g: %w",
			def.ID, def.ParamName, def.RMin, def.RMax, ErrInvalidBand)
	}
	if def.Weight < 0 {
		return risk.Coordinate{}, fmt.Errorf("coordinate %d (%s): w=%g: %w",
			def.ID, def.ParamName, def.Weight, risk.ErrNegativeWeight)
	}

	var raw float64
	if param.Direction == DirectionMin {
		raw = (def.RMax - x) / denom
	} else {
		raw = (x - def.RMin) / denom
	}

	return risk.Coordinate{R: clip01(raw), W: def.Weight}, nil
}

// NormalizeFrame builds a full coordinate frame for one control step. defs
// order is preserved in the output so residuals are reproducible across runs.
func NormalizeFrame(params map[string]Parameter, defs []CoordinateDef, readings map[string]float64) ([]risk.Coordinate, error) {
	coords := make([]risk.Coordinate, 0, len(defs))
	for _, def := range defs {
		param, ok := params[def.ParamName]
		if !ok {
			return nil, fmt.Errorf("coordinate %d: %q: %w", def.ID, def.ParamName, ErrUnknownParameter)
		}
		x, ok := readings[def.ParamName]
		if !ok {
			return nil, fmt.Errorf("coordinate %d: %q: %w", def.ID, def.ParamName, ErrMissingReading)
		}
		c, err := Normalize(param, def, x)
		if err != nil {
			return nil, err
		}
		coords = append(coords, c)
	}
	return coords, nil
}

// #endregion normalize

// #region helpers
func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// #endregion helpers
