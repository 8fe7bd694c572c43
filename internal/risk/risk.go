package risk

import "fmt"

// #region tolerance
// Tolerance is the inclusive slack allowed on a residual comparison. A
// candidate residual equal to prior + Tolerance still passes; anything above
// is a violation.
const Tolerance = 1e-9

// #endregion tolerance

// #region from-raw
// FromRaw validates a raw coordinate set and constructs a State with its
// residual. Checks run in order and stop at the first failure: the set must
// be non-empty, every R must lie in [0,1], every W must be >= 0. Pure; the
// input slice is copied, never aliased.
func FromRaw(coords []Coordinate) (State, error) {
	if len(coords) == 0 {
		return State{}, ErrEmptyCorridor
	}

	var v float64
	for i, c := range coords {
		if c.R < 0 || c.R > 1 {
			return State{}, fmt.Errorf("coordinate %d: r=%g: %w", i, c.R, ErrRiskOutOfRange)
		}
		if c.W < 0 {
			return State{}, fmt.Errorf("coordinate %d: w=%g: %w", i, c.W, ErrNegativeWeight)
		}
		v += c.R * c.W
	}

	owned := make([]Coordinate, len(coords))
	copy(owned, coords)
	return State{coords: owned, residual: v}, nil
}

// #endregion from-raw

// #region next
// Next attempts the transition from s to a candidate built from coords.
// Validation failures from FromRaw propagate unchanged. The candidate is
// rejected with ErrResidualIncreased when its residual exceeds the current
// one by more than Tolerance; otherwise it becomes the new current state.
// s is never modified — on failure the caller keeps s as its current state.
func (s State) Next(coords []Coordinate) (State, error) {
	candidate, err := FromRaw(coords)
	if err != nil {
		return State{}, err
	}
	if candidate.residual > s.residual+Tolerance {
		return State{}, fmt.Errorf("candidate residual %g exceeds prior %g: %w",
			candidate.residual, s.residual, ErrResidualIncreased)
	}
	return candidate, nil
}

// #endregion next
