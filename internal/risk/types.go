package risk

// #region coordinate
// Coordinate is one weighted, normalized risk value: R in [0,1] where 0 is
// fully safe and 1 is at the hard limit, W >= 0 is its contribution weight.
type Coordinate struct {
	R float64 `json:"r"`
	W float64 `json:"w"`
}

// #endregion coordinate

// #region state
// State is an immutable corridor snapshot: an ordered, non-empty set of
// coordinates plus the residual V = Σ R·W derived from them. A State is only
// ever produced by FromRaw or Next, so the residual always matches the
// coordinates.
type State struct {
	coords   []Coordinate
	residual float64
}

// Residual returns the weighted residual V of this state.
func (s State) Residual() float64 {
	return s.residual
}

// Coordinates returns a copy of the coordinate set in its original order.
func (s State) Coordinates() []Coordinate {
	out := make([]Coordinate, len(s.coords))
	copy(out, s.coords)
	return out
}

// Len returns the number of coordinates in the corridor.
func (s State) Len() int {
	return len(s.coords)
}

// #endregion state
