package corridor

// #region direction
// Direction states which end of a parameter's domain is risky.
type Direction string

const (
	// DirectionMax: higher raw readings are riskier (e.g. pollutant concentration).
	DirectionMax Direction = "max"
	// DirectionMin: lower raw readings are riskier (e.g. oxygen percentage).
	DirectionMin Direction = "min"
)

// #endregion direction

// #region parameter
// Parameter describes one monitored physical quantity.
type Parameter struct {
	Name       string
	Unit       string
	DomainMin  float64
	DomainMax  float64
	LegalLimit *float64 // regulatory ceiling, nil when none applies
	GoldLimit  *float64 // aspirational ceiling, nil when none applies
	Direction  Direction
}

// #endregion parameter

// #region coordinate-def
// CoordinateDef binds a parameter to a corridor band and a residual channel.
// Readings at RMin map to r=0 and readings at RMax map to r=1 (reversed for
// DirectionMin parameters); outside the band the value clips.
type CoordinateDef struct {
	ID        int
	ParamName string
	RMin      float64
	RMax      float64
	Weight    float64
	Channel   int
}

// #endregion coordinate-def

// #region bands
// Band classifies a normalized risk value against corridor thresholds.
type Band string

const (
	BandSafe Band = "safe"
	BandGold Band = "gold"
	BandHard Band = "hard"
)

// Bands holds the classification thresholds for normalized risk values.
type Bands struct {
	Safe float64 `json:"safe"`
	Gold float64 `json:"gold"`
}

// DefaultBands returns the standard corridor thresholds.
func DefaultBands() Bands {
	return Bands{Safe: 0.25, Gold: 0.5}
}

// Classify places a normalized risk value into a band.
func Classify(r float64, b Bands) Band {
	switch {
	case r <= b.Safe:
		return BandSafe
	case r <= b.Gold:
		return BandGold
	default:
		return BandHard
	}
}

// #endregion bands
