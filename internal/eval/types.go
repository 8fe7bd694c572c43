package eval

import "github.com/danielpatrickdp/corridor-guard/internal/corridor"

// #region eval-config
// Config holds bounds for post-gate state evaluation.
type Config struct {
	MaxResidual float64        // hard cap on the committed residual (0 = disabled)
	Bands       corridor.Bands // thresholds for per-coordinate band metrics
}

// DefaultConfig returns the standard evaluation bounds. The residual cap is
// disabled by default; the Lyapunov comparison in the gate is the binding
// constraint.
func DefaultConfig() Config {
	return Config{
		MaxResidual: 0,
		Bands:       corridor.DefaultBands(),
	}
}

// #endregion eval-config

// #region eval-result
// Metric is one named evaluation measurement.
type Metric struct {
	Name  string
	Value float64
	Pass  bool
}

// Result bundles the outcome of one evaluation run.
type Result struct {
	Passed  bool
	Metrics []Metric
	Reason  string
}

// #endregion eval-result
