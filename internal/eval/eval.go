package eval

import (
	"fmt"

	"github.com/danielpatrickdp/corridor-guard/internal/corridor"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region eval-harness
// Harness runs lightweight validation on a candidate state after it clears
// the gate, producing metrics for the decision journal.
type Harness struct {
	config Config
}

// NewHarness creates an eval harness with the given configuration.
func NewHarness(config Config) *Harness {
	return &Harness{config: config}
}

// Run evaluates a candidate state. Returns pass/fail with metrics.
func (h *Harness) Run(candidate risk.State) Result {
	var metrics []Metric
	passed := true
	var failReasons []string

	// 1. Residual cap, when configured.
	residual := candidate.Residual()
	residualPass := h.config.MaxResidual <= 0 || residual <= h.config.MaxResidual
	metrics = append(metrics, Metric{
		Name:  "residual",
		Value: residual,
		Pass:  residualPass,
	})
	if !residualPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("residual %.6f exceeds cap %.6f", residual, h.config.MaxResidual))
	}

	// 2. Band distribution. Informational: hard-band coordinates already
	// tripped the gate's hard-limit veto if they sat at r>=1.
	coords := candidate.Coordinates()
	var safe, gold, hard int
	maxR := 0.0
	for _, c := range coords {
		switch corridor.Classify(c.R, h.config.Bands) {
		case corridor.BandSafe:
			safe++
		case corridor.BandGold:
			gold++
		default:
			hard++
		}
		if c.R > maxR {
			maxR = c.R
		}
	}
	metrics = append(metrics,
		Metric{Name: "safe_band_count", Value: float64(safe), Pass: true},
		Metric{Name: "gold_band_count", Value: float64(gold), Pass: true},
		Metric{Name: "hard_band_count", Value: float64(hard), Pass: hard == 0},
		Metric{Name: "max_coordinate", Value: maxR, Pass: maxR < 1.0},
	)

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness
