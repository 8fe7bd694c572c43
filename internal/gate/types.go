package gate

import "github.com/danielpatrickdp/corridor-guard/internal/risk"

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoHardLimit VetoType = "hard_limit"
	VetoResidual  VetoType = "residual_increase"
	VetoCorridor  VetoType = "corridor_violation"
	VetoLegal     VetoType = "legal_violation"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region flags
// Flags carries the results of external checks into the gate evaluation.
// The gate trusts them as given; producing them is the control loop's job.
type Flags struct {
	CorridorOK bool `json:"corridor_ok"` // all coordinates inside their corridors
	LegalOK    bool `json:"legal_ok"`    // no regulatory limit breached
	GoldOK     bool `json:"gold_ok"`     // aspirational limits held
	LCAOK      bool `json:"lca_ok"`      // life-cycle assessment favors the candidate
	PilotOK    bool `json:"pilot_ok"`    // pilot acceptance gates passed
}

// #endregion flags

// #region gate-config
// Config holds thresholds for gate decisions.
type Config struct {
	Epsilon   float64 // inclusive slack on the residual comparison
	HardLimit float64 // coordinate value treated as a hard-limit breach
}

// DefaultConfig returns the standard gate thresholds.
func DefaultConfig() Config {
	return Config{
		Epsilon:   risk.Tolerance,
		HardLimit: 1.0,
	}
}

// #endregion gate-config

// #region gate-decision
// Decision is the output of the gate evaluation.
type Decision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Derate      bool // caller must reduce actuation before retrying
	Stop        bool // caller must halt; a hard limit was breached
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed

	// Composite gates derived from flags and the residual comparison.
	SafetyGate     bool
	ScaleupGate    bool
	DeploymentGate bool
}

// #endregion gate-decision
