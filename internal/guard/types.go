package guard

import (
	"time"

	"github.com/danielpatrickdp/corridor-guard/internal/eval"
	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region config
// Config bundles gate and eval configs for a guard chain.
type Config struct {
	Gate gate.Config
	Eval eval.Config
}

// DefaultConfig returns standard settings for both stages.
func DefaultConfig() Config {
	return Config{
		Gate: gate.DefaultConfig(),
		Eval: eval.DefaultConfig(),
	}
}

// #endregion config

// #region journal
// Journal receives an audit entry for every guard decision. Implementations
// must not feed recorded state back into transition logic; the chain in
// memory is the only source of truth.
type Journal interface {
	RecordStep(StepRecord) error
}

// StepRecord is the audit payload for one guard decision.
type StepRecord struct {
	StepID      string
	ParentID    string
	Coordinates []risk.Coordinate
	Residual    float64
	Action      string // "init" | "commit" | "reject" | "gate_reject" | "eval_reject"
	Reason      string
	Derate      bool
	Stop        bool
	ErrorKind   string
	Flags       gate.Flags
	CreatedAt   time.Time
}

// #endregion journal

// #region step-result
// StepResult captures the outcome of one proposed transition.
type StepResult struct {
	StepID   string
	ParentID string
	Action   string
	Reason   string
	Residual float64

	// Gate stage (nil if validation failed before the gate ran)
	Gate *gate.Decision

	// Eval stage (nil if the gate rejected or validation failed)
	Eval *eval.Result
}

// #endregion step-result
