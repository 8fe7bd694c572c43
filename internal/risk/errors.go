package risk

import "errors"

// #region errors
// Sentinel errors returned by FromRaw and Next. Callers classify with
// errors.Is; the wrapped message carries the offending index and value.
var (
	// ErrEmptyCorridor rejects an empty coordinate set: no corridor, no deployment.
	ErrEmptyCorridor = errors.New("no risk coordinates: no corridor, no deployment")

	// ErrRiskOutOfRange rejects a normalized risk value outside [0,1].
	ErrRiskOutOfRange = errors.New("risk value out of [0,1]")

	// ErrNegativeWeight rejects a coordinate with W < 0.
	ErrNegativeWeight = errors.New("negative weight")

	// ErrResidualIncreased rejects a transition whose residual grew beyond
	// tolerance. The caller must de-rate or stop; the prior state stays current.
	ErrResidualIncreased = errors.New("lyapunov residual increased: auto-derate/stop required")
)

// #endregion errors
