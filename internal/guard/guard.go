// Package guard owns a chain of risk states for one control loop and decides,
// step by step, whether a proposed coordinate frame may become the current
// state. All recovery policy (derate, stop) stays with the caller; the guard
// only classifies and reports.
package guard

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/corridor-guard/internal/eval"
	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region errors
var (
	// ErrVetoed marks a gate rejection that is not a residual increase
	// (corridor flag, legal flag, hard limit).
	ErrVetoed = errors.New("transition vetoed by gate")

	// ErrEvalFailed marks a post-gate evaluation failure.
	ErrEvalFailed = errors.New("transition failed evaluation")

	// ErrJournal marks an audit write failure. The step is not adopted.
	ErrJournal = errors.New("journal write failed")
)

// #endregion errors

// #region guard
// Guard holds the current risk state for one control loop. Not safe for
// concurrent use; each loop owns its own Guard.
type Guard struct {
	current   risk.State
	currentID string
	gate      *gate.Gate
	eval      *eval.Harness
	journal   Journal
}

// New validates the initial coordinate frame and starts a chain. journal may
// be nil; when present, the initial state is recorded as an "init" entry.
func New(initial []risk.Coordinate, config Config, journal Journal) (*Guard, error) {
	s, err := risk.FromRaw(initial)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	g := &Guard{
		current:   s,
		currentID: uuid.New().String(),
		gate:      gate.New(config.Gate),
		eval:      eval.NewHarness(config.Eval),
		journal:   journal,
	}

	if journal != nil {
		rec := StepRecord{
			StepID:      g.currentID,
			Coordinates: s.Coordinates(),
			Residual:    s.Residual(),
			Action:      "init",
			Reason:      "chain start",
			CreatedAt:   time.Now().UTC(),
		}
		if err := journal.RecordStep(rec); err != nil {
			return nil, fmt.Errorf("journal init: %w", err)
		}
	}

	return g, nil
}

// Current returns the current state of the chain.
func (g *Guard) Current() risk.State {
	return g.current
}

// CurrentID returns the step ID of the current state.
func (g *Guard) CurrentID() string {
	return g.currentID
}

// #endregion guard

// #region step
// Step proposes the next coordinate frame. The candidate must validate, clear
// the gate, and pass evaluation before it replaces the current state. On any
// failure the chain keeps its prior state and the error classifies the
// rejection; validation errors propagate unchanged from the risk package.
func (g *Guard) Step(coords []risk.Coordinate, flags gate.Flags) (StepResult, error) {
	stepID := uuid.New().String()

	candidate, err := risk.FromRaw(coords)
	if err != nil {
		res := StepResult{
			StepID:   stepID,
			ParentID: g.currentID,
			Action:   "reject",
			Reason:   err.Error(),
		}
		if jerr := g.record(res, coords, 0, flags, err); jerr != nil {
			return res, jerr
		}
		return res, err
	}

	decision := g.gate.Evaluate(g.current, candidate, flags)
	if decision.Action == "reject" {
		err := vetoError(decision)
		res := StepResult{
			StepID:   stepID,
			ParentID: g.currentID,
			Action:   "gate_reject",
			Reason:   decision.Reason,
			Residual: candidate.Residual(),
			Gate:     &decision,
		}
		if jerr := g.record(res, coords, candidate.Residual(), flags, err); jerr != nil {
			return res, jerr
		}
		return res, err
	}

	evalResult := g.eval.Run(candidate)
	if !evalResult.Passed {
		err := fmt.Errorf("%s: %w", evalResult.Reason, ErrEvalFailed)
		res := StepResult{
			StepID:   stepID,
			ParentID: g.currentID,
			Action:   "eval_reject",
			Reason:   evalResult.Reason,
			Residual: candidate.Residual(),
			Gate:     &decision,
			Eval:     &evalResult,
		}
		if jerr := g.record(res, coords, candidate.Residual(), flags, err); jerr != nil {
			return res, jerr
		}
		return res, err
	}

	// Commit: advance the chain.
	res := StepResult{
		StepID:   stepID,
		ParentID: g.currentID,
		Action:   "commit",
		Reason:   decision.Reason,
		Residual: candidate.Residual(),
		Gate:     &decision,
		Eval:     &evalResult,
	}
	if jerr := g.record(res, coords, candidate.Residual(), flags, nil); jerr != nil {
		// Fail closed: an unrecordable step is not adopted.
		return res, jerr
	}
	g.current = candidate
	g.currentID = stepID
	return res, nil
}

// record writes the audit entry when a journal is attached.
func (g *Guard) record(res StepResult, coords []risk.Coordinate, residual float64, flags gate.Flags, stepErr error) error {
	if g.journal == nil {
		return nil
	}

	rec := StepRecord{
		StepID:      res.StepID,
		ParentID:    res.ParentID,
		Coordinates: coords,
		Residual:    residual,
		Action:      res.Action,
		Reason:      res.Reason,
		ErrorKind:   ErrorKind(stepErr),
		Flags:       flags,
		CreatedAt:   time.Now().UTC(),
	}
	if res.Gate != nil {
		rec.Derate = res.Gate.Derate
		rec.Stop = res.Gate.Stop
	}
	if err := g.journal.RecordStep(rec); err != nil {
		return fmt.Errorf("step %s: %s: %w", res.StepID, err, ErrJournal)
	}
	return nil
}

// vetoError maps a gate rejection onto the error taxonomy. A residual veto
// surfaces as risk.ErrResidualIncreased so callers see the same error kind
// whether they use the guard or call risk.State.Next directly.
func vetoError(decision gate.Decision) error {
	for _, v := range decision.VetoSignals {
		if v.Type == gate.VetoResidual {
			return fmt.Errorf("%s: %w", v.Reason, risk.ErrResidualIncreased)
		}
	}
	return fmt.Errorf("%s: %w", decision.Reason, ErrVetoed)
}

// #endregion step

// #region error-kind
// ErrorKind classifies an error from Step into a stable journal string.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, risk.ErrEmptyCorridor):
		return "empty_corridor"
	case errors.Is(err, risk.ErrRiskOutOfRange):
		return "risk_out_of_range"
	case errors.Is(err, risk.ErrNegativeWeight):
		return "negative_weight"
	case errors.Is(err, risk.ErrResidualIncreased):
		return "residual_increased"
	case errors.Is(err, ErrEvalFailed):
		return "eval_failed"
	case errors.Is(err, ErrVetoed):
		return "vetoed"
	default:
		return "unknown"
	}
}

// #endregion error-kind
