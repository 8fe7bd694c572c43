// Package replay drives a guard chain through a recorded sequence of
// coordinate frames, either from a JSON fixture or from captured live traffic,
// and reports what the chain decided at each step.
package replay

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/guard"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region harness-types

// Step is one proposed transition in a replay run.
type Step struct {
	StepID      string
	Coordinates []risk.Coordinate
	Flags       gate.Flags
}

// Result is the outcome of one replayed step.
type Result struct {
	StepID    string  `json:"step_id"`
	Action    string  `json:"action"`
	Reason    string  `json:"reason,omitempty"`
	Residual  float64 `json:"residual"`
	ErrorKind string  `json:"error_kind,omitempty"`
}

// Summary aggregates a replay run.
type Summary struct {
	TotalSteps    int     `json:"total_steps"`
	Commits       int     `json:"commits"`
	GateRejects   int     `json:"gate_rejects"`
	EvalRejects   int     `json:"eval_rejects"`
	InvalidFrames int     `json:"invalid_frames"`
	FinalResidual float64 `json:"final_residual"`
}

// #endregion harness-types

// #region replay

// Replay runs the steps against a fresh guard chain without journaling.
func Replay(initial []risk.Coordinate, steps []Step, config guard.Config) ([]Result, float64, error) {
	return ReplayJournaled(initial, steps, config, nil)
}

// ReplayJournaled runs the steps against a fresh guard chain, recording every
// decision to the journal when one is attached. Rejections are part of a
// normal run; only an unusable initial frame or a journal failure aborts.
func ReplayJournaled(initial []risk.Coordinate, steps []Step, config guard.Config, journal guard.Journal) ([]Result, float64, error) {
	g, err := guard.New(initial, config, journal)
	if err != nil {
		return nil, 0, fmt.Errorf("replay init: %w", err)
	}

	results := make([]Result, 0, len(steps))
	for i, step := range steps {
		res, err := g.Step(step.Coordinates, step.Flags)
		if err != nil && errors.Is(err, guard.ErrJournal) {
			return results, g.Current().Residual(), fmt.Errorf("replay step %d: %w", i, err)
		}

		r := Result{
			StepID:    step.StepID,
			Action:    res.Action,
			Reason:    res.Reason,
			Residual:  res.Residual,
			ErrorKind: guard.ErrorKind(err),
		}
		if r.StepID == "" {
			r.StepID = res.StepID
		}
		results = append(results, r)
	}

	return results, g.Current().Residual(), nil
}

// ReplayFixture loads a fixture and runs it.
func ReplayFixture(f *Fixture, journal guard.Journal) ([]Result, float64, error) {
	steps := make([]Step, len(f.Steps))
	for i, fs := range f.Steps {
		steps[i] = fs.ToStep()
	}
	return ReplayJournaled(ToCoordinates(f.Initial), steps, f.Config.ToGuardConfig(), journal)
}

// #endregion replay

// #region summarize

// Summarize tallies a replay run.
func Summarize(results []Result, finalResidual float64) Summary {
	s := Summary{TotalSteps: len(results), FinalResidual: finalResidual}
	for _, r := range results {
		switch r.Action {
		case "commit":
			s.Commits++
		case "gate_reject":
			s.GateRejects++
		case "eval_reject":
			s.EvalRejects++
		case "reject":
			s.InvalidFrames++
		}
	}
	return s
}

// #endregion summarize

// #region compare

// Mismatch describes a divergence between an expected and actual outcome.
type Mismatch struct {
	Index    int
	StepID   string
	Field    string
	Expected string
	Actual   string
}

// Compare checks replay results against a fixture's expectations. A nil slice
// means the run matched.
func Compare(expected []FixtureExpected, results []Result) []Mismatch {
	var out []Mismatch
	n := len(expected)
	if len(results) < n {
		n = len(results)
	}

	for i := 0; i < n; i++ {
		exp, got := expected[i], results[i]
		if exp.Action != got.Action {
			out = append(out, Mismatch{Index: i, StepID: got.StepID, Field: "action", Expected: exp.Action, Actual: got.Action})
		}
		if exp.ErrorKind != "" && exp.ErrorKind != got.ErrorKind {
			out = append(out, Mismatch{Index: i, StepID: got.StepID, Field: "error_kind", Expected: exp.ErrorKind, Actual: got.ErrorKind})
		}
	}

	if len(expected) != len(results) {
		out = append(out, Mismatch{
			Index:    n,
			Field:    "length",
			Expected: fmt.Sprintf("%d results", len(expected)),
			Actual:   fmt.Sprintf("%d results", len(results)),
		})
	}
	return out
}

// #endregion compare
