package replay

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/guard"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

func allClear() gate.Flags {
	return gate.Flags{CorridorOK: true, LegalOK: true, GoldOK: true, LCAOK: true, PilotOK: true}
}

func TestReplayMixedOutcomes(t *testing.T) {
	initial := []risk.Coordinate{{R: 0.5, W: 2.0}}
	steps := []Step{
		{StepID: "a", Coordinates: []risk.Coordinate{{R: 0.4, W: 2.0}}, Flags: allClear()},
		{StepID: "b", Coordinates: []risk.Coordinate{{R: 0.9, W: 2.0}}, Flags: allClear()},
		{StepID: "c", Coordinates: []risk.Coordinate{{R: 0.3, W: 2.0}}, Flags: allClear()},
		{StepID: "d", Coordinates: []risk.Coordinate{{R: 1.5, W: 2.0}}, Flags: allClear()},
	}

	results, final, err := Replay(initial, steps, guard.DefaultConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	if results[0].Action != "commit" {
		t.Fatalf("step a: expected commit, got %s (%s)", results[0].Action, results[0].Reason)
	}
	if results[1].Action != "gate_reject" || results[1].ErrorKind != "residual_increased" {
		t.Fatalf("step b: expected residual rejection, got %+v", results[1])
	}
	if results[2].Action != "commit" {
		t.Fatalf("step c: expected commit after rejection, got %s", results[2].Action)
	}
	if results[3].Action != "reject" || results[3].ErrorKind != "risk_out_of_range" {
		t.Fatalf("step d: expected invalid frame, got %+v", results[3])
	}

	// The chain ends on step c's residual.
	if final != 0.6 {
		t.Fatalf("expected final residual 0.6, got %g", final)
	}

	s := Summarize(results, final)
	if s.Commits != 2 || s.GateRejects != 1 || s.InvalidFrames != 1 || s.EvalRejects != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.TotalSteps != 4 || s.FinalResidual != 0.6 {
		t.Fatalf("unexpected summary totals: %+v", s)
	}
}

func TestReplayInvalidInitialFrame(t *testing.T) {
	_, _, err := Replay(nil, nil, guard.DefaultConfig())
	if !errors.Is(err, risk.ErrEmptyCorridor) {
		t.Fatalf("expected ErrEmptyCorridor, got %v", err)
	}
}

func TestReplayGeneratesStepIDs(t *testing.T) {
	initial := []risk.Coordinate{{R: 0.5, W: 2.0}}
	steps := []Step{
		{Coordinates: []risk.Coordinate{{R: 0.4, W: 2.0}}, Flags: allClear()},
	}

	results, _, err := Replay(initial, steps, guard.DefaultConfig())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if results[0].StepID == "" {
		t.Fatal("expected a generated step ID when the step carries none")
	}
}

type failingJournal struct {
	failAfter int
	calls     int
}

func (f *failingJournal) RecordStep(rec guard.StepRecord) error {
	f.calls++
	if f.calls > f.failAfter {
		return errors.New("disk full")
	}
	return nil
}

func TestReplayJournaledAbortsOnJournalFailure(t *testing.T) {
	initial := []risk.Coordinate{{R: 0.5, W: 2.0}}
	steps := []Step{
		{StepID: "a", Coordinates: []risk.Coordinate{{R: 0.4, W: 2.0}}, Flags: allClear()},
		{StepID: "b", Coordinates: []risk.Coordinate{{R: 0.3, W: 2.0}}, Flags: allClear()},
	}

	// init + first step succeed, second step's write fails.
	j := &failingJournal{failAfter: 2}
	results, _, err := ReplayJournaled(initial, steps, guard.DefaultConfig(), j)
	if !errors.Is(err, guard.ErrJournal) {
		t.Fatalf("expected ErrJournal, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 completed result before abort, got %d", len(results))
	}
}

func TestCompareMatches(t *testing.T) {
	expected := []FixtureExpected{
		{StepID: "a", Action: "commit"},
		{StepID: "b", Action: "gate_reject", ErrorKind: "residual_increased"},
	}
	results := []Result{
		{StepID: "a", Action: "commit", Residual: 0.8},
		{StepID: "b", Action: "gate_reject", ErrorKind: "residual_increased"},
	}
	if m := Compare(expected, results); m != nil {
		t.Fatalf("expected clean comparison, got %+v", m)
	}
}

func TestCompareReportsMismatches(t *testing.T) {
	expected := []FixtureExpected{
		{StepID: "a", Action: "commit"},
		{StepID: "b", Action: "commit"},
	}
	results := []Result{
		{StepID: "a", Action: "gate_reject", ErrorKind: "vetoed"},
	}

	m := Compare(expected, results)
	if len(m) != 2 {
		t.Fatalf("expected action + length mismatches, got %+v", m)
	}
	if m[0].Field != "action" || m[0].Expected != "commit" || m[0].Actual != "gate_reject" {
		t.Fatalf("unexpected first mismatch: %+v", m[0])
	}
	if m[1].Field != "length" {
		t.Fatalf("unexpected second mismatch: %+v", m[1])
	}
}
