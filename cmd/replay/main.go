package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/guard"
	"github.com/danielpatrickdp/corridor-guard/internal/journal"
	"github.com/danielpatrickdp/corridor-guard/internal/replay"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to corridor_guard.db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/corridor_guard.db")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-extract

// decisionRow is the slice of decision_log a replay run needs.
type decisionRow struct {
	StepID    string
	Action    string
	Coords    []risk.Coordinate
	FlagsJSON string
}

func runDBMode(dbPath string) int {
	j, err := journal.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer j.Close()

	db := j.DB()

	// The chain start is the oldest init decision.
	var initBlob []byte
	err = db.QueryRow(
		`SELECT coords FROM decision_log WHERE action = 'init' ORDER BY id ASC LIMIT 1`,
	).Scan(&initBlob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "find initial state: %v\n", err)
		return 2
	}
	initial := journal.DecodeCoords(initBlob)

	rows, err := db.Query(
		`SELECT step_id, action, coords, flags_json FROM decision_log
		 WHERE action != 'init' ORDER BY id ASC`,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query decisions: %v\n", err)
		return 2
	}
	defer rows.Close()

	var decisions []decisionRow
	for rows.Next() {
		var r decisionRow
		var blob []byte
		var flagsJSON sql.NullString
		if err := rows.Scan(&r.StepID, &r.Action, &blob, &flagsJSON); err != nil {
			fmt.Fprintf(os.Stderr, "scan row: %v\n", err)
			return 2
		}
		r.Coords = journal.DecodeCoords(blob)
		if flagsJSON.Valid {
			r.FlagsJSON = flagsJSON.String
		}
		decisions = append(decisions, r)
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "iterate rows: %v\n", err)
		return 2
	}

	if len(decisions) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found in decision_log")
		return 2
	}

	steps := make([]replay.Step, len(decisions))
	recorded := make([]string, len(decisions))
	for i, d := range decisions {
		steps[i] = toStep(d)
		recorded[i] = d.Action
	}

	results, _, err := replay.Replay(initial, steps, guard.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	return printComparison(results, recorded)
}

// toStep converts a recorded decision back into a replay step.
func toStep(d decisionRow) replay.Step {
	step := replay.Step{
		StepID:      d.StepID,
		Coordinates: d.Coords,
	}
	if d.FlagsJSON != "" {
		var flags gate.Flags
		if err := json.Unmarshal([]byte(d.FlagsJSON), &flags); err == nil {
			step.Flags = flags
		}
	}
	return step
}

// #endregion db-extract

// #region output

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, final, err := replay.ReplayFixture(f, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	expected := make([]string, len(f.ExpectedResults))
	for i, e := range f.ExpectedResults {
		expected[i] = e.Action
	}

	code := printComparison(results, expected)

	s := replay.Summarize(results, final)
	fmt.Printf("Residual: %g after %d commits (%d gate, %d eval, %d invalid)\n",
		s.FinalResidual, s.Commits, s.GateRejects, s.EvalRejects, s.InvalidFrames)
	return code
}

// printComparison outputs a comparison table and returns the exit code.
// expected holds the reference actions (from DB or fixture).
func printComparison(results []replay.Result, expected []string) int {
	fmt.Printf("%-38s| %-13s| %-13s| %s\n", "Step", "Expected", "Replayed", "Match")
	fmt.Printf("%-38s+%-13s+%-13s+%s\n",
		"--------------------------------------", "--------------", "--------------", "------")

	matches := 0
	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	for i := 0; i < total; i++ {
		exp := expected[i]
		got := results[i].Action
		match := "DIFF"

		if actionsMatch(exp, got) {
			match = "OK"
			matches++
		}

		fmt.Printf("%-38s| %-13s| %-13s| %s\n", results[i].StepID, exp, got, match)
	}

	diverge := total - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

// actionsMatch compares expected vs replayed action.
// A bare "reject" matches any rejection flavor.
func actionsMatch(expected, replayed string) bool {
	if expected == replayed {
		return true
	}
	if expected == "reject" && (replayed == "gate_reject" || replayed == "eval_reject") {
		return true
	}
	return false
}

// #endregion output
