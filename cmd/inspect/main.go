package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/corridor-guard/internal/corridor"
	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/journal"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to corridor_guard.db")
	last := flag.Int("last", 20, "show N most recent decisions")
	step := flag.String("step", "", "show single step detail")
	chain := flag.Bool("chain", false, "show committed chain instead of decisions")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/corridor_guard.db [--last N] [--step id] [--chain] [--json]")
		os.Exit(2)
	}

	j, err := journal.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	switch {
	case *step != "":
		err = runDetailMode(j, *step, *jsonOut)
	case *chain:
		err = runChainMode(j, *last, *jsonOut)
	default:
		err = runListMode(j, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(j *journal.Journal, last int, jsonOut bool) error {
	steps, err := j.ListSteps(last)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	// Journal returns DESC, reverse for chronological display.
	for i, k := 0, len(steps)-1; i < k; i, k = i+1, k-1 {
		steps[i], steps[k] = steps[k], steps[i]
	}

	if jsonOut {
		return printJSON(steps)
	}

	fmt.Printf("%-10s  %-12s  %10s  %-18s  %-6s  %s\n",
		"Step", "Action", "Residual", "Error", "Derate", "Time")
	fmt.Printf("%-10s+-%-12s+-%10s+-%-18s+-%-6s+-%s\n",
		"----------", "------------", "----------", "------------------", "------", "--------------------")

	for _, s := range steps {
		errKind := s.ErrorKind
		if errKind == "" {
			errKind = "—"
		}
		fmt.Printf("%-10s  %-12s  %10.4f  %-18s  %-6v  %s\n",
			shortID(s.StepID), s.Action, s.Residual, errKind, s.Derate,
			s.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}

	latest := steps[len(steps)-1]
	fmt.Printf("\nLatest coordinates:\n")
	printCoordinates(latest.Coordinates)
	return nil
}

// #endregion list-mode

// #region chain-mode

func runChainMode(j *journal.Journal, last int, jsonOut bool) error {
	chain, err := j.Chain(last)
	if err != nil {
		return err
	}
	if len(chain) == 0 {
		fmt.Fprintln(os.Stderr, "no committed states found")
		return nil
	}

	if jsonOut {
		return printJSON(chain)
	}

	fmt.Printf("%-10s  %-10s  %10s  %6s  %s\n",
		"Step", "Parent", "Residual", "Coords", "Time")
	fmt.Printf("%-10s+-%-10s+-%10s+-%6s+-%s\n",
		"----------", "----------", "----------", "------", "--------------------")

	for _, cs := range chain {
		parent := shortID(cs.ParentID)
		if parent == "" {
			parent = "—"
		}
		fmt.Printf("%-10s  %-10s  %10.4f  %6d  %s\n",
			shortID(cs.StepID), parent, cs.Residual, len(cs.Coordinates),
			cs.CreatedAt.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion chain-mode

// #region detail-mode

type detailOutput struct {
	journal.StepRow
	Flags *gate.Flags    `json:"flags,omitempty"`
	Bands map[string]int `json:"bands"`
}

func runDetailMode(j *journal.Journal, stepID string, jsonOut bool) error {
	row, err := j.GetStep(stepID)
	if err != nil {
		return err
	}

	out := detailOutput{StepRow: row, Bands: bandCounts(row.Coordinates)}
	if row.FlagsJSON != "" {
		var flags gate.Flags
		if err := json.Unmarshal([]byte(row.FlagsJSON), &flags); err == nil {
			out.Flags = &flags
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Step:      %s\n", row.StepID)
	fmt.Printf("Parent:    %s\n", row.ParentID)
	fmt.Printf("Created:   %s\n", row.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("Action:    %s\n", row.Action)
	fmt.Printf("Reason:    %s\n", row.Reason)
	fmt.Printf("Residual:  %.6f\n", row.Residual)
	fmt.Printf("Derate:    %v\n", row.Derate)
	fmt.Printf("Stop:      %v\n", row.Stop)
	if row.ErrorKind != "" {
		fmt.Printf("Error:     %s\n", row.ErrorKind)
	}

	fmt.Printf("\nCoordinates:\n")
	printCoordinates(row.Coordinates)

	fmt.Printf("\nBands: safe=%d gold=%d hard=%d\n",
		out.Bands["safe"], out.Bands["gold"], out.Bands["hard"])

	if out.Flags != nil {
		fmt.Printf("\nFlags:\n")
		fmt.Printf("  Corridor: %v\n", out.Flags.CorridorOK)
		fmt.Printf("  Legal:    %v\n", out.Flags.LegalOK)
		fmt.Printf("  Gold:     %v\n", out.Flags.GoldOK)
		fmt.Printf("  LCA:      %v\n", out.Flags.LCAOK)
		fmt.Printf("  Pilot:    %v\n", out.Flags.PilotOK)
	}

	return nil
}

// #endregion detail-mode

// #region metrics

func bandCounts(coords []risk.Coordinate) map[string]int {
	bands := corridor.DefaultBands()
	counts := map[string]int{"safe": 0, "gold": 0, "hard": 0}
	for _, c := range coords {
		counts[string(corridor.Classify(c.R, bands))]++
	}
	return counts
}

// #endregion metrics

// #region output

func printCoordinates(coords []risk.Coordinate) {
	bands := corridor.DefaultBands()
	for i, c := range coords {
		fmt.Printf("  [%2d]  r=%.4f  w=%.4f  %s\n", i, c.R, c.W, corridor.Classify(c.R, bands))
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
