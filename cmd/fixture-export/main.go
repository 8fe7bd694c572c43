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
	dbPath := flag.String("db", "", "path to corridor_guard.db")
	last := flag.Int("last", 8, "number of most recent decisions to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

// exportRow holds one decision_log row prepared for export.
type exportRow struct {
	StepID    string
	Action    string
	Coords    []risk.Coordinate
	ErrorKind string
	Flags     gate.Flags
}

func run(dbPath string, last int, outPath string) error {
	j, err := journal.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	db := j.DB()

	// The chain start is the oldest init decision.
	var initBlob []byte
	err = db.QueryRow(
		`SELECT coords FROM decision_log WHERE action = 'init' ORDER BY id ASC LIMIT 1`,
	).Scan(&initBlob)
	if err != nil {
		return fmt.Errorf("find initial state: %w", err)
	}
	initial := journal.DecodeCoords(initBlob)

	// Last N non-init rows (DESC then reverse for chronological order).
	rows, err := db.Query(
		`SELECT step_id, action, coords, error_kind, flags_json FROM (
			SELECT id, step_id, action, coords, error_kind, flags_json FROM decision_log
			WHERE action != 'init'
			ORDER BY id DESC LIMIT ?
		) sub ORDER BY id ASC`, last,
	)
	if err != nil {
		return fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var exportRows []exportRow
	for rows.Next() {
		var r exportRow
		var blob []byte
		var errorKind, flagsJSON sql.NullString
		if err := rows.Scan(&r.StepID, &r.Action, &blob, &errorKind, &flagsJSON); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		r.Coords = journal.DecodeCoords(blob)
		if errorKind.Valid {
			r.ErrorKind = errorKind.String
		}
		if flagsJSON.Valid && flagsJSON.String != "" {
			json.Unmarshal([]byte(flagsJSON.String), &r.Flags)
		}
		exportRows = append(exportRows, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	if len(exportRows) == 0 {
		return fmt.Errorf("no decisions found in last %d rows", last)
	}

	fmt.Printf("Found %d decisions\n", len(exportRows))

	fixture := buildFixture(initial, exportRows)

	return writeFixture(fixture, outPath)
}

// #endregion extract

// #region output

func buildFixture(initial []risk.Coordinate, rows []exportRow) replay.Fixture {
	steps := make([]replay.FixtureStep, len(rows))
	expected := make([]replay.FixtureExpected, len(rows))

	for i, r := range rows {
		steps[i] = replay.FixtureStep{
			StepID:      r.StepID,
			Coordinates: toFixtureCoords(r.Coords),
			Flags: replay.FixtureFlags{
				CorridorOK: r.Flags.CorridorOK,
				LegalOK:    r.Flags.LegalOK,
				GoldOK:     r.Flags.GoldOK,
				LCAOK:      r.Flags.LCAOK,
				PilotOK:    r.Flags.PilotOK,
			},
		}
		expected[i] = replay.FixtureExpected{
			StepID:    r.StepID,
			Action:    r.Action,
			ErrorKind: r.ErrorKind,
		}
	}

	return replay.Fixture{
		Description:     fmt.Sprintf("Live export: %d decisions from guard journal", len(rows)),
		Initial:         toFixtureCoords(initial),
		Config:          replay.FromGuardConfig(guard.DefaultConfig()),
		Steps:           steps,
		ExpectedResults: expected,
	}
}

func toFixtureCoords(coords []risk.Coordinate) []replay.FixtureCoordinate {
	out := make([]replay.FixtureCoordinate, len(coords))
	for i, c := range coords {
		out[i] = replay.FixtureCoordinate{R: c.R, W: c.W}
	}
	return out
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d steps)\n", outPath, len(data), len(fixture.Steps))
	return nil
}

// #endregion output
