// Package journal persists an append-only audit trail of guard decisions in
// SQLite. It is observability only: the guard never reads recorded state back
// to drive a transition.
package journal

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/corridor-guard/internal/guard"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS risk_steps (
	step_id     TEXT PRIMARY KEY,
	parent_id   TEXT,
	coords      BLOB NOT NULL,
	residual    REAL NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES risk_steps(step_id)
);

CREATE TABLE IF NOT EXISTS decision_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	step_id     TEXT NOT NULL,
	parent_id   TEXT,
	action      TEXT NOT NULL,
	reason      TEXT,
	coords      BLOB NOT NULL,
	residual    REAL NOT NULL,
	derate      INTEGER NOT NULL DEFAULT 0,
	stop        INTEGER NOT NULL DEFAULT 0,
	error_kind  TEXT,
	flags_json  TEXT,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region journal-struct
// Journal writes guard decisions to SQLite.
type Journal struct {
	db *sql.DB
}

// #endregion journal-struct

// #region constructor
// Open opens a SQLite database and runs migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// NewWithDB wraps an existing connection; the caller owns the schema and
// lifetime. Used by tests that need direct table access.
func NewWithDB(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// DB returns the underlying *sql.DB for use by tooling.
func (j *Journal) DB() *sql.DB {
	return j.db
}

// #endregion constructor

// #region record-step
// RecordStep appends one guard decision. Committed states (init and commit
// actions) also land in risk_steps so the chain can be walked later.
func (j *Journal) RecordStep(rec guard.StepRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	flagsJSON, err := json.Marshal(rec.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO decision_log (step_id, parent_id, action, reason, coords, residual, derate, stop, error_kind, flags_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StepID,
		nullIfEmpty(rec.ParentID),
		rec.Action,
		nullIfEmpty(rec.Reason),
		EncodeCoords(rec.Coordinates),
		rec.Residual,
		boolToInt(rec.Derate),
		boolToInt(rec.Stop),
		nullIfEmpty(rec.ErrorKind),
		string(flagsJSON),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}

	if rec.Action == "init" || rec.Action == "commit" {
		_, err = tx.Exec(
			`INSERT INTO risk_steps (step_id, parent_id, coords, residual, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.StepID,
			nullIfEmpty(rec.ParentID),
			EncodeCoords(rec.Coordinates),
			rec.Residual,
			rec.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion record-step

// #region queries
// StepRow is one decision_log entry with decoded coordinates.
type StepRow struct {
	ID          int64             `json:"id"`
	StepID      string            `json:"step_id"`
	ParentID    string            `json:"parent_id,omitempty"`
	Action      string            `json:"action"`
	Reason      string            `json:"reason,omitempty"`
	Coordinates []risk.Coordinate `json:"coordinates"`
	Residual    float64           `json:"residual"`
	Derate      bool              `json:"derate"`
	Stop        bool              `json:"stop"`
	ErrorKind   string            `json:"error_kind,omitempty"`
	FlagsJSON   string            `json:"flags_json,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ChainState is one committed state from risk_steps.
type ChainState struct {
	StepID      string            `json:"step_id"`
	ParentID    string            `json:"parent_id,omitempty"`
	Coordinates []risk.Coordinate `json:"coordinates"`
	Residual    float64           `json:"residual"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ListSteps returns the most recent decisions, newest first.
func (j *Journal) ListSteps(limit int) ([]StepRow, error) {
	rows, err := j.db.Query(
		`SELECT id, step_id, parent_id, action, reason, coords, residual, derate, stop, error_kind, flags_json, created_at
		 FROM decision_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []StepRow
	for rows.Next() {
		r, err := scanStepRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetStep retrieves a single decision by step ID.
func (j *Journal) GetStep(stepID string) (StepRow, error) {
	row := j.db.QueryRow(
		`SELECT id, step_id, parent_id, action, reason, coords, residual, derate, stop, error_kind, flags_json, created_at
		 FROM decision_log WHERE step_id = ?`, stepID,
	)
	r, err := scanStepRow(row)
	if err != nil {
		return StepRow{}, fmt.Errorf("get step %s: %w", stepID, err)
	}
	return r, nil
}

// Chain returns the most recent committed states, newest first.
func (j *Journal) Chain(limit int) ([]ChainState, error) {
	rows, err := j.db.Query(
		`SELECT step_id, parent_id, coords, residual, created_at
		 FROM risk_steps ORDER BY created_at DESC, step_id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list chain: %w", err)
	}
	defer rows.Close()

	var out []ChainState
	for rows.Next() {
		var cs ChainState
		var parentID sql.NullString
		var blob []byte
		var createdStr string
		if err := rows.Scan(&cs.StepID, &parentID, &blob, &cs.Residual, &createdStr); err != nil {
			return nil, fmt.Errorf("scan chain row: %w", err)
		}
		if parentID.Valid {
			cs.ParentID = parentID.String
		}
		cs.Coordinates = DecodeCoords(blob)
		cs.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, cs)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStepRow(s rowScanner) (StepRow, error) {
	var r StepRow
	var parentID, reason, errorKind, flagsJSON sql.NullString
	var blob []byte
	var derate, stop int
	var createdStr string

	err := s.Scan(&r.ID, &r.StepID, &parentID, &r.Action, &reason, &blob,
		&r.Residual, &derate, &stop, &errorKind, &flagsJSON, &createdStr)
	if err != nil {
		return StepRow{}, fmt.Errorf("scan decision row: %w", err)
	}

	if parentID.Valid {
		r.ParentID = parentID.String
	}
	if reason.Valid {
		r.Reason = reason.String
	}
	if errorKind.Valid {
		r.ErrorKind = errorKind.String
	}
	if flagsJSON.Valid {
		r.FlagsJSON = flagsJSON.String
	}
	r.Coordinates = DecodeCoords(blob)
	r.Derate = derate != 0
	r.Stop = stop != 0
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return r, nil
}

// #endregion queries

// #region coord-encoding
// Coordinates encode as little-endian float64 pairs, 16 bytes each.
func EncodeCoords(coords []risk.Coordinate) []byte {
	buf := make([]byte, len(coords)*16)
	for i, c := range coords {
		binary.LittleEndian.PutUint64(buf[i*16:], math.Float64bits(c.R))
		binary.LittleEndian.PutUint64(buf[i*16+8:], math.Float64bits(c.W))
	}
	return buf
}

// DecodeCoords is the inverse of EncodeCoords.
func DecodeCoords(b []byte) []risk.Coordinate {
	n := len(b) / 16
	coords := make([]risk.Coordinate, n)
	for i := 0; i < n; i++ {
		coords[i].R = math.Float64frombits(binary.LittleEndian.Uint64(b[i*16:]))
		coords[i].W = math.Float64frombits(binary.LittleEndian.Uint64(b[i*16+8:]))
	}
	return coords
}

// #endregion coord-encoding

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
