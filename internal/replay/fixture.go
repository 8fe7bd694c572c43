package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/corridor-guard/internal/corridor"
	"github.com/danielpatrickdp/corridor-guard/internal/gate"
	"github.com/danielpatrickdp/corridor-guard/internal/guard"
	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string              `json:"description"`
	Initial         []FixtureCoordinate `json:"initial"`
	Config          FixtureConfig       `json:"config"`
	Steps           []FixtureStep       `json:"steps"`
	ExpectedResults []FixtureExpected   `json:"expected_results"`
}

// FixtureCoordinate mirrors risk.Coordinate with JSON tags.
type FixtureCoordinate struct {
	R float64 `json:"r"`
	W float64 `json:"w"`
}

// FixtureFlags mirrors gate.Flags with JSON tags.
type FixtureFlags struct {
	CorridorOK bool `json:"corridor_ok"`
	LegalOK    bool `json:"legal_ok"`
	GoldOK     bool `json:"gold_ok"`
	LCAOK      bool `json:"lca_ok"`
	PilotOK    bool `json:"pilot_ok"`
}

// FixtureStep is one proposed coordinate frame with its external flags.
type FixtureStep struct {
	StepID      string              `json:"step_id"`
	Coordinates []FixtureCoordinate `json:"coordinates"`
	Flags       FixtureFlags        `json:"flags"`
}

// FixtureExpected captures the expected outcome per step.
type FixtureExpected struct {
	StepID    string `json:"step_id"`
	Action    string `json:"action"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// FixtureConfig bundles gate and eval sub-configs for a replay run.
type FixtureConfig struct {
	GateConfig FixtureGateConfig `json:"gate_config"`
	EvalConfig FixtureEvalConfig `json:"eval_config"`
}

// FixtureGateConfig mirrors gate.Config with JSON tags. Zero values fall
// back to the package defaults so fixtures can omit them.
type FixtureGateConfig struct {
	Epsilon   float64 `json:"epsilon"`
	HardLimit float64 `json:"hard_limit"`
}

// FixtureEvalConfig mirrors eval.Config with JSON tags.
type FixtureEvalConfig struct {
	MaxResidual float64 `json:"max_residual"`
	SafeBand    float64 `json:"safe_band"`
	GoldBand    float64 `json:"gold_band"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToCoordinates converts fixture coordinates to domain coordinates.
func ToCoordinates(fcs []FixtureCoordinate) []risk.Coordinate {
	coords := make([]risk.Coordinate, len(fcs))
	for i, fc := range fcs {
		coords[i] = risk.Coordinate{R: fc.R, W: fc.W}
	}
	return coords
}

// ToFlags converts fixture flags to domain flags.
func (ff FixtureFlags) ToFlags() gate.Flags {
	return gate.Flags{
		CorridorOK: ff.CorridorOK,
		LegalOK:    ff.LegalOK,
		GoldOK:     ff.GoldOK,
		LCAOK:      ff.LCAOK,
		PilotOK:    ff.PilotOK,
	}
}

// ToStep converts a fixture step to a domain replay step.
func (fs FixtureStep) ToStep() Step {
	return Step{
		StepID:      fs.StepID,
		Coordinates: ToCoordinates(fs.Coordinates),
		Flags:       fs.Flags.ToFlags(),
	}
}

// ToGuardConfig converts a fixture config to a domain guard config,
// substituting defaults for omitted values.
func (fc FixtureConfig) ToGuardConfig() guard.Config {
	config := guard.DefaultConfig()

	if fc.GateConfig.Epsilon != 0 {
		config.Gate.Epsilon = fc.GateConfig.Epsilon
	}
	if fc.GateConfig.HardLimit != 0 {
		config.Gate.HardLimit = fc.GateConfig.HardLimit
	}
	if fc.EvalConfig.MaxResidual != 0 {
		config.Eval.MaxResidual = fc.EvalConfig.MaxResidual
	}
	if fc.EvalConfig.SafeBand != 0 || fc.EvalConfig.GoldBand != 0 {
		config.Eval.Bands = corridor.Bands{
			Safe: fc.EvalConfig.SafeBand,
			Gold: fc.EvalConfig.GoldBand,
		}
	}

	return config
}

// FromGuardConfig builds the fixture form of a guard config, used by export
// tooling.
func FromGuardConfig(config guard.Config) FixtureConfig {
	return FixtureConfig{
		GateConfig: FixtureGateConfig{
			Epsilon:   config.Gate.Epsilon,
			HardLimit: config.Gate.HardLimit,
		},
		EvalConfig: FixtureEvalConfig{
			MaxResidual: config.Eval.MaxResidual,
			SafeBand:    config.Eval.Bands.Safe,
			GoldBand:    config.Eval.Bands.Gold,
		},
	}
}

// #endregion fixture-loader
