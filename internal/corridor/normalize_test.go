package corridor

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

func pmParam(dir Direction) Parameter {
	return Parameter{
		Name:      "pm25",
		Unit:      "ug/m3",
		DomainMin: 0,
		DomainMax: 500,
		Direction: dir,
	}
}

func TestNormalizeDirectionMax(t *testing.T) {
	def := CoordinateDef{ID: 1, ParamName: "pm25", RMin: 10, RMax: 60, Weight: 2.0}

	c, err := Normalize(pmParam(DirectionMax), def, 35)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if c.R != 0.5 {
		t.Fatalf("expected r=0.5 at band midpoint, got %g", c.R)
	}
	if c.W != 2.0 {
		t.Fatalf("expected w=2.0, got %g", c.W)
	}
}

func TestNormalizeDirectionMin(t *testing.T) {
	// For a min-direction parameter the band reverses: readings at RMax map
	// to r=0 and readings at RMin map to r=1.
	def := CoordinateDef{ID: 2, ParamName: "pm25", RMin: 10, RMax: 60, Weight: 1.0}

	c, err := Normalize(pmParam(DirectionMin), def, 60)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if c.R != 0.0 {
		t.Fatalf("expected r=0 at RMax for min direction, got %g", c.R)
	}

	c, err = Normalize(pmParam(DirectionMin), def, 10)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if c.R != 1.0 {
		t.Fatalf("expected r=1 at RMin for min direction, got %g", c.R)
	}
}

func TestNormalizeClipsOutsideBand(t *testing.T) {
	def := CoordinateDef{ID: 3, ParamName: "pm25", RMin: 10, RMax: 60, Weight: 1.0}

	c, err := Normalize(pmParam(DirectionMax), def, -100)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if c.R != 0.0 {
		t.Fatalf("expected clip to 0 below band, got %g", c.R)
	}

	c, err = Normalize(pmParam(DirectionMax), def, 1000)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if c.R != 1.0 {
		t.Fatalf("expected clip to 1 above band, got %g", c.R)
	}
}

func TestNormalizeInvalidBand(t *testing.T) {
	def := CoordinateDef{ID: 4, ParamName: "pm25", RMin: 60, RMax: 60, Weight: 1.0}

	_, err := Normalize(pmParam(DirectionMax), def, 30)
	if !errors.Is(err, ErrInvalidBand) {
		t.Fatalf("expected ErrInvalidBand, got %v", err)
	}
}

func TestNormalizeNegativeWeight(t *testing.T) {
	def := CoordinateDef{ID: 5, ParamName: "pm25", RMin: 10, RMax: 60, Weight: -1.0}

	_, err := Normalize(pmParam(DirectionMax), def, 30)
	if !errors.Is(err, risk.ErrNegativeWeight) {
		t.Fatalf("expected risk.ErrNegativeWeight, got %v", err)
	}
}

func TestNormalizeFrame(t *testing.T) {
	params := map[string]Parameter{
		"pm25": pmParam(DirectionMax),
		"o2":   {Name: "o2", Unit: "%", DomainMin: 0, DomainMax: 21, Direction: DirectionMin},
	}
	defs := []CoordinateDef{
		{ID: 1, ParamName: "pm25", RMin: 10, RMax: 60, Weight: 2.0, Channel: 0},
		{ID: 2, ParamName: "o2", RMin: 10, RMax: 20, Weight: 1.0, Channel: 1},
	}
	readings := map[string]float64{"pm25": 35, "o2": 15}

	coords, err := NormalizeFrame(params, defs, readings)
	if err != nil {
		t.Fatalf("NormalizeFrame: %v", err)
	}
	if len(coords) != 2 {
		t.Fatalf("expected 2 coordinates, got %d", len(coords))
	}
	if coords[0].R != 0.5 || coords[1].R != 0.5 {
		t.Fatalf("unexpected frame: %+v", coords)
	}

	// A frame feeds straight into the guard core.
	s, err := risk.FromRaw(coords)
	if err != nil {
		t.Fatalf("FromRaw on frame: %v", err)
	}
	if s.Residual() != 1.5 {
		t.Fatalf("expected residual 1.5, got %g", s.Residual())
	}
}

func TestNormalizeFrameUnknownParameter(t *testing.T) {
	defs := []CoordinateDef{{ID: 1, ParamName: "ghost", RMin: 0, RMax: 1, Weight: 1.0}}

	_, err := NormalizeFrame(map[string]Parameter{}, defs, map[string]float64{"ghost": 0.5})
	if !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestNormalizeFrameMissingReading(t *testing.T) {
	params := map[string]Parameter{"pm25": pmParam(DirectionMax)}
	defs := []CoordinateDef{{ID: 1, ParamName: "pm25", RMin: 10, RMax: 60, Weight: 1.0}}

	_, err := NormalizeFrame(params, defs, map[string]float64{})
	if !errors.Is(err, ErrMissingReading) {
		t.Fatalf("expected ErrMissingReading, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	b := DefaultBands()

	if got := Classify(0.1, b); got != BandSafe {
		t.Fatalf("expected safe, got %s", got)
	}
	if got := Classify(0.25, b); got != BandSafe {
		t.Fatalf("expected safe at threshold, got %s", got)
	}
	if got := Classify(0.4, b); got != BandGold {
		t.Fatalf("expected gold, got %s", got)
	}
	if got := Classify(0.9, b); got != BandHard {
		t.Fatalf("expected hard, got %s", got)
	}
}
