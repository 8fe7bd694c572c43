package lca

import (
	"errors"
	"testing"
)

func baseScenario() Scenario {
	return Scenario{
		ScenarioID:     "phx-base",
		RegionID:       "phoenix-az",
		FunctionalUnit: UnitMSWTon,
		Mode:           ModeStatusQuo,
		GWPKgCO2eq:     480.0,
	}
}

func candidateScenario() Scenario {
	return Scenario{
		ScenarioID:     "phx-cybo",
		RegionID:       "phoenix-az",
		FunctionalUnit: UnitMSWTon,
		Mode:           ModeCybocinder,
		GWPKgCO2eq:     310.0,
	}
}

func TestCompareCandidateWins(t *testing.T) {
	ok, err := Compare(baseScenario(), candidateScenario())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if !ok {
		t.Fatal("expected candidate with lower GWP to pass")
	}
}

func TestCompareCandidateLoses(t *testing.T) {
	cand := candidateScenario()
	cand.GWPKgCO2eq = 600.0

	ok, err := Compare(baseScenario(), cand)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if ok {
		t.Fatal("expected candidate with higher GWP to fail")
	}
}

func TestCompareEqualGWPLoses(t *testing.T) {
	cand := candidateScenario()
	cand.GWPKgCO2eq = baseScenario().GWPKgCO2eq

	ok, err := Compare(baseScenario(), cand)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if ok {
		t.Fatal("equal GWP must not pass: the comparison is strict")
	}
}

func TestCompareRegionMismatch(t *testing.T) {
	cand := candidateScenario()
	cand.RegionID = "tucson-az"

	_, err := Compare(baseScenario(), cand)
	if !errors.Is(err, ErrScenarioMismatch) {
		t.Fatalf("expected ErrScenarioMismatch, got %v", err)
	}
}

func TestCompareUnitMismatch(t *testing.T) {
	cand := candidateScenario()
	cand.FunctionalUnit = UnitEnergyMWh

	_, err := Compare(baseScenario(), cand)
	if !errors.Is(err, ErrScenarioMismatch) {
		t.Fatalf("expected ErrScenarioMismatch, got %v", err)
	}
}

func TestCompareModeMismatch(t *testing.T) {
	base := baseScenario()
	base.Mode = ModeCybocinder
	if _, err := Compare(base, candidateScenario()); !errors.Is(err, ErrScenarioMismatch) {
		t.Fatalf("expected ErrScenarioMismatch for base mode, got %v", err)
	}

	cand := candidateScenario()
	cand.Mode = ModeStatusQuo
	if _, err := Compare(baseScenario(), cand); !errors.Is(err, ErrScenarioMismatch) {
		t.Fatalf("expected ErrScenarioMismatch for candidate mode, got %v", err)
	}
}
