// Package lca compares life-cycle assessment scenarios. A candidate process
// only clears the LCA gate when its global warming potential is strictly
// below the status-quo baseline for the same region and functional unit.
package lca

import (
	"errors"
	"fmt"
)

// #region modes
const (
	ModeStatusQuo  = "STATUS_QUO"
	ModeCybocinder = "CYBOCINDER"
)

// Functional units a scenario can be normalized against.
const (
	UnitMSWTon    = "MSW_TON"
	UnitEnergyMWh = "ENERGY_MWH"
	UnitResource  = "RESOURCE_KG"
)

// #endregion modes

// #region scenario
// Scenario is one modeled life-cycle outcome for a region.
type Scenario struct {
	ScenarioID     string  `json:"scenario_id"`
	RegionID       string  `json:"region_id"`
	FunctionalUnit string  `json:"functional_unit"`
	Mode           string  `json:"mode"`
	GWPKgCO2eq     float64 `json:"gwp_kg_co2eq"`

	GridGCO2PerKWh           float64 `json:"grid_gco2_per_kwh"`
	LandfillRefGWPKgPerTon   float64 `json:"landfill_ref_gwp_kgco2_per_ton"`
	AvoidedVirginMetalKgCO2  float64 `json:"avoided_virgin_metal_kgco2eq_per_kg"`
	EnergyRecoveryEfficiency float64 `json:"energy_recovery_efficiency"`
	RecyclingRate            float64 `json:"recycling_rate"`
}

// #endregion scenario

// #region compare
// ErrScenarioMismatch rejects a comparison across regions, functional units,
// or with scenarios in the wrong modes.
var ErrScenarioMismatch = errors.New("lca scenarios are not comparable")

// Compare reports whether the candidate scenario beats the status-quo
// baseline. Both scenarios must share region and functional unit, and the
// base must be STATUS_QUO while the candidate is CYBOCINDER.
func Compare(base, candidate Scenario) (bool, error) {
	if base.RegionID != candidate.RegionID {
		return false, fmt.Errorf("region %q vs %q: %w", base.RegionID, candidate.RegionID, ErrScenarioMismatch)
	}
	if base.FunctionalUnit != candidate.FunctionalUnit {
		return false, fmt.Errorf("functional unit %q vs %q: %w", base.FunctionalUnit, candidate.FunctionalUnit, ErrScenarioMismatch)
	}
	if base.Mode != ModeStatusQuo {
		return false, fmt.Errorf("base mode %q, want %s: %w", base.Mode, ModeStatusQuo, ErrScenarioMismatch)
	}
	if candidate.Mode != ModeCybocinder {
		return false, fmt.Errorf("candidate mode %q, want %s: %w", candidate.Mode, ModeCybocinder, ErrScenarioMismatch)
	}
	return candidate.GWPKgCO2eq < base.GWPKgCO2eq, nil
}

// #endregion compare
