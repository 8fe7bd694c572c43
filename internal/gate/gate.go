package gate

import (
	"fmt"

	"github.com/danielpatrickdp/corridor-guard/internal/risk"
)

// #region gate
// Gate evaluates whether a proposed risk state should replace the current one.
type Gate struct {
	config Config
}

// New creates a gate with the given configuration.
func New(config Config) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then derives the composite gates.
// Takes the current state, the validated candidate state, and external flags.
func (g *Gate) Evaluate(current, candidate risk.State, flags Flags) Decision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	// 1. Any coordinate at or over the hard limit forces a stop.
	hardBreach := false
	for i, c := range candidate.Coordinates() {
		if c.R >= g.config.HardLimit {
			hardBreach = true
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoHardLimit,
				Reason: fmt.Sprintf("coordinate %d at r=%.4f breaches hard limit %.4f", i, c.R, g.config.HardLimit),
			})
		}
	}

	// 2. Lyapunov descent: residual must not grow beyond epsilon.
	descending := candidate.Residual() <= current.Residual()+g.config.Epsilon
	if !descending {
		vetoes = append(vetoes, VetoSignal{
			Type: VetoResidual,
			Reason: fmt.Sprintf("residual %.6f exceeds prior %.6f + eps %.2g",
				candidate.Residual(), current.Residual(), g.config.Epsilon),
		})
	}

	// 3. External corridor and legal flags
	if !flags.CorridorOK {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoCorridor,
			Reason: "corridor flag cleared by external check",
		})
	}
	if !flags.LegalOK {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoLegal,
			Reason: "legal limit flag cleared by external check",
		})
	}

	// --- Composite gates ---
	safety := flags.CorridorOK && flags.LegalOK && descending && !hardBreach
	scaleup := safety && flags.GoldOK && flags.LCAOK
	deploy := flags.LCAOK && flags.PilotOK

	if len(vetoes) > 0 {
		return Decision{
			Action:         "reject",
			Reason:         fmt.Sprintf("vetoed: %s", vetoes[0].Reason),
			Derate:         true,
			Stop:           hardBreach,
			Vetoed:         true,
			VetoSignals:    vetoes,
			SafetyGate:     safety,
			ScaleupGate:    scaleup,
			DeploymentGate: deploy,
		}
	}

	return Decision{
		Action:         "commit",
		Reason:         fmt.Sprintf("passed gate: residual %.6f -> %.6f", current.Residual(), candidate.Residual()),
		SafetyGate:     safety,
		ScaleupGate:    scaleup,
		DeploymentGate: deploy,
	}
}

// #endregion gate
