package metrics

import (
	"math"

	"github.com/mfalk/ellipsim/internal/engine"
	"github.com/mfalk/ellipsim/internal/forcefield"
)

// EnergyDrift observes a run and tracks the worst relative deviation of
// total energy (potential + kinetic) from its value at the first step. A
// symplectic integrator with a conservative force should keep this small;
// growth signals a too-large timestep or an inconsistent kernel.
type EnergyDrift struct {
	eng      *engine.Engine
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(eng *engine.Engine) *EnergyDrift {
	return &EnergyDrift{eng: eng}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) OnStep(step int, t, energy float64, positions []forcefield.Vec3) {
	total := energy + e.eng.KineticEnergy()
	if e.samples == 0 {
		e.initial = total
	}
	e.samples++
	if e.initial != 0 {
		drift := math.Abs(total-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
