package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mfalk/ellipsim/internal/forcefield"
	"github.com/mfalk/ellipsim/internal/kernels"
)

func pairSystem(t *testing.T, separation float64) *Context {
	t.Helper()
	ctx := NewContext(kernels.AutoSelect())
	ctx.AddParticle(1.0, forcefield.Vec3{})
	ctx.AddParticle(1.0, forcefield.Vec3{X: separation})

	f := forcefield.NewGayBerneForce()
	for i := 0; i < 2; i++ {
		f.AddParticle(0.3, 1.0, -1, -1,
			forcefield.Vec3{X: 0.15, Y: 0.15, Z: 0.15},
			forcefield.Vec3{X: 1, Y: 1, Z: 1})
	}
	ctx.AddForce(f)
	if err := ctx.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return ctx
}

func TestRunConservesEnergy(t *testing.T) {
	// A bound pair starting at rest near the potential minimum should
	// oscillate with little total-energy drift under velocity Verlet.
	ctx := pairSystem(t, 0.36)
	eng := New(ctx)

	pe0, err := eng.Step(1e-4, AllGroups)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	total0 := pe0 + eng.KineticEnergy()

	result, err := eng.Run(context.Background(), Config{Dt: 1e-4, Steps: 200, Groups: AllGroups})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Steps != 200 {
		t.Fatalf("expected 200 steps, got %d", result.Steps)
	}

	totalEnd := result.Energies[len(result.Energies)-1] + eng.KineticEnergy()
	if total0 == 0 {
		t.Fatal("unexpected zero total energy")
	}
	drift := math.Abs(totalEnd-total0) / math.Abs(total0)
	if drift > 0.05 {
		t.Errorf("energy drift %.3f exceeds 5%%", drift)
	}
}

func TestRunGroupMaskSkipsForce(t *testing.T) {
	ctx := pairSystem(t, 0.36)
	ctx.dispatchers[0].Force().ForceGroup = 3
	eng := New(ctx)

	// Mask without bit 3: the only force is gated out, so energy stays
	// zero and nothing moves.
	result, err := eng.Run(context.Background(), Config{Dt: 1e-4, Steps: 5, Groups: 1 << 0})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, e := range result.Energies {
		if e != 0 {
			t.Errorf("step %d: expected zero energy with the force gated out, got %g", i, e)
		}
	}
	if v := ctx.Velocities()[0]; v != (forcefield.Vec3{}) {
		t.Errorf("gated-out force must not move particles, got velocity %v", v)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	ctx := pairSystem(t, 0.36)
	eng := New(ctx)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Steps: 10, Groups: AllGroups}},
		{"negative dt", Config{Dt: -1e-4, Steps: 10, Groups: AllGroups}},
		{"zero steps", Config{Dt: 1e-4, Steps: 0, Groups: AllGroups}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eng.Run(context.Background(), tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx := pairSystem(t, 0.36)
	eng := New(ctx)

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Run(cancelCtx, Config{Dt: 1e-4, Steps: 1000, Groups: AllGroups})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSetupFailurePropagatesViolation(t *testing.T) {
	ctx := NewContext(kernels.AutoSelect())
	ctx.AddParticle(1.0, forcefield.Vec3{})

	f := forcefield.NewGayBerneForce()
	f.AddParticle(-1, 1.0, -1, -1,
		forcefield.Vec3{X: 0.15, Y: 0.15, Z: 0.15},
		forcefield.Vec3{X: 1, Y: 1, Z: 1})
	ctx.AddForce(f)

	err := ctx.Setup()
	var v *forcefield.Violation
	if !errors.As(err, &v) || v.Kind != forcefield.InvalidSigma {
		t.Fatalf("expected InvalidSigma from setup, got %v", err)
	}
}

func TestApplyUpdateChangesForcesAndGeneration(t *testing.T) {
	ctx := pairSystem(t, 0.5)
	eng := New(ctx)
	d := ctx.dispatchers[0]

	before, err := eng.computeForces(AllGroups)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	gen := ctx.Generation()
	d.Force().Particles[0].Epsilon = 4.0
	if err := d.ApplyUpdate(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if ctx.Generation() != gen+1 {
		t.Errorf("expected generation bump, got %d -> %d", gen, ctx.Generation())
	}

	after, err := eng.computeForces(AllGroups)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if after == before {
		t.Error("updated parameters must change the energy")
	}
	if !d.Bound() {
		t.Error("update must keep the dispatcher bound")
	}
}

func TestObserverSeesEverySteps(t *testing.T) {
	ctx := pairSystem(t, 0.5)
	eng := New(ctx)

	var calls int
	eng.AddObserver(observerFunc(func(step int, tt, energy float64, pos []forcefield.Vec3) {
		calls++
	}))
	if _, err := eng.Run(context.Background(), Config{Dt: 1e-4, Steps: 7, Groups: AllGroups}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 7 {
		t.Errorf("expected 7 observer calls, got %d", calls)
	}
}

type observerFunc func(step int, t, energy float64, positions []forcefield.Vec3)

func (f observerFunc) OnStep(step int, t, energy float64, positions []forcefield.Vec3) {
	f(step, t, energy, positions)
}

func TestFrozenParticlesDoNotMove(t *testing.T) {
	ctx := NewContext(kernels.AutoSelect())
	ctx.AddParticle(0, forcefield.Vec3{}) // massless: frozen
	ctx.AddParticle(1.0, forcefield.Vec3{X: 0.4})

	f := forcefield.NewGayBerneForce()
	for i := 0; i < 2; i++ {
		f.AddParticle(0.3, 1.0, -1, -1,
			forcefield.Vec3{X: 0.15, Y: 0.15, Z: 0.15},
			forcefield.Vec3{X: 1, Y: 1, Z: 1})
	}
	ctx.AddForce(f)
	if err := ctx.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	eng := New(ctx)
	if _, err := eng.Run(context.Background(), Config{Dt: 1e-4, Steps: 20, Groups: AllGroups}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p := ctx.Positions()[0]; p != (forcefield.Vec3{}) {
		t.Errorf("frozen particle moved to %v", p)
	}
}
