package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/mfalk/ellipsim/internal/forcefield"
)

// AllGroups enables every force group in an evaluation mask.
const AllGroups = -1

// Config controls a run.
type Config struct {
	Dt     float64
	Steps  int
	Groups int // force-group bitmask, AllGroups for everything
}

func DefaultConfig() Config {
	return Config{Dt: 0.001, Steps: 1000, Groups: AllGroups}
}

// Observer is called after every completed step.
type Observer interface {
	OnStep(step int, t, energy float64, positions []forcefield.Vec3)
}

// Result is a completed run's energy trace.
type Result struct {
	Times    []float64
	Energies []float64
	Steps    int
}

// Engine advances a Context with velocity-Verlet integration, pulling
// forces from every registered dispatcher each step.
type Engine struct {
	ctx       *Context
	observers []Observer

	t float64
}

func New(ctx *Context) *Engine {
	return &Engine{ctx: ctx}
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Context() *Context { return e.ctx }

// Step advances one velocity-Verlet step and returns the potential energy
// at the new positions.
func (e *Engine) Step(dt float64, groups int) (float64, error) {
	c := e.ctx
	if len(c.dispatchers) == 0 {
		return 0, fmt.Errorf("engine: no forces registered")
	}

	// First half-kick and drift use the forces at the current positions.
	if _, err := e.computeForces(groups); err != nil {
		return 0, err
	}
	for i := range c.positions {
		inv := c.invMasses[i]
		if inv == 0 {
			continue
		}
		c.velocities[i] = c.velocities[i].Add(c.forces[i].Scale(0.5 * dt * inv))
		c.positions[i] = c.positions[i].Add(c.velocities[i].Scale(dt))
	}

	// Second half-kick with forces at the new positions.
	energy, err := e.computeForces(groups)
	if err != nil {
		return 0, err
	}
	for i := range c.positions {
		inv := c.invMasses[i]
		if inv == 0 {
			continue
		}
		c.velocities[i] = c.velocities[i].Add(c.forces[i].Scale(0.5 * dt * inv))
	}

	e.t += dt
	return energy, nil
}

func (e *Engine) computeForces(groups int) (float64, error) {
	c := e.ctx
	c.zeroForces()
	total := 0.0
	for i, d := range c.dispatchers {
		energy, err := d.Evaluate(c, true, true, groups)
		if err != nil {
			return 0, fmt.Errorf("force %d: %w", i, err)
		}
		total += energy
	}
	return total, nil
}

// Run executes cfg.Steps steps, honoring ctx cancellation between steps.
func (e *Engine) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("engine: dt must be positive, got %g", cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("engine: steps must be positive, got %d", cfg.Steps)
	}

	result := &Result{
		Times:    make([]float64, 0, cfg.Steps),
		Energies: make([]float64, 0, cfg.Steps),
	}

	for step := 0; step < cfg.Steps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		energy, err := e.Step(cfg.Dt, cfg.Groups)
		if err != nil {
			return result, err
		}
		if math.IsNaN(energy) || math.IsInf(energy, 0) {
			return result, fmt.Errorf("engine: energy diverged at step %d", step)
		}

		result.Times = append(result.Times, e.t)
		result.Energies = append(result.Energies, energy)
		result.Steps++

		for _, o := range e.observers {
			o.OnStep(step, e.t, energy, e.ctx.positions)
		}
	}
	return result, nil
}

// KineticEnergy sums ½mv² over mobile particles.
func (e *Engine) KineticEnergy() float64 {
	c := e.ctx
	ke := 0.0
	for i, v := range c.velocities {
		if c.invMasses[i] == 0 {
			continue
		}
		ke += 0.5 * v.Dot(v) / c.invMasses[i]
	}
	return ke
}
