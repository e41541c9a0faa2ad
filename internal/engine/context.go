package engine

import (
	"fmt"

	"github.com/mfalk/ellipsim/internal/dispatch"
	"github.com/mfalk/ellipsim/internal/forcefield"
)

// Context owns the shared simulation state: particle positions and
// velocities, the periodic box, the force buffer every kernel accumulates
// into, and the active compute platform. It implements dispatch.Context.
type Context struct {
	positions  []forcefield.Vec3
	velocities []forcefield.Vec3
	invMasses  []float64
	box        [3]forcefield.Vec3
	forces     []forcefield.Vec3
	factory    dispatch.KernelFactory

	dispatchers []*dispatch.ForceDispatcher

	// generation counts force-field changes so cached derived quantities
	// elsewhere can detect staleness.
	generation int
}

func NewContext(factory dispatch.KernelFactory) *Context {
	return &Context{
		factory: factory,
		box: [3]forcefield.Vec3{
			{X: 2}, {Y: 2}, {Z: 2},
		},
	}
}

// AddParticle appends a particle with the given mass. Mass 0 freezes the
// particle: it takes forces but never moves (virtual frame sites).
func (c *Context) AddParticle(mass float64, position forcefield.Vec3) int {
	c.positions = append(c.positions, position)
	c.velocities = append(c.velocities, forcefield.Vec3{})
	c.forces = append(c.forces, forcefield.Vec3{})
	inv := 0.0
	if mass > 0 {
		inv = 1 / mass
	}
	c.invMasses = append(c.invMasses, inv)
	return len(c.positions) - 1
}

// AddForce registers a force description and returns its dispatcher.
func (c *Context) AddForce(f *forcefield.GayBerneForce) *dispatch.ForceDispatcher {
	d := dispatch.NewForceDispatcher(f)
	c.dispatchers = append(c.dispatchers, d)
	return d
}

// Setup binds every registered force to a kernel. Any failure aborts with
// the offending force's diagnostic; already-bound forces are left bound.
func (c *Context) Setup() error {
	for i, d := range c.dispatchers {
		if d.Bound() {
			continue
		}
		if err := d.Setup(c); err != nil {
			return fmt.Errorf("force %d: %w", i, err)
		}
	}
	return nil
}

func (c *Context) NumParticles() int                      { return len(c.positions) }
func (c *Context) Positions() []forcefield.Vec3           { return c.positions }
func (c *Context) Velocities() []forcefield.Vec3          { return c.velocities }
func (c *Context) Forces() []forcefield.Vec3              { return c.forces }
func (c *Context) PeriodicBoxVectors() [3]forcefield.Vec3 { return c.box }
func (c *Context) KernelFactory() dispatch.KernelFactory  { return c.factory }

func (c *Context) SetPeriodicBoxVectors(b [3]forcefield.Vec3) { c.box = b }

func (c *Context) SetPosition(i int, p forcefield.Vec3) { c.positions[i] = p }
func (c *Context) SetVelocity(i int, v forcefield.Vec3) { c.velocities[i] = v }

func (c *Context) NotifyForceFieldChanged() { c.generation++ }

// Generation returns the force-field change counter.
func (c *Context) Generation() int { return c.generation }

func (c *Context) zeroForces() {
	for i := range c.forces {
		c.forces[i] = forcefield.Vec3{}
	}
}
