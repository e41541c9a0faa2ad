package dispatch

import "github.com/mfalk/ellipsim/internal/forcefield"

// CalcGayBerneForceKernel is the backend-independent identifier every
// platform resolves to its own Gay-Berne implementation.
const CalcGayBerneForceKernel = "calcGayBerneForce"

// Context is the slice of the enclosing simulation a force dispatcher and
// its kernel are allowed to see. Positions and Forces expose shared
// buffers owned by the simulation; kernels accumulate into Forces, never
// replace it.
type Context interface {
	NumParticles() int
	PeriodicBoxVectors() [3]forcefield.Vec3
	Positions() []forcefield.Vec3
	Forces() []forcefield.Vec3
	KernelFactory() KernelFactory

	// NotifyForceFieldChanged invalidates any derived quantities the
	// simulation caches from force-field parameters.
	NotifyForceFieldChanged()
}

// KernelFactory resolves a kernel identifier to a handle for whatever
// backend is active. Implemented by each compute platform.
type KernelFactory interface {
	CreateKernel(name string, ctx Context) (KernelHandle, error)
}

// KernelHandle is the opaque backend unit that actually computes forces
// and energies. A handle is owned by exactly one dispatcher and is never
// shared across dispatchers or goroutines.
type KernelHandle interface {
	// Initialize performs one-time setup from the simulation state and a
	// validated description. It may fail if the backend cannot represent
	// the description.
	Initialize(ctx Context, desc *forcefield.GayBerneForce) error

	// Evaluate computes the potential energy and, if includeForces is
	// set, accumulates forces into the context's shared buffer.
	Evaluate(ctx Context, includeForces, includeEnergy bool) float64

	// RefreshParameters replaces the kernel's internal copy of
	// per-particle and per-exception values without re-initializing. It
	// must not require reallocating topology-derived structures when the
	// topology is unchanged.
	RefreshParameters(ctx Context, desc *forcefield.GayBerneForce) error
}
