package dispatch

import "github.com/mfalk/ellipsim/internal/forcefield"

type state int

const (
	unbound state = iota
	bound
	destroyed
)

// ForceDispatcher binds one GayBerneForce description to one backend
// kernel. It validates the description before the backend ever sees it,
// gates per-step evaluation on the force group mask, and pushes parameter
// edits to the kernel without re-creating it.
//
// Lifecycle: Unbound (constructed) -> Bound (Setup succeeded) ->
// Destroyed. A bound dispatcher never goes back to unbound; parameter
// changes go through ApplyUpdate.
type ForceDispatcher struct {
	force  *forcefield.GayBerneForce
	st     state
	kernel KernelHandle
}

// NewForceDispatcher wraps a description the caller continues to own.
// Mutations to the description take effect at the next Setup or
// ApplyUpdate, never implicitly.
func NewForceDispatcher(force *forcefield.GayBerneForce) *ForceDispatcher {
	return &ForceDispatcher{force: force}
}

func (d *ForceDispatcher) Force() *forcefield.GayBerneForce { return d.force }

// Bound reports whether Setup has succeeded and Destroy has not been
// called.
func (d *ForceDispatcher) Bound() bool { return d.st == bound }

// Setup validates the description against the context and, on success,
// creates and initializes the backend kernel. A failed Setup leaves the
// dispatcher unbound with no kernel, and may be retried after the
// description is fixed; validation always runs again on retry.
func (d *ForceDispatcher) Setup(ctx Context) error {
	switch d.st {
	case bound:
		return ErrAlreadyBound
	case destroyed:
		return ErrDestroyed
	}
	if v := forcefield.Validate(d.force, ctx.NumParticles(), ctx.PeriodicBoxVectors()); v != nil {
		return v
	}
	kernel, err := ctx.KernelFactory().CreateKernel(CalcGayBerneForceKernel, ctx)
	if err != nil {
		return &BackendError{Kernel: CalcGayBerneForceKernel, Wrapped: err}
	}
	if err := kernel.Initialize(ctx, d.force); err != nil {
		return &BackendError{Kernel: CalcGayBerneForceKernel, Wrapped: err}
	}
	d.kernel = kernel
	d.st = bound
	return nil
}

// Evaluate computes this force's contribution for one step. If the
// force's group bit is not set in groups it contributes nothing: zero
// energy, force buffer untouched, no kernel call. Repeated calls within a
// step recompute; nothing is cached here.
func (d *ForceDispatcher) Evaluate(ctx Context, includeForces, includeEnergy bool, groups int) (float64, error) {
	switch d.st {
	case unbound:
		return 0, ErrNotBound
	case destroyed:
		return 0, ErrDestroyed
	}
	if groups&(1<<d.force.ForceGroup) == 0 {
		return 0, nil
	}
	return d.kernel.Evaluate(ctx, includeForces, includeEnergy), nil
}

// ApplyUpdate re-validates the (possibly mutated) description against the
// current simulation state, pushes the new values into the kernel, and
// notifies the context that force-affecting state changed. The dispatcher
// stays bound whether or not the update succeeds; on failure the kernel
// keeps its previous parameters.
func (d *ForceDispatcher) ApplyUpdate(ctx Context) error {
	switch d.st {
	case unbound:
		return ErrNotBound
	case destroyed:
		return ErrDestroyed
	}
	if v := forcefield.Validate(d.force, ctx.NumParticles(), ctx.PeriodicBoxVectors()); v != nil {
		return v
	}
	if err := d.kernel.RefreshParameters(ctx, d.force); err != nil {
		return &BackendError{Kernel: CalcGayBerneForceKernel, Wrapped: err}
	}
	ctx.NotifyForceFieldChanged()
	return nil
}

// ListRequiredKernels names the kernels this force needs from a platform.
// Pure; callable in any state.
func (d *ForceDispatcher) ListRequiredKernels() []string {
	return []string{CalcGayBerneForceKernel}
}

// Destroy releases the kernel handle. Terminal: every later operation
// returns ErrDestroyed.
func (d *ForceDispatcher) Destroy() {
	d.kernel = nil
	d.st = destroyed
}
