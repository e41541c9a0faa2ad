// Package dispatch is the glue between a declared force-field description
// and a backend compute kernel.
//
// The package defines the two collaborator contracts a compute platform
// must satisfy, [KernelFactory] and [KernelHandle], and the
// [ForceDispatcher] that owns exactly one kernel per simulation context:
//
//	disp := dispatch.NewForceDispatcher(force)
//	if err := disp.Setup(ctx); err != nil { ... }
//	energy, err := disp.Evaluate(ctx, true, true, groupMask)
//
// A dispatcher is not safe for concurrent use; the simulation serializes
// Setup, Evaluate and ApplyUpdate per step.
package dispatch
