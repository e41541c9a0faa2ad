// Package engine provides the simulation shell around the force layer: a
// concrete [Context] holding particles, box and the shared force buffer,
// and an [Engine] stepping it with velocity-Verlet integration.
//
//	ctx := engine.NewContext(kernels.AutoSelect())
//	ctx.AddParticle(1.0, forcefield.Vec3{})
//	ctx.AddForce(force)
//	if err := ctx.Setup(); err != nil { ... }
//	result, err := engine.New(ctx).Run(signalCtx, engine.DefaultConfig())
//
// Engine instances are not safe for concurrent use.
package engine
