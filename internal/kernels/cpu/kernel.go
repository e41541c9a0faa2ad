package cpu

import (
	"fmt"
	"math"
	"sync"

	"github.com/mfalk/ellipsim/internal/dispatch"
	"github.com/mfalk/ellipsim/internal/forcefield"
)

// fdStep is the central-difference displacement for force evaluation, in
// nm. Small against any physical length in the model, large against
// float64 noise at typical coordinate magnitudes.
const fdStep = 1e-6

// gayBerneKernel is the reference Gay-Berne implementation. Forces are
// obtained by central differences of the pair energy, which keeps them
// exactly consistent with the reported energy (including frame-particle
// contributions and the switching function) at the cost of speed.
type gayBerneKernel struct {
	workers int

	desc *forcefield.GayBerneForce
	box  [3]forcefield.Vec3

	// Topology-derived, built once at Initialize.
	pairOverride map[[2]int]pairParams
	excluded     map[[2]int]bool
}

func (k *gayBerneKernel) Initialize(ctx dispatch.Context, desc *forcefield.GayBerneForce) error {
	if desc.NumParticles() != ctx.NumParticles() {
		return fmt.Errorf("cpu: description has %d particles, context has %d", desc.NumParticles(), ctx.NumParticles())
	}
	k.desc = desc.Clone()
	k.pairOverride = make(map[[2]int]pairParams, len(desc.Exceptions))
	k.excluded = make(map[[2]int]bool)
	k.indexExceptions()
	return nil
}

// RefreshParameters replaces parameter values in place. The particle and
// exception counts fix the kernel's topology; changing either requires a
// new kernel, not a refresh.
func (k *gayBerneKernel) RefreshParameters(ctx dispatch.Context, desc *forcefield.GayBerneForce) error {
	if desc.NumParticles() != k.desc.NumParticles() {
		return fmt.Errorf("cpu: cannot change the number of particles in a refresh (%d -> %d)",
			k.desc.NumParticles(), desc.NumParticles())
	}
	if desc.NumExceptions() != k.desc.NumExceptions() {
		return fmt.Errorf("cpu: cannot change the number of exceptions in a refresh (%d -> %d)",
			k.desc.NumExceptions(), desc.NumExceptions())
	}
	copy(k.desc.Particles, desc.Particles)
	copy(k.desc.Exceptions, desc.Exceptions)
	k.desc.Method = desc.Method
	k.desc.CutoffDistance = desc.CutoffDistance
	k.desc.UseSwitchingFunction = desc.UseSwitchingFunction
	k.desc.SwitchingDistance = desc.SwitchingDistance
	k.indexExceptions()
	return nil
}

func (k *gayBerneKernel) indexExceptions() {
	for key := range k.pairOverride {
		delete(k.pairOverride, key)
	}
	for key := range k.excluded {
		delete(k.excluded, key)
	}
	for _, e := range k.desc.Exceptions {
		key := orderPair(e.Particle1, e.Particle2)
		if e.Epsilon == 0 {
			k.excluded[key] = true
			continue
		}
		k.pairOverride[key] = pairParams{sigma: e.Sigma, epsilon: e.Epsilon}
	}
}

func (k *gayBerneKernel) Evaluate(ctx dispatch.Context, includeForces, includeEnergy bool) float64 {
	k.box = ctx.PeriodicBoxVectors()
	positions := ctx.Positions()
	n := k.desc.NumParticles()

	workers := k.workers
	if workers < 1 {
		workers = 1
	}
	if n < 16 {
		workers = 1
	}

	type result struct {
		energy float64
		forces []forcefield.Vec3
	}
	results := make([]result, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			// Scratch copy: finite differences perturb entries.
			scratch := make([]forcefield.Vec3, n)
			copy(scratch, positions)
			var local []forcefield.Vec3
			if includeForces {
				local = make([]forcefield.Vec3, n)
			}
			energy := 0.0
			for i := worker; i < n; i += workers {
				for j := i + 1; j < n; j++ {
					key := orderPair(i, j)
					if k.excluded[key] {
						continue
					}
					pp, ok := k.pairOverride[key]
					if !ok {
						pi, pj := k.desc.Particles[i], k.desc.Particles[j]
						pp = pairParams{
							sigma:   0.5 * (pi.Sigma + pj.Sigma),
							epsilon: sqrtProduct(pi.Epsilon, pj.Epsilon),
						}
					}
					if pp.epsilon == 0 {
						continue
					}
					energy += k.pairEnergy(scratch, i, j, pp)
					if includeForces {
						k.accumulatePairForces(scratch, i, j, pp, local)
					}
				}
			}
			results[worker] = result{energy: energy, forces: local}
		}(w)
	}
	wg.Wait()

	total := 0.0
	forces := ctx.Forces()
	for _, res := range results {
		total += res.energy
		if includeForces {
			for i := range forces {
				forces[i] = forces[i].Add(res.forces[i])
			}
		}
	}
	if !includeEnergy {
		return 0
	}
	return total
}

// accumulatePairForces differentiates the pair energy with respect to
// every particle it depends on: the pair itself plus any frame particles.
func (k *gayBerneKernel) accumulatePairForces(scratch []forcefield.Vec3, i, j int, pp pairParams, out []forcefield.Vec3) {
	for _, idx := range k.dependents(i, j) {
		orig := scratch[idx]

		scratch[idx] = forcefield.Vec3{X: orig.X + fdStep, Y: orig.Y, Z: orig.Z}
		up := k.pairEnergy(scratch, i, j, pp)
		scratch[idx] = forcefield.Vec3{X: orig.X - fdStep, Y: orig.Y, Z: orig.Z}
		down := k.pairEnergy(scratch, i, j, pp)
		out[idx].X -= (up - down) / (2 * fdStep)

		scratch[idx] = forcefield.Vec3{X: orig.X, Y: orig.Y + fdStep, Z: orig.Z}
		up = k.pairEnergy(scratch, i, j, pp)
		scratch[idx] = forcefield.Vec3{X: orig.X, Y: orig.Y - fdStep, Z: orig.Z}
		down = k.pairEnergy(scratch, i, j, pp)
		out[idx].Y -= (up - down) / (2 * fdStep)

		scratch[idx] = forcefield.Vec3{X: orig.X, Y: orig.Y, Z: orig.Z + fdStep}
		up = k.pairEnergy(scratch, i, j, pp)
		scratch[idx] = forcefield.Vec3{X: orig.X, Y: orig.Y, Z: orig.Z - fdStep}
		down = k.pairEnergy(scratch, i, j, pp)
		out[idx].Z -= (up - down) / (2 * fdStep)

		scratch[idx] = orig
	}
}

// dependents lists the particles whose positions the (i,j) pair energy
// reads: i, j, and their frame particles, deduplicated.
func (k *gayBerneKernel) dependents(i, j int) []int {
	deps := make([]int, 0, 6)
	add := func(idx int) {
		if idx < 0 {
			return
		}
		for _, d := range deps {
			if d == idx {
				return
			}
		}
		deps = append(deps, idx)
	}
	add(i)
	add(j)
	add(k.desc.Particles[i].XParticle)
	add(k.desc.Particles[i].YParticle)
	add(k.desc.Particles[j].XParticle)
	add(k.desc.Particles[j].YParticle)
	return deps
}

// Berthelot combination for the default pair well depth.
func sqrtProduct(a, b float64) float64 {
	return math.Sqrt(a * b)
}

func orderPair(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
