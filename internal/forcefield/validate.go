package forcefield

import "fmt"

// ViolationKind identifies which invariant a description breaks.
type ViolationKind int

const (
	ParticleCountMismatch ViolationKind = iota
	InvalidSwitchingDistance
	InvalidFrameParticleIndex
	InvalidSigma
	InvalidEpsilon
	InvalidRadius
	InvalidScaleFactor
	InvalidExceptionParticleIndex
	DuplicateException
	CutoffExceedsHalfBoxLength
)

func (k ViolationKind) String() string {
	switch k {
	case ParticleCountMismatch:
		return "particle_count_mismatch"
	case InvalidSwitchingDistance:
		return "invalid_switching_distance"
	case InvalidFrameParticleIndex:
		return "invalid_frame_particle_index"
	case InvalidSigma:
		return "invalid_sigma"
	case InvalidEpsilon:
		return "invalid_epsilon"
	case InvalidRadius:
		return "invalid_radius"
	case InvalidScaleFactor:
		return "invalid_scale_factor"
	case InvalidExceptionParticleIndex:
		return "invalid_exception_particle_index"
	case DuplicateException:
		return "duplicate_exception"
	case CutoffExceedsHalfBoxLength:
		return "cutoff_exceeds_half_box_length"
	}
	return "unknown"
}

// Violation reports the first broken invariant found by Validate, with
// enough context to build a precise diagnostic without re-validating.
//
// Particle is the offending particle index; for exception violations
// Exception is the exception's ordinal and Particle the offending particle
// reference (or the pair's first particle). Exception is -1 for
// particle-context violations. Axis is "x" or "y" for frame-index
// violations and the offending component for radius/scale violations.
type Violation struct {
	Kind      ViolationKind
	Particle  int
	Exception int
	Other     int
	Axis      string
	Value     float64
}

func (v *Violation) Error() string {
	switch v.Kind {
	case ParticleCountMismatch:
		return fmt.Sprintf("gay-berne force must have exactly as many particles as the system it belongs to (force has %d, system has %d)",
			v.Particle, v.Other)
	case InvalidSwitchingDistance:
		return fmt.Sprintf("gay-berne switching distance must satisfy 0 <= r_switch < r_cutoff, got %g", v.Value)
	case InvalidFrameParticleIndex:
		return fmt.Sprintf("gay-berne: illegal particle index %d for the %sparticle of particle %d", v.Other, v.Axis, v.Particle)
	case InvalidSigma:
		if v.Exception >= 0 {
			return fmt.Sprintf("gay-berne: sigma for an exception cannot be negative (exception %d, sigma %g)", v.Exception, v.Value)
		}
		return fmt.Sprintf("gay-berne: sigma for a particle cannot be negative (particle %d, sigma %g)", v.Particle, v.Value)
	case InvalidEpsilon:
		if v.Exception >= 0 {
			return fmt.Sprintf("gay-berne: epsilon for an exception cannot be negative (exception %d, epsilon %g)", v.Exception, v.Value)
		}
		return fmt.Sprintf("gay-berne: epsilon for a particle cannot be negative (particle %d, epsilon %g)", v.Particle, v.Value)
	case InvalidRadius:
		return fmt.Sprintf("gay-berne: radii for a particle must be positive (particle %d, r%s = %g)", v.Particle, v.Axis, v.Value)
	case InvalidScaleFactor:
		return fmt.Sprintf("gay-berne: scale factors for a particle must be positive (particle %d, e%s = %g)", v.Particle, v.Axis, v.Value)
	case InvalidExceptionParticleIndex:
		return fmt.Sprintf("gay-berne: illegal particle index %d for exception %d", v.Particle, v.Exception)
	case DuplicateException:
		return fmt.Sprintf("gay-berne: multiple exceptions are specified for particles %d and %d", v.Particle, v.Other)
	case CutoffExceedsHalfBoxLength:
		return fmt.Sprintf("gay-berne: cutoff distance %g cannot be greater than half the periodic box size", v.Value)
	}
	return "gay-berne: invalid parameters"
}

// Validate checks the description against the enclosing system. It returns
// nil if every invariant holds, otherwise the first violation found under
// a fixed iteration order: particle count, switching distance, per-particle
// parameters in index order (x frame, y frame, sigma, epsilon, radii,
// scale factors), exceptions in declaration order (first index, second
// index, duplicate pair, sigma, epsilon), and finally the periodic cutoff
// against the box. Two validators given the same description always report
// the same violation.
//
// Validate is pure: it never mutates the description and is safe to call
// concurrently on descriptions that are not being mutated.
func Validate(f *GayBerneForce, numParticles int, box [3]Vec3) *Violation {
	if f.NumParticles() != numParticles {
		return &Violation{
			Kind:      ParticleCountMismatch,
			Particle:  f.NumParticles(),
			Exception: -1,
			Other:     numParticles,
		}
	}
	if f.UseSwitchingFunction {
		if f.SwitchingDistance < 0 || f.SwitchingDistance >= f.CutoffDistance {
			return &Violation{
				Kind:      InvalidSwitchingDistance,
				Particle:  -1,
				Exception: -1,
				Value:     f.SwitchingDistance,
			}
		}
	}
	for i, p := range f.Particles {
		if p.XParticle < -1 || p.XParticle >= numParticles {
			return &Violation{Kind: InvalidFrameParticleIndex, Particle: i, Exception: -1, Other: p.XParticle, Axis: "x"}
		}
		if p.YParticle < -1 || p.YParticle >= numParticles {
			return &Violation{Kind: InvalidFrameParticleIndex, Particle: i, Exception: -1, Other: p.YParticle, Axis: "y"}
		}
		if p.Sigma < 0 {
			return &Violation{Kind: InvalidSigma, Particle: i, Exception: -1, Value: p.Sigma}
		}
		if p.Epsilon < 0 {
			return &Violation{Kind: InvalidEpsilon, Particle: i, Exception: -1, Value: p.Epsilon}
		}
		if v := checkPositive(InvalidRadius, i, p.Radii); v != nil {
			return v
		}
		if v := checkPositive(InvalidScaleFactor, i, p.Scale); v != nil {
			return v
		}
	}
	seen := make(map[[2]int]bool, len(f.Exceptions))
	for i, e := range f.Exceptions {
		if e.Particle1 < 0 || e.Particle1 >= numParticles {
			return &Violation{Kind: InvalidExceptionParticleIndex, Particle: e.Particle1, Exception: i}
		}
		if e.Particle2 < 0 || e.Particle2 >= numParticles || e.Particle2 == e.Particle1 {
			return &Violation{Kind: InvalidExceptionParticleIndex, Particle: e.Particle2, Exception: i}
		}
		if seen[pairKey(e.Particle1, e.Particle2)] {
			return &Violation{Kind: DuplicateException, Particle: e.Particle1, Exception: i, Other: e.Particle2}
		}
		if e.Sigma < 0 {
			return &Violation{Kind: InvalidSigma, Particle: e.Particle1, Exception: i, Other: e.Particle2, Value: e.Sigma}
		}
		if e.Epsilon < 0 {
			return &Violation{Kind: InvalidEpsilon, Particle: e.Particle1, Exception: i, Other: e.Particle2, Value: e.Epsilon}
		}
		seen[pairKey(e.Particle1, e.Particle2)] = true
	}
	if f.Method == CutoffPeriodic {
		// Measured against each box vector's own principal component,
		// using the default box recorded at setup/update time.
		half := 0.5 * min3(box[0].X, box[1].Y, box[2].Z)
		if f.CutoffDistance > half {
			return &Violation{Kind: CutoffExceedsHalfBoxLength, Particle: -1, Exception: -1, Value: f.CutoffDistance}
		}
	}
	return nil
}

func checkPositive(kind ViolationKind, particle int, v Vec3) *Violation {
	for _, c := range []struct {
		axis  string
		value float64
	}{{"x", v.X}, {"y", v.Y}, {"z", v.Z}} {
		if c.value <= 0 {
			return &Violation{Kind: kind, Particle: particle, Exception: -1, Axis: c.axis, Value: c.value}
		}
	}
	return nil
}

// pairKey normalizes an unordered pair so (a,b) and (b,a) collide.
func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
