package forcefield

import (
	"strings"
	"testing"
)

func unitBox(edge float64) [3]Vec3 {
	return [3]Vec3{{X: edge}, {Y: edge}, {Z: edge}}
}

// validForce builds n spherical particles with legal parameters.
func validForce(n int) *GayBerneForce {
	f := NewGayBerneForce()
	for i := 0; i < n; i++ {
		f.AddParticle(0.3, 1.0, -1, -1,
			Vec3{X: 0.15, Y: 0.15, Z: 0.15},
			Vec3{X: 1, Y: 1, Z: 1})
	}
	return f
}

func TestValidateOK(t *testing.T) {
	f := validForce(4)
	f.AddException(0, 1, 0.25, 0.5)
	f.AddException(2, 3, 0, 0)
	if v := Validate(f, 4, unitBox(4)); v != nil {
		t.Fatalf("expected valid description, got %v", v)
	}
}

func TestValidateSingleViolations(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *GayBerneForce)
		n        int
		box      float64
		kind     ViolationKind
		particle int
	}{
		{
			name:   "particle count mismatch",
			mutate: func(f *GayBerneForce) {},
			n:      5,
			kind:   ParticleCountMismatch,
		},
		{
			name: "negative switching distance",
			mutate: func(f *GayBerneForce) {
				f.UseSwitchingFunction = true
				f.SwitchingDistance = -0.1
			},
			kind: InvalidSwitchingDistance,
		},
		{
			name: "switching distance at cutoff",
			mutate: func(f *GayBerneForce) {
				f.UseSwitchingFunction = true
				f.CutoffDistance = 1.0
				f.SwitchingDistance = 1.0
			},
			kind: InvalidSwitchingDistance,
		},
		{
			name:     "x frame index out of range",
			mutate:   func(f *GayBerneForce) { f.Particles[1].XParticle = 3 },
			kind:     InvalidFrameParticleIndex,
			particle: 1,
		},
		{
			name:     "y frame index below -1",
			mutate:   func(f *GayBerneForce) { f.Particles[0].YParticle = -2 },
			kind:     InvalidFrameParticleIndex,
			particle: 0,
		},
		{
			name:     "negative sigma",
			mutate:   func(f *GayBerneForce) { f.Particles[2].Sigma = -1 },
			kind:     InvalidSigma,
			particle: 2,
		},
		{
			name:     "negative epsilon",
			mutate:   func(f *GayBerneForce) { f.Particles[1].Epsilon = -0.5 },
			kind:     InvalidEpsilon,
			particle: 1,
		},
		{
			name:     "zero radius component",
			mutate:   func(f *GayBerneForce) { f.Particles[0].Radii.Y = 0 },
			kind:     InvalidRadius,
			particle: 0,
		},
		{
			name:     "negative scale component",
			mutate:   func(f *GayBerneForce) { f.Particles[2].Scale.Z = -1 },
			kind:     InvalidScaleFactor,
			particle: 2,
		},
		{
			name:   "exception index out of range",
			mutate: func(f *GayBerneForce) { f.AddException(0, 3, 0.3, 1.0) },
			kind:   InvalidExceptionParticleIndex,
		},
		{
			name:   "exception self pair",
			mutate: func(f *GayBerneForce) { f.AddException(1, 1, 0.3, 1.0) },
			kind:   InvalidExceptionParticleIndex,
		},
		{
			name: "exception negative sigma",
			mutate: func(f *GayBerneForce) {
				f.AddException(0, 1, -0.3, 1.0)
			},
			kind: InvalidSigma,
		},
		{
			name: "exception negative epsilon",
			mutate: func(f *GayBerneForce) {
				f.AddException(0, 1, 0.3, -1.0)
			},
			kind: InvalidEpsilon,
		},
		{
			name: "cutoff exceeds half box",
			mutate: func(f *GayBerneForce) {
				f.Method = CutoffPeriodic
				f.CutoffDistance = 1.5
			},
			box:  2,
			kind: CutoffExceedsHalfBoxLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForce(3)
			tt.mutate(f)
			n := 3
			if tt.n != 0 {
				n = tt.n
			}
			box := 10.0
			if tt.box != 0 {
				box = tt.box
			}
			v := Validate(f, n, unitBox(box))
			if v == nil {
				t.Fatal("expected a violation, got none")
			}
			if v.Kind != tt.kind {
				t.Fatalf("expected %v, got %v (%v)", tt.kind, v.Kind, v)
			}
			if tt.kind == InvalidSigma || tt.kind == InvalidEpsilon ||
				tt.kind == InvalidRadius || tt.kind == InvalidScaleFactor ||
				tt.kind == InvalidFrameParticleIndex {
				if v.Particle != tt.particle && v.Exception < 0 {
					t.Errorf("expected particle %d, got %d", tt.particle, v.Particle)
				}
			}
			if v.Error() == "" {
				t.Error("violation must render a message")
			}
		})
	}
}

func TestValidateFirstViolationOrder(t *testing.T) {
	// Both the switching rule and a particle sigma are broken; the
	// switching violation comes first in the fixed order.
	f := validForce(3)
	f.UseSwitchingFunction = true
	f.CutoffDistance = 1.0
	f.SwitchingDistance = 2.0
	f.Particles[0].Sigma = -1

	v := Validate(f, 3, unitBox(10))
	if v == nil || v.Kind != InvalidSwitchingDistance {
		t.Fatalf("expected InvalidSwitchingDistance first, got %v", v)
	}
}

func TestValidateDeterministic(t *testing.T) {
	f := validForce(3)
	f.Particles[1].Epsilon = -2
	a := Validate(f, 3, unitBox(10))
	b := Validate(f, 3, unitBox(10))
	if a == nil || b == nil {
		t.Fatal("expected violations")
	}
	if *a != *b {
		t.Fatalf("validation not deterministic: %+v vs %+v", a, b)
	}
}

func TestValidateDuplicateExceptionUnordered(t *testing.T) {
	f := validForce(3)
	f.AddException(0, 1, 0.3, 1.0)
	f.AddException(1, 0, 0.3, 1.0)

	v := Validate(f, 3, unitBox(10))
	if v == nil || v.Kind != DuplicateException {
		t.Fatalf("expected DuplicateException, got %v", v)
	}
	if v.Exception != 1 {
		t.Errorf("expected second exception flagged, got exception %d", v.Exception)
	}
}

func TestValidateExceptionOrderWithinEntry(t *testing.T) {
	// Within one exception, index bounds are checked before the
	// duplicate-pair check and before sigma/epsilon signs.
	f := validForce(3)
	f.AddException(0, 1, 0.3, 1.0)
	f.AddException(0, 5, -1, -1)
	v := Validate(f, 3, unitBox(10))
	if v == nil || v.Kind != InvalidExceptionParticleIndex {
		t.Fatalf("expected InvalidExceptionParticleIndex, got %v", v)
	}
}

func TestValidateNegativeSigmaScenario(t *testing.T) {
	// 3 particles, particle 2 has sigma = -1, everything else valid.
	f := validForce(3)
	f.Particles[2].Sigma = -1

	v := Validate(f, 3, unitBox(10))
	if v == nil {
		t.Fatal("expected a violation")
	}
	if v.Kind != InvalidSigma || v.Particle != 2 || v.Exception != -1 {
		t.Fatalf("expected InvalidSigma for particle 2, got %+v", v)
	}
	if !strings.Contains(v.Error(), "particle 2") {
		t.Errorf("message should name particle 2: %q", v.Error())
	}
}

func TestValidateCutoffHalfBoxScenario(t *testing.T) {
	// Box edges (2,2,2) with cutoff 1.5: 1.5 > 0.5*2.
	f := validForce(2)
	f.Method = CutoffPeriodic
	f.CutoffDistance = 1.5

	v := Validate(f, 2, unitBox(2))
	if v == nil || v.Kind != CutoffExceedsHalfBoxLength {
		t.Fatalf("expected CutoffExceedsHalfBoxLength, got %v", v)
	}

	// At exactly half the box the description is legal.
	f.CutoffDistance = 1.0
	if v := Validate(f, 2, unitBox(2)); v != nil {
		t.Fatalf("cutoff equal to half box should pass, got %v", v)
	}
}

func TestValidateBoxIgnoredWithoutPeriodicCutoff(t *testing.T) {
	f := validForce(2)
	f.Method = CutoffNonPeriodic
	f.CutoffDistance = 100
	if v := Validate(f, 2, unitBox(2)); v != nil {
		t.Fatalf("box must not constrain non-periodic cutoffs, got %v", v)
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	f := validForce(3)
	f.Particles[1].Sigma = -4
	before := f.Clone()
	Validate(f, 3, unitBox(10))
	if len(f.Particles) != len(before.Particles) || f.Particles[1] != before.Particles[1] {
		t.Fatal("validate mutated the description")
	}
}
