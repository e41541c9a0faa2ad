package forcefield

// NonbondedMethod selects how long-range pairwise interactions are
// truncated and periodized.
type NonbondedMethod int

const (
	NoCutoff NonbondedMethod = iota
	CutoffNonPeriodic
	CutoffPeriodic
)

func (m NonbondedMethod) String() string {
	switch m {
	case NoCutoff:
		return "no_cutoff"
	case CutoffNonPeriodic:
		return "cutoff_non_periodic"
	case CutoffPeriodic:
		return "cutoff_periodic"
	}
	return "unknown"
}

// Particle holds the per-particle Gay-Berne parameters. XParticle and
// YParticle are indices of the particles that define the local orientation
// frame; -1 means no frame particle on that axis.
type Particle struct {
	Sigma     float64
	Epsilon   float64
	XParticle int
	YParticle int
	Radii     Vec3 // ellipsoid semi-axes, all > 0
	Scale     Vec3 // anisotropy scale factors, all > 0
}

// Exception overrides the default combination rule for one unordered
// particle pair.
type Exception struct {
	Particle1 int
	Particle2 int
	Sigma     float64
	Epsilon   float64
}

// GayBerneForce is the declared force-field description. It is a plain
// value owned by the caller: mutating it between steps is allowed, and all
// checking is deferred to Validate so setters never reject anything.
type GayBerneForce struct {
	Method               NonbondedMethod
	CutoffDistance       float64
	UseSwitchingFunction bool
	SwitchingDistance    float64
	ForceGroup           int
	Particles            []Particle
	Exceptions           []Exception
}

func NewGayBerneForce() *GayBerneForce {
	return &GayBerneForce{
		Method:         NoCutoff,
		CutoffDistance: 1.0,
	}
}

// AddParticle appends a particle and returns its index.
func (f *GayBerneForce) AddParticle(sigma, epsilon float64, xparticle, yparticle int, radii, scale Vec3) int {
	f.Particles = append(f.Particles, Particle{
		Sigma:     sigma,
		Epsilon:   epsilon,
		XParticle: xparticle,
		YParticle: yparticle,
		Radii:     radii,
		Scale:     scale,
	})
	return len(f.Particles) - 1
}

// AddException appends a pairwise override and returns its index.
func (f *GayBerneForce) AddException(particle1, particle2 int, sigma, epsilon float64) int {
	f.Exceptions = append(f.Exceptions, Exception{
		Particle1: particle1,
		Particle2: particle2,
		Sigma:     sigma,
		Epsilon:   epsilon,
	})
	return len(f.Exceptions) - 1
}

func (f *GayBerneForce) NumParticles() int  { return len(f.Particles) }
func (f *GayBerneForce) NumExceptions() int { return len(f.Exceptions) }

// Clone returns a deep copy, so a backend can snapshot the description it
// was initialized with while the caller keeps mutating the original.
func (f *GayBerneForce) Clone() *GayBerneForce {
	c := *f
	c.Particles = make([]Particle, len(f.Particles))
	copy(c.Particles, f.Particles)
	c.Exceptions = make([]Exception, len(f.Exceptions))
	copy(c.Exceptions, f.Exceptions)
	return &c
}
