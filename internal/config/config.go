package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mfalk/ellipsim/internal/dispatch"
	"github.com/mfalk/ellipsim/internal/engine"
	"github.com/mfalk/ellipsim/internal/forcefield"
)

const (
	DefaultDt     = 0.001
	DefaultSteps  = 1000
	DefaultCutoff = 1.0
)

// Config is a whole system description: particles with their Gay-Berne
// parameters, pairwise exceptions, the truncation policy, and run
// settings.
type Config struct {
	Box        []float64         `yaml:"box"` // rectangular box edges, nm
	Particles  []ParticleConfig  `yaml:"particles"`
	Exceptions []ExceptionConfig `yaml:"exceptions"`
	Force      ForceConfig       `yaml:"forcefield"`
	Run        RunConfig         `yaml:"run"`
}

type ParticleConfig struct {
	Mass      float64   `yaml:"mass"`
	Position  []float64 `yaml:"position"`
	Velocity  []float64 `yaml:"velocity"`
	Sigma     float64   `yaml:"sigma"`
	Epsilon   float64   `yaml:"epsilon"`
	XParticle *int      `yaml:"x_particle"`
	YParticle *int      `yaml:"y_particle"`
	Radii     []float64 `yaml:"radii"`
	Scale     []float64 `yaml:"scale"`
}

type ExceptionConfig struct {
	Particle1 int     `yaml:"particle1"`
	Particle2 int     `yaml:"particle2"`
	Sigma     float64 `yaml:"sigma"`
	Epsilon   float64 `yaml:"epsilon"`
}

type ForceConfig struct {
	Method            string  `yaml:"method"`
	Cutoff            float64 `yaml:"cutoff"`
	UseSwitching      bool    `yaml:"use_switching"`
	SwitchingDistance float64 `yaml:"switching_distance"`
	ForceGroup        int     `yaml:"force_group"`
}

type RunConfig struct {
	Dt    float64 `yaml:"dt"`
	Steps int     `yaml:"steps"`
}

func DefaultConfig() *Config {
	return &Config{
		Box: []float64{4, 4, 4},
		Force: ForceConfig{
			Method: "no_cutoff",
			Cutoff: DefaultCutoff,
		},
		Run: RunConfig{
			Dt:    DefaultDt,
			Steps: DefaultSteps,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildForce translates the declarative force section into a description.
// Parameter values pass through untouched: checking happens in the
// validator at Setup, not here, so an invalid config yields the
// validator's precise diagnostic rather than a YAML-level one.
func (c *Config) BuildForce() (*forcefield.GayBerneForce, error) {
	f := forcefield.NewGayBerneForce()
	switch c.Force.Method {
	case "", "no_cutoff":
		f.Method = forcefield.NoCutoff
	case "cutoff_non_periodic":
		f.Method = forcefield.CutoffNonPeriodic
	case "cutoff_periodic":
		f.Method = forcefield.CutoffPeriodic
	default:
		return nil, fmt.Errorf("config: unknown nonbonded method %q", c.Force.Method)
	}
	f.CutoffDistance = c.Force.Cutoff
	f.UseSwitchingFunction = c.Force.UseSwitching
	f.SwitchingDistance = c.Force.SwitchingDistance
	f.ForceGroup = c.Force.ForceGroup

	for i, p := range c.Particles {
		radii, err := vec3(p.Radii, forcefield.Vec3{X: 0.15, Y: 0.15, Z: 0.15})
		if err != nil {
			return nil, fmt.Errorf("config: particle %d radii: %w", i, err)
		}
		scale, err := vec3(p.Scale, forcefield.Vec3{X: 1, Y: 1, Z: 1})
		if err != nil {
			return nil, fmt.Errorf("config: particle %d scale: %w", i, err)
		}
		f.AddParticle(p.Sigma, p.Epsilon, frameIndex(p.XParticle), frameIndex(p.YParticle), radii, scale)
	}
	for _, e := range c.Exceptions {
		f.AddException(e.Particle1, e.Particle2, e.Sigma, e.Epsilon)
	}
	return f, nil
}

// BuildContext assembles a ready-to-Setup simulation context.
func (c *Config) BuildContext(factory dispatch.KernelFactory) (*engine.Context, error) {
	ctx := engine.NewContext(factory)
	if len(c.Box) > 0 {
		box, err := vec3(c.Box, forcefield.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("config: box: %w", err)
		}
		ctx.SetPeriodicBoxVectors([3]forcefield.Vec3{
			{X: box.X}, {Y: box.Y}, {Z: box.Z},
		})
	}
	for i, p := range c.Particles {
		pos, err := vec3(p.Position, forcefield.Vec3{})
		if err != nil {
			return nil, fmt.Errorf("config: particle %d position: %w", i, err)
		}
		idx := ctx.AddParticle(p.Mass, pos)
		if len(p.Velocity) > 0 {
			vel, err := vec3(p.Velocity, forcefield.Vec3{})
			if err != nil {
				return nil, fmt.Errorf("config: particle %d velocity: %w", i, err)
			}
			ctx.SetVelocity(idx, vel)
		}
	}
	force, err := c.BuildForce()
	if err != nil {
		return nil, err
	}
	ctx.AddForce(force)
	return ctx, nil
}

// frameIndex maps an absent YAML field to "no frame particle".
func frameIndex(v *int) int {
	if v == nil {
		return -1
	}
	return *v
}

func vec3(v []float64, def forcefield.Vec3) (forcefield.Vec3, error) {
	if len(v) == 0 {
		return def, nil
	}
	if len(v) != 3 {
		return forcefield.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(v))
	}
	return forcefield.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}
