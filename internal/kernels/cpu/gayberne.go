package cpu

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mfalk/ellipsim/internal/forcefield"
)

// frameAxes builds the body-frame axes of particle i from its frame
// particles. With no x particle the frame is the lab frame (the particle
// is orientationally isotropic). With only an x particle, an arbitrary
// perpendicular completes the frame.
func frameAxes(pos []forcefield.Vec3, p forcefield.Particle, i int) (x, y, z forcefield.Vec3) {
	if p.XParticle < 0 {
		return forcefield.Vec3{X: 1}, forcefield.Vec3{Y: 1}, forcefield.Vec3{Z: 1}
	}
	x = pos[p.XParticle].Sub(pos[i]).Normalize()
	if p.YParticle >= 0 {
		raw := pos[p.YParticle].Sub(pos[i])
		y = raw.Sub(x.Scale(x.Dot(raw))).Normalize()
	}
	if y.Norm() == 0 {
		// Any direction perpendicular to x.
		ref := forcefield.Vec3{X: 1}
		if math.Abs(x.X) > 0.9 {
			ref = forcefield.Vec3{Y: 1}
		}
		y = x.Cross(ref).Normalize()
	}
	z = x.Cross(y)
	return x, y, z
}

// bodyMatrix returns Aᵀ·diag(d)·A where A has the body axes as rows.
func bodyMatrix(x, y, z forcefield.Vec3, d [3]float64) *mat.Dense {
	a := mat.NewDense(3, 3, []float64{
		x.X, x.Y, x.Z,
		y.X, y.Y, y.Z,
		z.X, z.Y, z.Z,
	})
	diag := mat.NewDiagDense(3, d[:])
	var tmp, out mat.Dense
	tmp.Mul(diag, a)
	out.Mul(a.T(), &tmp)
	return &out
}

// quadForm solves (m)·v = r and returns rᵀ·m⁻¹·r, or ok=false when m is
// singular (degenerate ellipsoid geometry).
func quadForm(m *mat.Dense, r forcefield.Vec3) (float64, bool) {
	rv := mat.NewVecDense(3, []float64{r.X, r.Y, r.Z})
	var v mat.VecDense
	if err := v.SolveVec(m, rv); err != nil {
		return 0, false
	}
	return mat.Dot(rv, &v), true
}

// anisotropy of a particle's shape, used in the orientation-dependent
// well depth.
func shapeStrength(radii forcefield.Vec3) float64 {
	return (radii.X*radii.Y + radii.Z*radii.Z) * math.Sqrt(radii.X*radii.Y)
}

type pairParams struct {
	sigma, epsilon float64
}

// pairEnergy evaluates the Gay-Berne interaction of particles i and j
// given the current positions. Orientation frames are rebuilt from the
// positions on every call so that numerical differentiation sees the
// full position dependence, frame particles included.
func (k *gayBerneKernel) pairEnergy(pos []forcefield.Vec3, i, j int, pp pairParams) float64 {
	dr := pos[j].Sub(pos[i])
	if k.desc.Method == forcefield.CutoffPeriodic {
		dr = minimumImage(dr, k.box)
	}
	r := dr.Norm()
	if k.desc.Method != forcefield.NoCutoff && r > k.desc.CutoffDistance {
		return 0
	}
	if r == 0 {
		return 0
	}

	pi, pj := k.desc.Particles[i], k.desc.Particles[j]
	xi, yi, zi := frameAxes(pos, pi, i)
	xj, yj, zj := frameAxes(pos, pj, j)

	gi := bodyMatrix(xi, yi, zi, [3]float64{pi.Radii.X * pi.Radii.X, pi.Radii.Y * pi.Radii.Y, pi.Radii.Z * pi.Radii.Z})
	gj := bodyMatrix(xj, yj, zj, [3]float64{pj.Radii.X * pj.Radii.X, pj.Radii.Y * pj.Radii.Y, pj.Radii.Z * pj.Radii.Z})
	bi := bodyMatrix(xi, yi, zi, [3]float64{pi.Scale.X, pi.Scale.Y, pi.Scale.Z})
	bj := bodyMatrix(xj, yj, zj, [3]float64{pj.Scale.X, pj.Scale.Y, pj.Scale.Z})

	var g12, b12 mat.Dense
	g12.Add(gi, gj)
	b12.Add(bi, bj)

	qg, ok := quadForm(&g12, dr)
	if !ok || qg <= 0 {
		return 0
	}
	qb, ok := quadForm(&b12, dr)
	if !ok || qb <= 0 {
		return 0
	}

	// Contact distance along the intermolecular axis:
	// sigma12 = (½ r̂ᵀ G₁₂⁻¹ r̂)^(−½). quadForm used dr, so divide by r².
	r2 := r * r
	sigma12 := 1 / math.Sqrt(0.5*qg/r2)

	chi12 := 2 * r2 / qb
	detG := mat.Det(&g12)
	eta12 := 0.0
	if detG > 0 {
		eta12 = math.Sqrt(2 * shapeStrength(pi.Radii) * shapeStrength(pj.Radii) / detG)
	}

	eps := pp.epsilon * eta12 * chi12
	h := r - sigma12
	denom := h + pp.sigma
	if denom <= 0 {
		// Hard overlap; clamp to a steep but finite wall.
		denom = 1e-6
	}
	rho := pp.sigma / denom
	rho2 := rho * rho
	rho6 := rho2 * rho2 * rho2
	u := 4 * eps * rho6 * (rho6 - 1)

	if k.desc.UseSwitchingFunction && k.desc.Method != forcefield.NoCutoff && r > k.desc.SwitchingDistance {
		t := (r - k.desc.SwitchingDistance) / (k.desc.CutoffDistance - k.desc.SwitchingDistance)
		u *= 1 + t*t*t*(-10+t*(15-t*6))
	}
	return u
}

// minimumImage wraps a displacement into the primary cell of a
// rectangular box described by its diagonal components.
func minimumImage(dr forcefield.Vec3, box [3]forcefield.Vec3) forcefield.Vec3 {
	dr.X -= box[0].X * math.Round(dr.X/box[0].X)
	dr.Y -= box[1].Y * math.Round(dr.Y/box[1].Y)
	dr.Z -= box[2].Z * math.Round(dr.Z/box[2].Z)
	return dr
}
