// Package coverage solves the equilibrium coverage of the adsorbed gases on
// one facet. The coverages are the roots of a nonlinear system coupling the
// adsorption isotherms of every gas through the lateral interactions.
package coverage

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/kpotier/nanowulff/pkg/phys"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Adsorption is the kinetics class of a gas.
type Adsorption int

// Adsorption kinetics classes.
const (
	Associative Adsorption = iota
	Dissociative
)

// ParseAdsorption returns the adsorption type named s.
func ParseAdsorption(s string) (Adsorption, error) {
	switch s {
	case "Associative":
		return Associative, nil
	case "Dissociative":
		return Dissociative, nil
	}
	return 0, fmt.Errorf("adsorption type `%s` doesn't exist", s)
}

func (a Adsorption) String() string {
	if a == Dissociative {
		return "Dissociative"
	}
	return "Associative"
}

// Gas is an active gas. P is its partial pressure (Pa) and S its entropy in
// the gas phase at that pressure (eV/K).
type Gas struct {
	Name string
	P    float64
	S    float64
	Type Adsorption
}

// Site holds the parameters of one facet. EAds (eV) and SAds (eV/K) have one
// entry per gas. W is the symmetric matrix of lateral interactions (eV); it
// may be nil when there is no gas.
type Site struct {
	EAds    []float64
	SAds    []float64
	W       *mat.Dense
	ThetaML float64
}

// Lateral returns W·theta, the interaction energy felt by each gas.
func (s Site) Lateral(theta []float64) []float64 {
	out := make([]float64, len(theta))
	if s.W == nil || len(theta) == 0 {
		return out
	}

	var v mat.VecDense
	v.MulVec(s.W, mat.NewVecDense(len(theta), theta))
	for k := range out {
		out[k] = v.AtVec(k)
	}
	return out
}

// DefaultMaxAttempts is used when Solver.MaxAttempts is zero.
const DefaultMaxAttempts = 1000

// Tolerance is the largest accepted absolute sum of the residuals.
const Tolerance = 1e-6

// ErrNoConvergence is returned when no acceptable root is found within the
// allowed number of attempts.
var ErrNoConvergence = errors.New("coverage: no convergence")

// Solver solves the equilibrium coverages at temperature T. Each attempt
// starts from a random guess drawn from Rand and runs a damped Newton
// method. An attempt is accepted if every unknown is strictly positive and
// the sum of the residuals is lower than Tolerance.
type Solver struct {
	T           float64
	Gases       []Gas
	MaxAttempts int
	Rand        *rand.Rand
}

// Solve returns the coverage of every gas on the site, after the monolayer
// cap is applied, and the number of attempts. Without gas, it returns an
// empty slice.
func (s *Solver) Solve(site Site) (theta []float64, attempts int, err error) {
	n := len(s.Gases)
	if n == 0 {
		return []float64{}, 0, nil
	}
	if len(site.EAds) != n || len(site.SAds) != n {
		return nil, 0, fmt.Errorf("need %d adsorption energies and entropies, got %d and %d",
			n, len(site.EAds), len(site.SAds))
	}

	limit := s.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}
	rnd := s.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}

	x := make([]float64, n+1)
	f := make([]float64, n+1)
	for attempts = 1; attempts <= limit; attempts++ {
		for k := range x {
			x[k] = rnd.Float64()
		}

		if !s.newton(site, x) {
			continue
		}

		s.Residual(site, x, f)
		if positive(x) && math.Abs(floats.Sum(f)) < Tolerance {
			return Clamp(x[:n], site.ThetaML), attempts, nil
		}
	}

	return nil, limit, fmt.Errorf("%w after %d attempts", ErrNoConvergence, limit)
}

// Residual evaluates the system at x = [theta_1 .. theta_n, s], where s is the
// normalization unknown. For an associative gas:
//
//	theta_k exp((E_k - (W theta)_k - T(Sads_k - Sgas_k)) / kT) / P_k - s
//
// for a dissociative gas the energy terms are doubled and the square root of
// the isotherm is taken. The last equation is sum(theta) - 1.
func (s *Solver) Residual(site Site, x, f []float64) {
	n := len(s.Gases)
	iso := s.isotherms(site, x[:n])
	for k := 0; k < n; k++ {
		f[k] = x[k]*iso[k] - x[n]
	}
	f[n] = floats.Sum(x[:n]) - 1
}

// isotherms returns, for each gas, the factor multiplying theta_k.
func (s *Solver) isotherms(site Site, theta []float64) []float64 {
	kT := phys.KB * s.T
	lat := site.Lateral(theta)

	iso := make([]float64, len(theta))
	for k, g := range s.Gases {
		dS := s.T * (site.SAds[k] - g.S)
		switch g.Type {
		case Associative:
			iso[k] = math.Exp((site.EAds[k]-lat[k]-dS)/kT) / g.P
		case Dissociative:
			iso[k] = math.Sqrt(math.Exp((2*site.EAds[k]-2*lat[k]-dS)/kT) / g.P)
		}
	}
	return iso
}

// jacobian fills j with the derivatives of the residuals at x.
func (s *Solver) jacobian(site Site, x []float64, j *mat.Dense) {
	n := len(s.Gases)
	kT := phys.KB * s.T
	iso := s.isotherms(site, x[:n])

	j.Zero()
	for k := 0; k < n; k++ {
		for l := 0; l < n; l++ {
			var w float64
			if site.W != nil {
				w = site.W.At(k, l)
			}
			d := -x[k] * iso[k] * w / kT
			if k == l {
				d += iso[k]
			}
			j.Set(k, l, d)
		}
		j.Set(k, n, -1)
		j.Set(n, k, 1)
	}
}

const (
	newtonIter = 100
	newtonTol  = 1e-10
)

// merit is the norm of the residuals, each isotherm residual being divided by
// the magnitude of its two terms. The raw residuals of the isotherms are many
// orders of magnitude below the closure.
func (s *Solver) merit(site Site, x, f []float64) float64 {
	n := len(s.Gases)
	iso := s.isotherms(site, x[:n])

	g := make([]float64, n+1)
	for k := 0; k < n; k++ {
		g[k] = f[k]
		if d := math.Abs(x[k]*iso[k]) + math.Abs(x[n]); d > 0 {
			g[k] /= d
		}
	}
	g[n] = f[n]
	return floats.Norm(g, 2)
}

// newton refines x in place with a damped Newton method. It returns false if
// the iterations diverged or stalled before reaching newtonTol.
func (s *Solver) newton(site Site, x []float64) bool {
	n := len(x)
	f := make([]float64, n)
	trial := make([]float64, n)
	ft := make([]float64, n)
	j := mat.NewDense(n, n, nil)
	var dx mat.VecDense

	s.Residual(site, x, f)
	if !finite(f) {
		return false
	}
	norm := s.merit(site, x, f)

	for it := 0; it < newtonIter; it++ {
		if norm < newtonTol {
			return true
		}

		s.jacobian(site, x, j)
		floats.Scale(-1, f)
		err := dx.SolveVec(j, mat.NewVecDense(n, f))
		if err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) {
				return false
			}
		}

		step := dx.RawVector().Data
		if !finite(step) {
			return false
		}

		// Backtracking.
		lambda := 1.
		for {
			floats.AddScaledTo(trial, x, lambda, step)
			s.Residual(site, trial, ft)
			if finite(ft) {
				if nt := s.merit(site, trial, ft); nt < norm {
					copy(x, trial)
					copy(f, ft)
					norm = nt
					break
				}
			}

			lambda /= 2
			if lambda < 1e-10 {
				return false
			}
		}
	}
	return norm < newtonTol
}

// Clamp caps the coverage at thetaML: if a gas reaches the cap, the coverage
// becomes thetaML for this gas and zero for the others. The first gas
// reaching the cap is kept.
func Clamp(theta []float64, thetaML float64) []float64 {
	out := make([]float64, len(theta))
	copy(out, theta)
	for k := range out {
		if out[k] >= thetaML {
			for l := range out {
				out[l] = 0
			}
			out[k] = thetaML
			return out
		}
	}
	return out
}

func positive(x []float64) bool {
	for _, v := range x {
		if !(v > 0) {
			return false
		}
	}
	return true
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
