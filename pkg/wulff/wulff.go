// Package wulff builds the equilibrium shape of a metal nanoparticle in a gas
// mixture. The surface energy of each facet is corrected by the coverage of
// the adsorbed gases, the bulk is truncated by the planes of every facet
// (Wulff construction) and the atoms of the particle are classified.
package wulff

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/kpotier/nanowulff/pkg/coverage"
	"github.com/kpotier/nanowulff/pkg/lattice"
	"github.com/kpotier/nanowulff/pkg/symmetry"

	"github.com/pelletier/go-toml"
	"gonum.org/v1/gonum/floats"
)

// Type is name of the calculation.
var Type = "wulff"

// ErrNegativeSurfaceEnergy is returned when the surface energy of a facet,
// once corrected by the coverage, is not positive.
var ErrNegativeSurfaceEnergy = errors.New("nanoparticle broken: negative surface energy")

// ErrNoCoverage is returned by Build when gases are active and the coverages
// were not solved by GenCoverage.
var ErrNoCoverage = errors.New("coverage not solved")

// Wulff is a structure containing the parameters that can be parsed from a
// TOML configuration file (table `wulff`). This structure can be instanced
// through the New or the NewFromParams method. It also contains the gases
// and the facets derived from the parameters, and the planes once
// GenSurfaceEnergies has been called.
type Wulff struct {
	Params Params `toml:"wulff"`

	structure lattice.Structure
	c         float64
	gases     []coverage.Gas
	facets    []Facet

	planes   []symmetry.Miller
	facetOf  []int
	energies []float64
	covered  bool
}

// New returns an instance of the Wulff structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*Wulff, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var w Wulff
	dec := toml.NewDecoder(f)
	err = dec.Decode(&w)
	if err != nil {
		return nil, err
	}

	err = w.load()
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// NewFromParams returns an instance of the Wulff structure built from p.
func NewFromParams(p Params) (*Wulff, error) {
	w := Wulff{Params: p}
	err := w.load()
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Structure returns the crystal structure.
func (w *Wulff) Structure() lattice.Structure { return w.structure }

// Gases returns the active gases.
func (w *Wulff) Gases() []coverage.Gas { return w.gases }

// Facets returns the facets.
func (w *Wulff) Facets() []Facet { return w.facets }

// Start performs the calculation. It is a thread blocking method. This
// calculation only use one thread. The output files are only written if
// every step succeeded.
func (w *Wulff) Start(log *log.Logger) error {
	err := w.GenCoverage(log)
	if err != nil {
		return fmt.Errorf("GenCoverage: %w", err)
	}

	p, err := w.Geometry(log)
	if err != nil {
		return fmt.Errorf("Geometry: %w", err)
	}

	logger(log).Printf("wulff: %d atoms, %d edges, %d corners, %d subsurface",
		len(p.Pos), p.Summary.Edges, p.Summary.Corners, p.Summary.Subsurface)
	return nil
}

// GenCoverage solves the equilibrium coverage of every facet. It does nothing
// without active gas.
func (w *Wulff) GenCoverage(log *log.Logger) error {
	seed := w.Params.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	solver := coverage.Solver{
		T:           w.Params.Temperature,
		Gases:       w.gases,
		MaxAttempts: w.Params.MaxAttempts,
		Rand:        rand.New(rand.NewSource(seed)),
	}

	for m := range w.facets {
		f := &w.facets[m]
		theta, attempts, err := solver.Solve(f.Site)
		if err != nil {
			return fmt.Errorf("facet %s: %w", f.ID, err)
		}
		f.Coverage = theta

		if len(w.gases) > 0 {
			logger(log).Printf("wulff: facet %s: coverage %v (%d attempts)", f.ID, theta, attempts)
		}
	}

	w.covered = true
	return nil
}

// GenSurfaceEnergies corrects the surface energy of every facet:
//
//	gamma + sum_k theta_k (E_k - (W theta)_k) / A
//
// and expands every facet into its family of planes. It returns the planes
// and their surface energy; the facet each plane comes from is kept by w.
// Before GenCoverage, the coverages are zero and gamma is the clean surface
// energy.
func (w *Wulff) GenSurfaceEnergies() ([]symmetry.Miller, []float64) {
	if !w.covered {
		for m := range w.facets {
			w.facets[m].Coverage = make([]float64, len(w.gases))
		}
	}

	w.planes, w.facetOf, w.energies = nil, nil, nil
	for m := range w.facets {
		f := &w.facets[m]

		lat := f.Site.Lateral(f.Coverage)
		ads := make([]float64, len(f.Coverage))
		floats.SubTo(ads, f.Site.EAds, lat)
		floats.Scale(1/f.Area, ads)
		f.Gamma = f.Gamma0 + floats.Dot(f.Coverage, ads)

		planes := symmetry.Planes(f.Miller, w.structure)
		for range planes {
			w.facetOf = append(w.facetOf, m)
			w.energies = append(w.energies, f.Gamma)
		}
		w.planes = append(w.planes, planes...)
	}

	return w.planes, w.energies
}
