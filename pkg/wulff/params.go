package wulff

import (
	"fmt"
	"math"

	"github.com/kpotier/nanowulff/pkg/coverage"
	"github.com/kpotier/nanowulff/pkg/lattice"
	"github.com/kpotier/nanowulff/pkg/phys"
	"github.com/kpotier/nanowulff/pkg/symmetry"
	"github.com/kpotier/nanowulff/pkg/util"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"
)

// MaxGases is the maximum number of gases in the mixture.
const MaxGases = 3

// GasParams is a gas of the mixture. PP is its partial pressure in percent of
// the total pressure; a gas with PP equal to zero is inactive. Entropy is the
// standard entropy in eV/K. An empty Type means Associative.
type GasParams struct {
	Name    string  `toml:"name" validate:"required"`
	PP      float64 `toml:"pp" validate:"gte=0,lte=100"`
	Entropy float64 `toml:"entropy"`
	Type    string  `toml:"type" validate:"omitempty,oneof=Associative Dissociative"`
}

// FacetParams is a facet of the particle. EAds and SAds have one entry per
// gas of Params.Gases (active or not), W is a symmetric matrix of the same
// size. ThetaML is the maximum coverage; zero means one monolayer.
type FacetParams struct {
	Index   string      `toml:"index" validate:"required"`
	Gamma   float64     `toml:"gamma"`
	EAds    []float64   `toml:"e_ads"`
	SAds    []float64   `toml:"s_ads"`
	W       [][]float64 `toml:"w"`
	ThetaML float64     `toml:"theta_ml" validate:"gte=0,lte=1"`
}

// Params contains every parameter of the calculation. Lengths are in Å,
// energies in eV, the pressure in Pa and the temperature in K.
type Params struct {
	Element     string  `toml:"element" validate:"required"`
	Structure   string  `toml:"structure" validate:"required,oneof=FCC BCC HCP"`
	LatticeA    float64 `toml:"lattice_a" validate:"gt=0"`
	LatticeC    float64 `toml:"lattice_c" validate:"gte=0"`
	Pressure    float64 `toml:"pressure" validate:"gt=0"`
	Temperature float64 `toml:"temperature" validate:"gt=0"`
	Radius      float64 `toml:"radius" validate:"gt=0"`

	MaxAttempts int   `toml:"max_attempts" validate:"gte=0"`
	Seed        int64 `toml:"seed"`

	FileXYZ     string `toml:"file_xyz"`
	FileKMC     string `toml:"file_kmc"`
	FileSummary string `toml:"file_summary"`

	Gases  []GasParams   `toml:"gas" validate:"max=3,dive"`
	Facets []FacetParams `toml:"facet" validate:"required,min=1,dive"`
}

// Default output files.
const (
	DefaultFileKMC     = "data/INPUT/ini.xyz"
	DefaultFileSummary = "data/OUTPUT/faceinfo.txt"
)

// Facet is a facet once the parameters are loaded. EAds, SAds and W only keep
// the active gases. Coverage and Gamma are filled by GenCoverage and
// GenSurfaceEnergies.
type Facet struct {
	ID      string
	Miller  symmetry.Miller
	Gamma0  float64
	Area    float64
	Spacing float64
	Site    coverage.Site

	Coverage []float64
	Gamma    float64
}

var validate = validator.New()

// load checks the parameters and fills the unexported fields of w.
func (w *Wulff) load() error {
	p := &w.Params
	err := validate.Struct(p)
	if err != nil {
		return util.ValidationError(err)
	}

	w.structure, _ = lattice.ParseStructure(p.Structure)
	w.c = p.LatticeC
	if w.structure == lattice.HCP && w.c == 0 {
		w.c = lattice.IdealC(p.LatticeA)
	}

	xyz, kmc, summary := w.Files()
	if xyz == kmc || xyz == summary || kmc == summary {
		return fmt.Errorf("output files must differ (xyz %q, kmc %q, summary %q)", xyz, kmc, summary)
	}

	// Gases
	active := make([]int, 0, len(p.Gases))
	w.gases = w.gases[:0]
	for i, g := range p.Gases {
		if g.PP == 0 {
			continue
		}

		typ := coverage.Associative
		if g.Type != "" {
			typ, err = coverage.ParseAdsorption(g.Type)
			if err != nil {
				return fmt.Errorf("gas %d (%s): %w", i+1, g.Name, err)
			}
		}

		rPP := g.PP * p.Pressure / 100
		w.gases = append(w.gases, coverage.Gas{
			Name: g.Name,
			P:    rPP,
			S:    g.Entropy - phys.KB*math.Log(rPP/phys.P0),
			Type: typ,
		})
		active = append(active, i)
	}

	// Facets
	w.facets = w.facets[:0]
	seen := make(map[string]int, len(p.Facets))
	for m, f := range p.Facets {
		facet, err := w.loadFacet(f, active)
		if err != nil {
			return fmt.Errorf("facet %d: %w", m+1, err)
		}

		if prev, ok := seen[facet.ID]; ok {
			return fmt.Errorf("facet %d: index %s already used by facet %d", m+1, facet.ID, prev+1)
		}
		seen[facet.ID] = m
		w.facets = append(w.facets, facet)
	}

	return nil
}

func (w *Wulff) loadFacet(f FacetParams, active []int) (Facet, error) {
	nCfg := len(w.Params.Gases)

	miller, err := symmetry.ParseMiller(f.Index)
	if err != nil {
		return Facet{}, err
	}
	if len(f.EAds) != nCfg || len(f.SAds) != nCfg {
		return Facet{}, fmt.Errorf("need %d values for e_ads and s_ads, got %d and %d",
			nCfg, len(f.EAds), len(f.SAds))
	}
	if len(f.W) != nCfg {
		return Facet{}, fmt.Errorf("w: need %d rows, got %d", nCfg, len(f.W))
	}
	for i, row := range f.W {
		if len(row) != nCfg {
			return Facet{}, fmt.Errorf("w: row %d: need %d columns, got %d", i+1, nCfg, len(row))
		}
	}
	for i := range f.W {
		for j := 0; j < i; j++ {
			if f.W[i][j] != f.W[j][i] {
				return Facet{}, fmt.Errorf("w: not symmetric (%d,%d)", i+1, j+1)
			}
		}
	}

	facet := Facet{
		ID:     miller.ID(),
		Miller: miller,
		Gamma0: f.Gamma,
		Site: coverage.Site{
			EAds:    make([]float64, len(active)),
			SAds:    make([]float64, len(active)),
			ThetaML: f.ThetaML,
		},
	}
	if facet.Site.ThetaML == 0 {
		facet.Site.ThetaML = 1
	}
	facet.Area, facet.Spacing = lattice.FacetGeometry(w.structure,
		miller[0], miller[1], miller[2], w.Params.LatticeA, w.c)

	if len(active) > 0 {
		facet.Site.W = mat.NewDense(len(active), len(active), nil)
	}
	for x, i := range active {
		facet.Site.EAds[x] = f.EAds[i]
		facet.Site.SAds[x] = f.SAds[i]
		for y, j := range active {
			facet.Site.W.Set(x, y, f.W[i][j])
		}
	}

	return facet, nil
}
