package wulff

import (
	"bufio"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kpotier/nanowulff/pkg/coverage"
	"github.com/kpotier/nanowulff/pkg/phys"
	"github.com/kpotier/nanowulff/pkg/site"
	"github.com/kpotier/nanowulff/pkg/util"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// gold returns the parameters of a gold particle of 15 Å without gas.
func gold(t *testing.T, facets ...FacetParams) Params {
	dir := t.TempDir()
	return Params{
		Element:     "Au",
		Structure:   "FCC",
		LatticeA:    4.08,
		Pressure:    101325,
		Temperature: 300,
		Radius:      15,
		Seed:        1,
		FileXYZ:     filepath.Join(dir, "OUTPUT", "cluster.xyz"),
		FileKMC:     filepath.Join(dir, "INPUT", "ini.xyz"),
		FileSummary: filepath.Join(dir, "OUTPUT", "faceinfo.txt"),
		Facets:      facets,
	}
}

func TestBuildOctahedron(t *testing.T) {
	w, err := NewFromParams(gold(t, FacetParams{Index: "111", Gamma: 0.1}))
	require.NoError(t, err)

	p, err := w.Build()
	require.NoError(t, err)
	assert.Len(t, p.Pos, 1444)
	assert.Equal(t, "Au", p.Element)

	s := p.Summary
	assert.Equal(t, []string{"111"}, s.Facets)
	assert.Equal(t, []int{444}, s.Pure)
	assert.Equal(t, 120, s.Edges)
	assert.Zero(t, s.Corners)
	assert.Equal(t, 564, s.NSurf)
	assert.Zero(t, s.Subsurface)
	assert.InDelta(t, 0.1, s.Gamma[0], 1e-12)
	assert.Greater(t, s.Radius, 5.)
	assert.Less(t, s.Radius, 15.)
}

func TestBuildTruncatedOctahedron(t *testing.T) {
	w, err := NewFromParams(gold(t,
		FacetParams{Index: "111", Gamma: 0.1},
		FacetParams{Index: "100", Gamma: 0.12},
	))
	require.NoError(t, err)

	p, err := w.Build()
	require.NoError(t, err)
	assert.Len(t, p.Pos, 1336)

	counts := make(map[string]int)
	for _, l := range p.Labels {
		counts[l]++
	}
	assert.Equal(t, map[string]int{
		site.Bulk: 832, "111": 336, "100": 36, site.Edge: 108, site.Corner: 24,
	}, counts)

	s := p.Summary
	assert.Equal(t, []int{336, 36}, s.Pure)
	assert.InDeltaSlice(t, []float64{78, 30}, s.EdgeShare, 1e-9)
	assert.InDeltaSlice(t, []float64{16, 8}, s.CornerShare, 1e-9)
	assert.Equal(t, 504, s.NSurf)
	assert.Zero(t, s.Subsurface)

	// 6 {100} and 8 {111} planes.
	planes, energies := w.GenSurfaceEnergies()
	assert.Len(t, planes, 14)
	assert.Len(t, energies, 14)
}

func TestTruncateMonotonic(t *testing.T) {
	w, err := NewFromParams(gold(t, FacetParams{Index: "111", Gamma: 0.1}))
	require.NoError(t, err)
	planes, _ := w.GenSurfaceEnergies()

	normals := make([]r3.Vec, len(planes))
	for k, pl := range planes {
		normals[k] = r3.Unit(pl.Vec())
	}
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	pts := make([]r3.Vec, 0, 4000)
	for x := -10; x <= 10; x++ {
		for y := -10; y <= 10; y++ {
			for z := -10; z <= 10; z += 2 {
				pts = append(pts, r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)})
			}
		}
	}

	properties.Property("a larger distance never removes an atom", prop.ForAll(
		func(d, extra float64) bool {
			small := make([]float64, len(normals))
			large := make([]float64, len(normals))
			for k := range small {
				small[k] = d
				large[k] = d + extra
			}

			in := Truncate(pts, normals, small)
			out := Truncate(pts, normals, large)
			if len(out) < len(in) {
				return false
			}

			set := make(map[r3.Vec]bool, len(out))
			for _, p := range out {
				set[p] = true
			}
			for _, p := range in {
				if !set[p] {
					return false
				}
			}
			return true
		},
		gen.Float64Range(1, 10),
		gen.Float64Range(0, 5),
	))

	properties.TestingRun(t)
}

func TestBuildRadius(t *testing.T) {
	var prev int
	for _, r := range []float64{6, 9, 12, 15} {
		params := gold(t, FacetParams{Index: "111", Gamma: 0.1}, FacetParams{Index: "100", Gamma: 0.12})
		params.Radius = r

		w, err := NewFromParams(params)
		require.NoError(t, err)
		p, err := w.Build()
		require.NoError(t, err)

		assert.Greater(t, len(p.Pos), prev, "radius %g", r)
		prev = len(p.Pos)
	}
}

func withGas(t *testing.T, eAds float64) Params {
	params := gold(t, FacetParams{
		Index: "111",
		Gamma: 0.1,
		EAds:  []float64{eAds},
		SAds:  []float64{0},
		W:     [][]float64{{0}},
	})
	params.Gases = []GasParams{{Name: "CO", PP: 100, Entropy: 0.002, Type: "Associative"}}
	return params
}

func TestGenSurfaceEnergies(t *testing.T) {
	w, err := NewFromParams(withGas(t, -0.3))
	require.NoError(t, err)
	require.NoError(t, w.GenCoverage(nil))

	f := w.Facets()[0]
	require.Len(t, f.Coverage, 1)
	assert.InDelta(t, 1, f.Coverage[0], 1e-9)

	area := 4.08 * 4.08 * math.Sqrt(3) / 4
	assert.InDelta(t, area, f.Area, 1e-12)

	planes, energies := w.GenSurfaceEnergies()
	assert.Len(t, planes, 8)
	for _, e := range energies {
		assert.InDelta(t, 0.1-0.3/area, e, 1e-9)
	}
}

func TestNegativeSurfaceEnergy(t *testing.T) {
	params := withGas(t, -1)
	w, err := NewFromParams(params)
	require.NoError(t, err)

	err = w.Start(nil)
	assert.ErrorIs(t, err, ErrNegativeSurfaceEnergy)

	for _, path := range []string{params.FileXYZ, params.FileKMC, params.FileSummary} {
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "%s written", path)
	}
}

func TestBuildNeedsCoverage(t *testing.T) {
	w, err := NewFromParams(withGas(t, -0.3))
	require.NoError(t, err)

	_, err = w.Build()
	assert.ErrorIs(t, err, ErrNoCoverage)

	require.NoError(t, w.GenCoverage(nil))
	_, err = w.Build()
	assert.NoError(t, err)
}

func TestStart(t *testing.T) {
	params := withGas(t, -0.3)
	w, err := NewFromParams(params)
	require.NoError(t, err)
	require.NoError(t, w.Start(nil))

	f, err := os.Open(params.FileXYZ)
	require.NoError(t, err)
	defer f.Close()
	xyz, err := util.ReadXYZ(f)
	require.NoError(t, err)
	assert.Len(t, xyz.Pos, 1444)
	assert.Equal(t, "cluster_300_101325.xyz", xyz.Comment)
	require.Len(t, xyz.Labels, 1444)
	for i, l := range xyz.Labels {
		assert.Equal(t, site.Color(l), xyz.Elements[i])
	}

	k, err := os.Open(params.FileKMC)
	require.NoError(t, err)
	defer k.Close()
	kmc, err := util.ReadXYZ(k)
	require.NoError(t, err)
	assert.Len(t, kmc.Pos, 1444)
	assert.Nil(t, kmc.Labels)
	for _, el := range kmc.Elements {
		assert.Equal(t, "Au", el)
	}

	b, err := os.ReadFile(params.FileSummary)
	require.NoError(t, err)
	summary := string(b)
	assert.True(t, strings.HasPrefix(summary, "Date: "))
	assert.Contains(t, summary, `element = "Au"`)
	assert.Contains(t, summary, "subsurface")
	assert.Contains(t, summary, "coverage CO")
}

func TestFiles(t *testing.T) {
	w, err := NewFromParams(Params{
		Element: "Pt", Structure: "FCC", LatticeA: 3.92,
		Pressure: 100000, Temperature: 500, Radius: 10,
		Facets: []FacetParams{{Index: "111", Gamma: 0.1}},
	})
	require.NoError(t, err)

	xyz, kmc, summary := w.Files()
	assert.Equal(t, "data/OUTPUT/Pt_FCC_T_500_P_100000_cluster.xyz", xyz)
	assert.Equal(t, DefaultFileKMC, kmc)
	assert.Equal(t, DefaultFileSummary, summary)
}

func TestLoad(t *testing.T) {
	params := gold(t, FacetParams{
		Index:   "1-10",
		Gamma:   0.12,
		EAds:    []float64{-1.2, -0.5},
		SAds:    []float64{0.001, 0},
		W:       [][]float64{{0.1, 0.2}, {0.2, 0.3}},
		ThetaML: 0.5,
	})
	params.Gases = []GasParams{
		{Name: "CO", PP: 40, Entropy: 0.002, Type: "Associative"},
		{Name: "O2", PP: 0, Entropy: 0.0021, Type: "Dissociative"},
	}

	w, err := NewFromParams(params)
	require.NoError(t, err)

	gases := w.Gases()
	require.Len(t, gases, 1)
	rPP := 0.4 * 101325.
	assert.Equal(t, "CO", gases[0].Name)
	assert.InDelta(t, rPP, gases[0].P, 1e-9)
	assert.InDelta(t, 0.002-phys.KB*math.Log(rPP/phys.P0), gases[0].S, 1e-15)

	f := w.Facets()[0]
	assert.Equal(t, "1-10", f.ID)
	assert.Equal(t, []float64{-1.2}, f.Site.EAds)
	assert.Equal(t, []float64{0.001}, f.Site.SAds)
	assert.Equal(t, 0.1, f.Site.W.At(0, 0))
	assert.Equal(t, 0.5, f.Site.ThetaML)
}

func TestLoadDefaultAdsorption(t *testing.T) {
	params := withGas(t, -0.3)
	params.Gases[0].Type = ""

	w, err := NewFromParams(params)
	require.NoError(t, err)
	require.Len(t, w.Gases(), 1)
	assert.Equal(t, coverage.Associative, w.Gases()[0].Type)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		msg    string
	}{
		{"no element", func(p *Params) { p.Element = "" }, "Element"},
		{"structure", func(p *Params) { p.Structure = "SC" }, "Structure"},
		{"radius", func(p *Params) { p.Radius = 0 }, "Radius"},
		{"no facet", func(p *Params) { p.Facets = nil }, "Facets"},
		{"index", func(p *Params) { p.Facets[0].Index = "11" }, "need three digits"},
		{"duplicate", func(p *Params) { p.Facets = append(p.Facets, p.Facets[0]) }, "already used"},
		{"too many gases", func(p *Params) {
			p.Gases = make([]GasParams, 4)
			for i := range p.Gases {
				p.Gases[i] = GasParams{Name: "X", PP: 25}
			}
		}, "Gases"},
		{"e_ads", func(p *Params) {
			p.Gases = []GasParams{{Name: "CO", PP: 100}}
		}, "e_ads"},
		{"symmetric", func(p *Params) {
			p.Gases = []GasParams{{Name: "CO", PP: 50}, {Name: "NO", PP: 50}}
			p.Facets[0].EAds = []float64{-1, -1}
			p.Facets[0].SAds = []float64{0, 0}
			p.Facets[0].W = [][]float64{{0, 0.1}, {0.2, 0}}
		}, "not symmetric"},
		{"same files", func(p *Params) { p.FileSummary = p.FileXYZ }, "output files must differ"},
		{"default file", func(p *Params) { p.FileKMC = DefaultFileSummary; p.FileSummary = "" }, "output files must differ"},
		{"adsorption", func(p *Params) {
			p.Gases = []GasParams{{Name: "CO", PP: 100, Type: "Physisorption"}}
		}, "Type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := gold(t, FacetParams{Index: "111", Gamma: 0.1})
			tt.modify(&p)
			_, err := NewFromParams(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wulff.toml")
	content := `[wulff]
element = "Au"
structure = "FCC"
lattice_a = 4.08
pressure = 101325.0
temperature = 300.0
radius = 15.0
seed = 3
file_xyz = "` + filepath.ToSlash(filepath.Join(dir, "cluster.xyz")) + `"

[[wulff.gas]]
name = "CO"
pp = 100.0
entropy = 0.002
type = "Associative"

[[wulff.facet]]
index = "111"
gamma = 0.1
e_ads = [-0.3]
s_ads = [0.0]
w = [[0.0]]

[[wulff.facet]]
index = "100"
gamma = 0.12
e_ads = [-0.4]
s_ads = [0.0]
w = [[0.0]]
theta_ml = 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	w, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), w.Params.Seed)
	assert.Len(t, w.Gases(), 1)
	require.Len(t, w.Facets(), 2)
	assert.Equal(t, "100", w.Facets()[1].ID)
	assert.Equal(t, 0.5, w.Facets()[1].Site.ThetaML)
	assert.Equal(t, 1., w.Facets()[0].Site.ThetaML)

	_, err = New(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestSummaryTable(t *testing.T) {
	s := Summary{
		Facets:      []string{"111", "100"},
		Gases:       []string{"CO"},
		Pure:        []int{336, 36},
		EdgeShare:   []float64{78, 30},
		CornerShare: []float64{16, 8},
		Coverage:    [][]float64{{0.25}, {0.5}},
		Gamma:       []float64{0.1, 0.12},
		Edges:       108,
		Corners:     24,
		NSurf:       504,
		SurfCN:      8.36,
		Radius:      10.5,
	}

	table := s.Table()
	for _, want := range []string{"111", "100", "edges", "corners", "subsurface", "336", "78.00", "coverage CO", "0.50", "8.36", "10.50"} {
		assert.Contains(t, table, want)
	}

	sc := bufio.NewScanner(strings.NewReader(table))
	var lines int
	for sc.Scan() {
		lines++
	}
	assert.Greater(t, lines, 5)
}
