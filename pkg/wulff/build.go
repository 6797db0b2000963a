package wulff

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/kpotier/nanowulff/pkg/lattice"
	"github.com/kpotier/nanowulff/pkg/site"
	"github.com/kpotier/nanowulff/pkg/util"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is the truncated nanoparticle with the classification of its
// atoms.
type Particle struct {
	Element string
	Pos     []r3.Vec
	CN      []int
	GCN     []float64
	Labels  []string
	Colors  []string
	Summary Summary
}

// Truncate returns the atoms of bulk that are below every plane: the
// projection of the atom on the unit normal of the plane must not exceed the
// distance of the plane.
func Truncate(bulk []r3.Vec, normals []r3.Vec, dist []float64) []r3.Vec {
	var in []r3.Vec
	for _, p := range bulk {
		below := true
		for k, n := range normals {
			if r3.Dot(p, n) > dist[k] {
				below = false
				break
			}
		}
		if below {
			in = append(in, p)
		}
	}
	return in
}

// Build builds the particle without writing any file. The distance of each
// plane to the center is proportional to its surface energy; the plane with
// the lowest energy is at Params.Radius. It fails with
// ErrNegativeSurfaceEnergy if a facet has a surface energy lower or equal
// to zero, and with ErrNoCoverage if GenCoverage was not called while gases
// are active.
func (w *Wulff) Build() (*Particle, error) {
	if len(w.gases) > 0 && !w.covered {
		return nil, ErrNoCoverage
	}

	planes, energies := w.GenSurfaceEnergies()
	for _, f := range w.facets {
		if !(f.Gamma > 0) {
			return nil, fmt.Errorf("%w (facet %s: %g eV/Å²)", ErrNegativeSurfaceEnergy, f.ID, f.Gamma)
		}
	}

	lowest := floats.Min(energies)
	dist := make([]float64, len(energies))
	floats.ScaleTo(dist, w.Params.Radius/lowest, energies)

	bulk, err := lattice.Gen(w.structure, 3*floats.Max(dist), w.Params.LatticeA, w.c)
	if err != nil {
		return nil, err
	}

	normals := make([]r3.Vec, len(planes))
	sitePlanes := make([]site.Plane, len(planes))
	for k, pl := range planes {
		normals[k] = r3.Unit(pl.Vec())
		sitePlanes[k] = site.Plane{Normal: normals[k], Facet: w.facetOf[k]}
	}

	pos := Truncate(bulk, normals, dist)

	an := site.Count(pos, lattice.Cutoff(w.structure, w.Params.LatticeA), w.structure)

	facets := make([]site.Facet, len(w.facets))
	for m, f := range w.facets {
		facets[m] = site.Facet{ID: f.ID, Spacing: f.Spacing}
	}
	marks := site.Mark(pos, an.CN, w.structure, facets, sitePlanes)

	return &Particle{
		Element: w.Params.Element,
		Pos:     pos,
		CN:      an.CN,
		GCN:     an.GCN,
		Labels:  marks.Labels,
		Colors:  marks.Colors,
		Summary: w.summary(pos, an, marks),
	}, nil
}

// Geometry builds the particle and writes the labelled structure, the
// structure read by the KMC engine and the summary table.
func (w *Wulff) Geometry(log *log.Logger) (*Particle, error) {
	p, err := w.Build()
	if err != nil {
		return nil, err
	}

	files, order, err := w.render(p)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	err = util.WriteFiles(files, order)
	if err != nil {
		return nil, fmt.Errorf("WriteFiles: %w", err)
	}

	for _, path := range order {
		logger(log).Printf("wulff: %s written", path)
	}
	return p, nil
}

// Files returns the paths of the labelled structure, the KMC structure and
// the summary.
func (w *Wulff) Files() (xyz, kmc, summary string) {
	xyz, kmc, summary = w.Params.FileXYZ, w.Params.FileKMC, w.Params.FileSummary
	if xyz == "" {
		xyz = fmt.Sprintf("data/OUTPUT/%s_%s_T_%g_P_%g_cluster.xyz",
			w.Params.Element, w.structure, w.Params.Temperature, w.Params.Pressure)
	}
	if kmc == "" {
		kmc = DefaultFileKMC
	}
	if summary == "" {
		summary = DefaultFileSummary
	}
	return
}

func (w *Wulff) render(p *Particle) (map[string][]byte, []string, error) {
	xyzPath, kmcPath, summaryPath := w.Files()

	var xyz bytes.Buffer
	err := util.WriteXYZ(&xyz, util.XYZ{
		Comment:  fmt.Sprintf("cluster_%d_%d.xyz", int(math.Trunc(w.Params.Temperature)), int(math.Trunc(w.Params.Pressure))),
		Elements: p.Colors,
		Pos:      p.Pos,
		Labels:   p.Labels,
	})
	if err != nil {
		return nil, nil, err
	}

	elements := make([]string, len(p.Pos))
	for i := range elements {
		elements[i] = p.Element
	}
	var kmc bytes.Buffer
	err = util.WriteXYZ(&kmc, util.XYZ{Elements: elements, Pos: p.Pos})
	if err != nil {
		return nil, nil, err
	}

	var summary bytes.Buffer
	err = util.Header(&summary, w)
	if err != nil {
		return nil, nil, err
	}
	summary.WriteString(p.Summary.Table())
	summary.WriteByte('\n')

	files := map[string][]byte{
		xyzPath:     xyz.Bytes(),
		kmcPath:     kmc.Bytes(),
		summaryPath: summary.Bytes(),
	}
	return files, []string{xyzPath, kmcPath, summaryPath}, nil
}

var discard = log.New(io.Discard, "", 0)

func logger(l *log.Logger) *log.Logger {
	if l == nil {
		return discard
	}
	return l
}
