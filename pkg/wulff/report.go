package wulff

import (
	"fmt"
	"strconv"

	"github.com/kpotier/nanowulff/pkg/radiusgyration"
	"github.com/kpotier/nanowulff/pkg/site"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gonum.org/v1/gonum/spatial/r3"
)

// Summary is the number of atoms of each facet, the edges and the corners
// shared between the facets, and the coverage of each gas on each facet.
type Summary struct {
	Facets []string
	Gases  []string

	Pure        []int
	EdgeShare   []float64
	CornerShare []float64
	Coverage    [][]float64 // [facet][gas]
	Gamma       []float64

	Edges      int
	Corners    int
	Subsurface int

	NSurf  int
	SurfCN float64
	Radius float64 // radius of gyration (Å)
}

func (w *Wulff) summary(pos []r3.Vec, an site.Analysis, m site.Marks) Summary {
	s := Summary{
		Facets:      make([]string, len(w.facets)),
		Gases:       make([]string, len(w.gases)),
		Pure:        m.Pure,
		EdgeShare:   m.EdgeShare,
		CornerShare: m.CornerShare,
		Coverage:    make([][]float64, len(w.facets)),
		Gamma:       make([]float64, len(w.facets)),
		Edges:       m.Edges,
		Corners:     m.Corners,
		NSurf:       an.NSurf,
		SurfCN:      an.SurfCN,
	}

	var pure int
	for k, f := range w.facets {
		s.Facets[k] = f.ID
		s.Coverage[k] = f.Coverage
		s.Gamma[k] = f.Gamma
		pure += m.Pure[k]
	}
	for k, g := range w.gases {
		s.Gases[k] = g.Name
	}

	s.Subsurface = s.NSurf - pure - s.Edges - s.Corners
	_, s.Radius = radiusgyration.Radius(pos, nil)
	return s
}

// Table renders the summary: one column per facet plus the edges, the
// corners and the subsurface atoms.
func (s Summary) Table() string {
	headers := append([]string{""}, s.Facets...)
	headers = append(headers, "edges", "corners", "subsurface")

	na := func(row []string) []string {
		return append(row, "/", "/", "/")
	}

	number := []string{"number"}
	edges := []string{"n_edges"}
	corners := []string{"n_corners"}
	gamma := []string{"gamma"}
	for k := range s.Facets {
		number = append(number, strconv.Itoa(s.Pure[k]))
		edges = append(edges, fmt.Sprintf("%.2f", s.EdgeShare[k]))
		corners = append(corners, fmt.Sprintf("%.2f", s.CornerShare[k]))
		gamma = append(gamma, fmt.Sprintf("%.4f", s.Gamma[k]))
	}
	number = append(number, strconv.Itoa(s.Edges), strconv.Itoa(s.Corners), strconv.Itoa(s.Subsurface))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Row(number...).
		Row(na(edges)...).
		Row(na(corners)...).
		Row(na(gamma)...)

	for g, name := range s.Gases {
		row := []string{"coverage " + name}
		for k := range s.Facets {
			row = append(row, fmt.Sprintf("%.2f", s.Coverage[k][g]))
		}
		t.Row(na(row)...)
	}

	return t.String() + fmt.Sprintf("\nsurface atoms: %d, average surface CN: %.2f, radius of gyration: %.2f Å\n",
		s.NSurf, s.SurfCN, s.Radius)
}
