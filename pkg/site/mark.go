package site

import (
	"github.com/kpotier/nanowulff/pkg/lattice"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// Labels that are not a facet ID.
const (
	Edge       = "edge"
	Corner     = "corner"
	Subsurface = "subsurface"
	Bulk       = "bulk"
	Unknown    = "unknown"
)

// Tolerance is the fraction of the interplanar spacing within which an atom
// is considered to lie on the outermost layer of a plane.
const Tolerance = 0.45

// Facet is a facet of the particle: its ID (e.g. "111") and the spacing
// between two consecutive atomic layers parallel to it.
type Facet struct {
	ID      string
	Spacing float64
}

// Plane is one plane of the particle. Normal must be a unit vector and Facet
// is the index of the facet the plane comes from.
type Plane struct {
	Normal r3.Vec
	Facet  int
}

// Marks is the classification of the atoms of a particle.
type Marks struct {
	Labels []string
	Colors []string

	// Pure is the number of atoms belonging to only one facet. EdgeShare and
	// CornerShare split the edges and the corners between the facets.
	Pure        []int
	EdgeShare   []float64
	CornerShare []float64

	Edges   int
	Corners int
}

// Mark classifies every atom. An atom with a CN lower than the bulk one is
// tested against every plane: it belongs to the plane if its projection on
// the normal is within Tolerance*spacing of the outermost atom. An atom on a
// single plane is a facet atom; on no plane it is a subsurface atom.
//
// The atoms on several planes are resolved afterwards: the facets without any
// facet atom are dropped, then the atom is a facet atom (one plane left), an
// edge (two) or a corner (three or more). The edges and the corners are
// shared equally between the remaining facets.
func Mark(pos []r3.Vec, cn []int, s lattice.Structure, facets []Facet, planes []Plane) Marks {
	m := Marks{
		Labels:      make([]string, len(pos)),
		Colors:      make([]string, len(pos)),
		Pure:        make([]int, len(facets)),
		EdgeShare:   make([]float64, len(facets)),
		CornerShare: make([]float64, len(facets)),
	}
	if len(pos) == 0 {
		return m
	}

	// Outermost projection on each plane.
	proj := make([][]float64, len(pos))
	maxD := make([]float64, len(planes))
	for i, p := range pos {
		proj[i] = make([]float64, len(planes))
		for k, pl := range planes {
			proj[i][k] = r3.Dot(p, pl.Normal)
			if i == 0 || proj[i][k] > maxD[k] {
				maxD[k] = proj[i][k]
			}
		}
	}

	bulk := lattice.BulkCN(s)
	tags := make([][]int, len(pos))
	var shared []int
	for i := range pos {
		if cn[i] >= bulk {
			m.set(i, Bulk)
			continue
		}

		for k, pl := range planes {
			if proj[i][k] >= maxD[k]-Tolerance*facets[pl.Facet].Spacing {
				tags[i] = append(tags[i], pl.Facet)
			}
		}

		switch len(tags[i]) {
		case 0:
			m.set(i, Subsurface)
		case 1:
			m.Pure[tags[i][0]]++
			m.set(i, facets[tags[i][0]].ID)
		default:
			shared = append(shared, i)
		}
	}

	for _, i := range shared {
		kept := slices.DeleteFunc(tags[i], func(f int) bool {
			return m.Pure[f] == 0
		})

		switch l := len(kept); {
		case l == 0:
			m.set(i, Unknown)
		case l == 1:
			m.Pure[kept[0]]++
			m.set(i, facets[kept[0]].ID)
		case l == 2:
			m.Edges++
			m.EdgeShare[kept[0]] += 0.5
			m.EdgeShare[kept[1]] += 0.5
			m.set(i, Edge)
		default:
			m.Corners++
			for _, f := range kept {
				m.CornerShare[f] += 1 / float64(l)
			}
			m.set(i, Corner)
		}
	}

	return m
}

func (m *Marks) set(i int, label string) {
	m.Labels[i] = label
	m.Colors[i] = Color(label)
}

// Color returns the element used to display an atom with the given label.
func Color(label string) string {
	switch label {
	case "100":
		return "Au"
	case "110":
		return "Cu"
	case "111":
		return "Fe"
	case Edge:
		return "Pt"
	case Corner:
		return "Pd"
	case Bulk:
		return "Co"
	case Subsurface, Unknown, "":
		return "O"
	}
	return "Rh"
}
