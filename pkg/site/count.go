// Package site classifies the atoms of a nanoparticle. The coordination
// number (CN) and the generalized coordination number (GCN) of each atom are
// computed first; the surface atoms are then assigned to a facet, an edge or
// a corner from their distance to the planes of the particle.
package site

import (
	"github.com/kpotier/nanowulff/pkg/lattice"
	"github.com/kpotier/nanowulff/pkg/util"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Analysis is the coordination analysis of a set of atoms.
type Analysis struct {
	CN        []int
	GCN       []float64
	Neighbors [][]int

	// NSurf is the number of atoms below the bulk coordination and SurfCN
	// their average CN.
	NSurf  int
	SurfCN float64
}

// Neighbors returns, for each atom, the sorted indices of the atoms closer
// than cutoff (strictly). The search uses a k-d tree. Atoms at the same
// position are neighbors of each other.
func Neighbors(pos []r3.Vec, cutoff float64) [][]int {
	nb := make([][]int, len(pos))
	if len(pos) == 0 {
		return nb
	}

	pts := make(atoms, len(pos))
	for i, p := range pos {
		pts[i] = atom{Vec: p, i: i}
	}
	tree := kdtree.New(pts, false)

	cutoff2 := util.Pow(cutoff, 2)
	for i, p := range pos {
		keep := kdtree.NewDistKeeper(cutoff2)
		tree.NearestSet(keep, atom{Vec: p, i: i})

		for _, c := range keep.Heap {
			if c.Comparable == nil || c.Dist >= cutoff2 {
				continue
			}
			if j := c.Comparable.(atom).i; j != i {
				nb[i] = append(nb[i], j)
			}
		}
		slices.Sort(nb[i])
	}

	return nb
}

// atom is a position in the k-d tree with the index of the atom.
type atom struct {
	r3.Vec
	i int
}

func (a atom) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return a.X
	case 1:
		return a.Y
	}
	return a.Z
}

func (a atom) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return a.coord(d) - c.(atom).coord(d)
}

func (a atom) Dims() int { return 3 }

func (a atom) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.Vec, c.(atom).Vec))
}

type atoms []atom

func (a atoms) Index(i int) kdtree.Comparable         { return a[i] }
func (a atoms) Len() int                              { return len(a) }
func (a atoms) Pivot(d kdtree.Dim) int                { return plane{atoms: a, dim: d}.Pivot() }
func (a atoms) Slice(start, end int) kdtree.Interface { return a[start:end] }

// plane sorts the atoms along one dimension.
type plane struct {
	atoms
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool { return p.atoms[i].coord(p.dim) < p.atoms[j].coord(p.dim) }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Swap(i, j int)      { p.atoms[i], p.atoms[j] = p.atoms[j], p.atoms[i] }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{atoms: p.atoms[start:end], dim: p.dim}
}

// Count computes the CN and the GCN of every atom. The GCN is the sum of the
// CN of the neighbors divided by the CN of a bulk atom.
func Count(pos []r3.Vec, cutoff float64, s lattice.Structure) Analysis {
	a := Analysis{
		CN:        make([]int, len(pos)),
		GCN:       make([]float64, len(pos)),
		Neighbors: Neighbors(pos, cutoff),
	}

	for i, nb := range a.Neighbors {
		a.CN[i] = len(nb)
	}

	norm := lattice.GCNNorm(s)
	bulk := lattice.BulkCN(s)
	var surf []float64
	for i, nb := range a.Neighbors {
		var sum int
		for _, j := range nb {
			sum += a.CN[j]
		}
		a.GCN[i] = float64(sum) / norm

		if a.CN[i] < bulk {
			surf = append(surf, float64(a.CN[i]))
		}
	}

	a.NSurf = len(surf)
	if a.NSurf > 0 {
		a.SurfCN = stat.Mean(surf, nil)
	}
	return a
}
