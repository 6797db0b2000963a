// Package lattice builds bulk crystals (FCC, BCC and HCP) and holds the
// constants that depend on the crystal structure.
package lattice

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Structure is the crystal structure of the metal.
type Structure int

// Supported crystal structures.
const (
	FCC Structure = iota
	BCC
	HCP
)

// ParseStructure returns the structure named s (FCC, BCC or HCP).
func ParseStructure(s string) (Structure, error) {
	switch s {
	case "FCC":
		return FCC, nil
	case "BCC":
		return BCC, nil
	case "HCP":
		return HCP, nil
	}
	return 0, fmt.Errorf("crystal structure `%s` doesn't exist", s)
}

func (s Structure) String() string {
	switch s {
	case FCC:
		return "FCC"
	case BCC:
		return "BCC"
	case HCP:
		return "HCP"
	}
	return fmt.Sprintf("Structure(%d)", int(s))
}

// Cubic reports whether the structure has a cubic point group.
func (s Structure) Cubic() bool {
	return s == FCC || s == BCC
}

// MakeGrid returns every combination of indices of the given sizes. The last
// index varies the fastest: for sizes [M N P], the row i is [m n p] with
// i = p + P(n + Nm).
func MakeGrid(sizes ...int) [][]int {
	n := 1
	for _, s := range sizes {
		if s <= 0 {
			return nil
		}
		n *= s
	}

	grid := make([][]int, n)
	for i := range grid {
		row := make([]int, len(sizes))
		index := i
		for j := len(sizes) - 1; j >= 0; j-- {
			row[j] = index % sizes[j]
			index /= sizes[j]
		}
		grid[i] = row
	}
	return grid
}

// Gen generates the bulk of the given structure in a cube of side dim. The
// lattice constant c is only used by HCP.
func Gen(s Structure, dim, a, c float64) ([]r3.Vec, error) {
	switch s {
	case FCC:
		return GenFCC(dim, a), nil
	case BCC:
		return GenBCC(dim, a), nil
	case HCP:
		return GenHCP(dim, a, c), nil
	}
	return nil, fmt.Errorf("crystal structure `%s` doesn't exist", s)
}

// GenFCC generates an FCC bulk centered on its centroid.
func GenFCC(dim, a float64) []r3.Vec {
	prim := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: a / 2, Y: a / 2, Z: 0},
		{X: a / 2, Y: 0, Z: a / 2},
		{X: 0, Y: a / 2, Z: a / 2},
	}
	return tile(prim, dim, a)
}

// GenBCC generates a BCC bulk centered on its centroid.
func GenBCC(dim, a float64) []r3.Vec {
	prim := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: a / 2, Y: a / 2, Z: a / 2},
	}
	return tile(prim, dim, a)
}

func tile(prim []r3.Vec, dim, a float64) []r3.Vec {
	rep := int(dim / a)
	reps := MakeGrid(rep, rep, rep)

	bulk := make([]r3.Vec, 0, len(reps)*len(prim))
	for _, r := range reps {
		disp := r3.Vec{X: float64(r[0]) * a, Y: float64(r[1]) * a, Z: float64(r[2]) * a}
		for _, p := range prim {
			bulk = append(bulk, r3.Add(p, disp))
		}
	}
	return center(bulk)
}

// GenHCP generates an HCP bulk centered on its centroid. The atoms are placed
// in the (a1, a2, c) basis and converted to cartesian coordinates.
func GenHCP(dim, a, c float64) []r3.Vec {
	prim := [][3]float64{
		{a / 3, 2 * a / 3, c / 4},
		{2 * a / 3, a / 3, 3 * c / 4},
	}
	transform := mat.NewDense(3, 3, []float64{
		1, -0.5, 0,
		0, math.Sqrt(3) / 2, 0,
		0, 0, 1,
	})

	xyRep, zRep := int(dim/a), int(dim/c)
	reps := MakeGrid(xyRep, xyRep, zRep)

	bulk := make([]r3.Vec, 0, len(reps)*len(prim))
	var cart mat.VecDense
	for _, r := range reps {
		for _, p := range prim {
			frac := mat.NewVecDense(3, []float64{
				p[0] + a*float64(r[0]),
				p[1] + a*float64(r[1]),
				p[2] + c*float64(r[2]),
			})
			cart.MulVec(transform, frac)
			bulk = append(bulk, r3.Vec{X: cart.AtVec(0), Y: cart.AtVec(1), Z: cart.AtVec(2)})
		}
	}
	return center(bulk)
}

// center translates the points so that their centroid is the origin.
func center(pts []r3.Vec) []r3.Vec {
	if len(pts) == 0 {
		return pts
	}

	var xyz [3][]float64
	for k := range xyz {
		xyz[k] = make([]float64, len(pts))
	}
	for i, p := range pts {
		xyz[0][i], xyz[1][i], xyz[2][i] = p.X, p.Y, p.Z
	}

	n := float64(len(pts))
	com := r3.Vec{X: floats.Sum(xyz[0]) / n, Y: floats.Sum(xyz[1]) / n, Z: floats.Sum(xyz[2]) / n}
	for i := range pts {
		pts[i] = r3.Sub(pts[i], com)
	}
	return pts
}
