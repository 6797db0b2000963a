package lattice

import (
	"math"

	"github.com/kpotier/nanowulff/pkg/util"
)

// IdealC returns the c lattice constant of an ideal HCP crystal.
func IdealC(a float64) float64 {
	return a * math.Sqrt(8./3.)
}

// BondLength returns the largest distance at which two atoms are considered
// as bonded: 1.45a/2 for FCC, 1.75a/2 for BCC and 1.05a for HCP. It lies
// between the first and the second neighbor shell.
func BondLength(s Structure, a float64) float64 {
	switch s {
	case BCC:
		return 1.75 / 2 * a
	case HCP:
		return 1.05 * a
	}
	return 1.45 / 2 * a
}

// Cutoff returns the bond length rounded up to one decimal. Two atoms are
// neighbors if their distance is strictly lower than the cutoff.
func Cutoff(s Structure, a float64) float64 {
	return util.RoundUp(BondLength(s, a))
}

// BulkCN returns the coordination number from which an atom is considered to
// belong to the bulk.
func BulkCN(s Structure) int {
	if s == BCC {
		return 7
	}
	return 10
}

// GCNNorm returns the coordination number of a bulk atom, used to normalize
// the generalized coordination number.
func GCNNorm(s Structure) float64 {
	if s == BCC {
		return 8
	}
	return 12
}

// FacetGeometry returns the area per surface atom and the interplanar
// spacing of the (hkl) planes.
func FacetGeometry(s Structure, h, k, l int, a, c float64) (area, spacing float64) {
	norm := math.Sqrt(float64(h*h + k*k + l*l))

	switch s {
	case FCC:
		if h%2 != 0 && k%2 != 0 && l%2 != 0 {
			area = a * a * norm / 4
			return area, a * a * a / area / 4
		}
		area = a * a * norm / 2
		return area, a * a * a / area / 2

	case BCC:
		if (h+k+l)%2 != 0 {
			area = a * a * norm
			return area, a * a * a / area
		}
		area = a * a * norm / 2
		return area, a * a * a / area / 2

	case HCP:
		root := math.Sqrt(0.75*float64(h*h+h*k+k*k)/(a*a) + util.Pow(float64(l)/c, 2))
		if (2*h+k)%3 == 0 && l%2 != 0 {
			area = math.Sqrt(3) * a * a * c * root / 4
			return area, a * a * c / area / 4
		}
		area = math.Sqrt(3) * a * a * c * root / 2
		return area, a * a * c / area / 2
	}

	return 0, 0
}
