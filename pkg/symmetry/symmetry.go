// Package symmetry expands a Miller index into the family of planes that are
// equivalent by the symmetry of the crystal.
package symmetry

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kpotier/nanowulff/pkg/lattice"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// Miller is a Miller index (h, k, l).
type Miller [3]int

var digit = regexp.MustCompile(`-?[0-9]`)

// ParseMiller parses a Miller index written as three signed digits, with or
// without separators ("111", "1-10", "1 -1 0").
func ParseMiller(s string) (Miller, error) {
	found := digit.FindAllString(s, -1)
	if len(found) != 3 {
		return Miller{}, fmt.Errorf("index `%s`: need three digits, got %d", s, len(found))
	}

	var m Miller
	for k, v := range found {
		m[k], _ = strconv.Atoi(v)
	}

	if m == (Miller{}) {
		return Miller{}, fmt.Errorf("index `%s`: (000) is not a plane", s)
	}
	return m, nil
}

// ID returns the compact form of the index, e.g. "1-10".
func (m Miller) ID() string {
	var sb strings.Builder
	for _, v := range m {
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}

// Vec returns the plane normal (not normalized).
func (m Miller) Vec() r3.Vec {
	return r3.Vec{X: float64(m[0]), Y: float64(m[1]), Z: float64(m[2])}
}

// Planes returns the family of planes equivalent to m. For the cubic
// structures, it is every permutation of the index with every combination of
// signs. For HCP, the index is converted to the four-index notation, permuted
// and converted back to the smallest integer triple. The planes are sorted
// and unique.
func Planes(m Miller, s lattice.Structure) []Miller {
	if m == (Miller{}) {
		return nil
	}

	set := make(map[Miller]struct{})
	if s.Cubic() {
		signs(3, func(sign []int) {
			v := []int{sign[0] * m[0], sign[1] * m[1], sign[2] * m[2]}
			permute(len(v), func(p []int) {
				set[Miller{v[p[0]], v[p[1]], v[p[2]]}] = struct{}{}
			})
		})
	} else if s == lattice.HCP {
		h, k, l := float64(m[0]), float64(m[1]), float64(m[2])
		H := (2*h - k) / 3
		K := (2*k - h) / 3
		hkil := []float64{H, K, -(H + K), l}

		signs(4, func(sign []int) {
			v := make([]float64, 4)
			for i := range v {
				v[i] = float64(sign[i]) * hkil[i]
			}
			permute(len(v), func(p []int) {
				r := Miller{
					int(math.Round((v[p[0]] - v[p[2]]) * 3)),
					int(math.Round((v[p[1]] - v[p[2]]) * 3)),
					int(math.Round(v[p[3]] * 3)),
				}
				if r == (Miller{}) {
					return
				}
				d := GCD(GCD(abs(r[0]), abs(r[1])), abs(r[2]))
				set[Miller{r[0] / d, r[1] / d, r[2] / d}] = struct{}{}
			})
		})
	}

	planes := make([]Miller, 0, len(set))
	for p := range set {
		planes = append(planes, p)
	}
	slices.SortFunc(planes, compare)
	return planes
}

// GCD returns the greatest common divisor of x and y (Euclidean algorithm).
// GCD(0, y) is y.
func GCD(x, y int) int {
	if x == 0 {
		return y
	}
	for y != 0 {
		x, y = y, x%y
	}
	return x
}

// ErrDegenerate is returned by Normal for the (000) index.
var ErrDegenerate = errors.New("degenerate plane (000)")

// Normal returns the unit normal of the plane.
func Normal(m Miller) (r3.Vec, error) {
	if m == (Miller{}) {
		return r3.Vec{}, ErrDegenerate
	}
	return r3.Unit(m.Vec()), nil
}

func compare(a, b Miller) int {
	for k := range a {
		if a[k] != b[k] {
			return b[k] - a[k]
		}
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// signs calls fn with every combination of n signs (+1/-1).
func signs(n int, fn func([]int)) {
	s := make([]int, n)
	for mask := 0; mask < 1<<n; mask++ {
		for i := range s {
			s[i] = 1
			if mask&(1<<i) != 0 {
				s[i] = -1
			}
		}
		fn(s)
	}
}

// permute calls fn with every permutation of [0, n) (Heap's algorithm).
func permute(n int, fn func([]int)) {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}

	c := make([]int, n)
	fn(p)
	for i := 1; i < n; {
		if c[i] < i {
			if i%2 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[c[i]], p[i] = p[i], p[c[i]]
			}
			fn(p)
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
}
