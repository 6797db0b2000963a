package symmetry

import (
	"testing"

	"github.com/kpotier/nanowulff/pkg/lattice"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMiller(t *testing.T) {
	tests := []struct {
		in   string
		want Miller
		err  bool
	}{
		{"111", Miller{1, 1, 1}, false},
		{"1-10", Miller{1, -1, 0}, false},
		{"1 -1 0", Miller{1, -1, 0}, false},
		{"(2,1,0)", Miller{2, 1, 0}, false},
		{"11", Miller{}, true},
		{"1111", Miller{}, true},
		{"000", Miller{}, true},
		{"abc", Miller{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMiller(tt.in)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMillerID(t *testing.T) {
	assert.Equal(t, "111", Miller{1, 1, 1}.ID())
	assert.Equal(t, "1-10", Miller{1, -1, 0}.ID())
	assert.Equal(t, "-2-1-1", Miller{-2, -1, -1}.ID())
}

func TestPlanesCubic(t *testing.T) {
	tests := []struct {
		m    Miller
		want int
	}{
		{Miller{1, 0, 0}, 6},
		{Miller{1, 1, 0}, 12},
		{Miller{1, 1, 1}, 8},
		{Miller{2, 1, 0}, 24},
		{Miller{1, 1, 2}, 24},
		{Miller{1, 2, 3}, 48},
	}

	for _, tt := range tests {
		t.Run(tt.m.ID(), func(t *testing.T) {
			for _, s := range []lattice.Structure{lattice.FCC, lattice.BCC} {
				planes := Planes(tt.m, s)
				assert.Len(t, planes, tt.want)
				assert.Contains(t, planes, tt.m)
			}
		})
	}
}

func TestPlanesOrder(t *testing.T) {
	planes := Planes(Miller{1, 0, 0}, lattice.FCC)
	want := []Miller{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{0, 0, -1}, {0, -1, 0}, {-1, 0, 0},
	}
	assert.Equal(t, want, planes)
}

func TestPlanesHCP(t *testing.T) {
	planes := Planes(Miller{0, 0, 1}, lattice.HCP)
	want := []Miller{
		{1, 1, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		{0, 0, -1}, {0, -1, 0}, {-1, 0, 0}, {-1, -1, 0},
	}
	assert.Equal(t, want, planes)

	for _, p := range Planes(Miller{1, 0, 0}, lattice.HCP) {
		assert.NotEqual(t, Miller{}, p)
		assert.Equal(t, 1, GCD(GCD(abs(p[0]), abs(p[1])), abs(p[2])), "plane %v is not reduced", p)
	}
}

func TestPlanesDegenerate(t *testing.T) {
	assert.Empty(t, Planes(Miller{}, lattice.FCC))

	_, err := Normal(Miller{})
	assert.ErrorIs(t, err, ErrDegenerate)

	n, err := Normal(Miller{0, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.6, n.Y, 1e-12)
	assert.InDelta(t, 0.8, n.Z, 1e-12)
}

func TestGCD(t *testing.T) {
	assert.Equal(t, 3, GCD(0, 3))
	assert.Equal(t, 3, GCD(3, 0))
	assert.Equal(t, 6, GCD(12, 18))
	assert.Equal(t, 1, GCD(7, 3))
}

func TestPermute(t *testing.T) {
	seen := make(map[[4]int]bool)
	permute(4, func(p []int) {
		seen[[4]int{p[0], p[1], p[2], p[3]}] = true
	})
	assert.Len(t, seen, 24)
}

// The family of a cubic plane is closed under permutation and sign change,
// and has no duplicate.
func TestPlanesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	digit := gen.IntRange(-9, 9)
	nonZero := func(v []interface{}) bool {
		return v[0].(int) != 0 || v[1].(int) != 0 || v[2].(int) != 0
	}

	properties.Property("cubic family is closed and unique", prop.ForAll(
		func(v []interface{}) bool {
			m := Miller{v[0].(int), v[1].(int), v[2].(int)}
			planes := Planes(m, lattice.FCC)

			set := make(map[Miller]bool, len(planes))
			for _, p := range planes {
				if set[p] {
					return false
				}
				set[p] = true
			}

			for _, p := range planes {
				if !set[Miller{p[1], p[0], p[2]}] || !set[Miller{p[2], p[1], p[0]}] ||
					!set[Miller{-p[0], p[1], p[2]}] {
					return false
				}
			}
			return set[m]
		},
		gopter.CombineGens(digit, digit, digit).SuchThat(nonZero),
	))

	properties.Property("cubic family size divides 48", prop.ForAll(
		func(v []interface{}) bool {
			m := Miller{v[0].(int), v[1].(int), v[2].(int)}
			n := len(Planes(m, lattice.BCC))
			return n > 0 && 48%n == 0
		},
		gopter.CombineGens(digit, digit, digit).SuchThat(nonZero),
	))

	properties.TestingRun(t)
}
