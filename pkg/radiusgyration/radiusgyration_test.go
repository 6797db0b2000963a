package radiusgyration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRadius(t *testing.T) {
	pos := []r3.Vec{{X: 1}, {X: -1}, {Y: 2}, {Y: -2}}
	com, radius := Radius(pos, nil)
	assert.InDelta(t, 0, r3.Norm(com), 1e-12)
	assert.InDelta(t, 1.5811388300841898, radius, 1e-12) // sqrt(10/4)

	// The heavy atom pulls the center of mass.
	com, radius = Radius([]r3.Vec{{}, {X: 4}}, []float64{3, 1})
	assert.InDelta(t, 1, com.X, 1e-12)
	assert.InDelta(t, 1.7320508075688772, radius, 1e-12) // sqrt((3*1 + 9)/4)

	com, radius = Radius(nil, nil)
	assert.Zero(t, com)
	assert.Zero(t, radius)
}

func TestStart(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "ini.xyz")
	require.NoError(t, os.WriteFile(in, []byte("3\n\nAu 0 0 0\nAu 2 0 0\nO 1 3 0\n"), 0644))

	out := filepath.Join(dir, "rg.txt")
	r := RadiusGyration{FileIn: in, FileOut: out, Masses: map[string]float64{"Au": 197, "O": 16}}
	require.NoError(t, r.Start(nil))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "Date: "))
	assert.Contains(t, string(b), "atoms com_x com_y com_z radius\n3 1 ")

	r.Masses = map[string]float64{"Au": 197}
	assert.Error(t, r.Start(nil))
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[radius_gyration]
file_in = "ini.xyz"
file_out = "rg.txt"

[radius_gyration.masses]
Au = 196.97
`), 0644))

	r, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "ini.xyz", r.FileIn)
	assert.Equal(t, map[string]float64{"Au": 196.97}, r.Masses)

	require.NoError(t, os.WriteFile(path, []byte(`[radius_gyration]
file_in = "ini.xyz"
`), 0644))
	_, err = New(path)
	assert.Error(t, err)
}
