// Package radiusgyration calculates the radius of gyration of a cluster.
package radiusgyration

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/kpotier/nanowulff/pkg/util"

	"github.com/pelletier/go-toml"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Type is name of the calculation.
var Type = "radius_gyration"

// RadiusGyration is a structure containing the parameters that can be parsed from
// a TOML configuration file. This structure can be instanced through the New
// method. If Masses is empty, every atom has the same mass. Otherwise, it
// must contain the mass of every element of the cluster.
type RadiusGyration struct {
	FileIn  string `toml:"radius_gyration.file_in"`
	FileOut string `toml:"radius_gyration.file_out"`

	Masses map[string]float64 `toml:"radius_gyration.masses"`
}

// New returns an instance of the RadiusGyration structure. It reads and parses
// the configuration file given in argument. The file must be a TOML file.
func New(path string) (*RadiusGyration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var radiusgyration RadiusGyration
	dec := toml.NewDecoder(f)
	err = dec.Decode(&radiusgyration)
	if err != nil {
		return nil, err
	}

	if radiusgyration.FileIn == "" || radiusgyration.FileOut == "" {
		return nil, fmt.Errorf("FileIn and FileOut are required")
	}
	for el, m := range radiusgyration.Masses {
		if !(m > 0) {
			return nil, fmt.Errorf("mass of `%s` must be positive (got %g)", el, m)
		}
	}

	return &radiusgyration, nil
}

// Start performs the calculation. It is a thread blocking method. It is a very
// fast calculation. This calculation only use one thread.
func (r *RadiusGyration) Start(log *log.Logger) error {
	f, err := os.Open(r.FileIn)
	if err != nil {
		return err
	}
	defer f.Close()

	xyz, err := util.ReadXYZ(f)
	if err != nil {
		return fmt.Errorf("ReadXYZ: %w", err)
	}

	masses, err := r.masses(xyz.Elements)
	if err != nil {
		return err
	}
	com, radius := Radius(xyz.Pos, masses)

	out, err := util.Write(r.FileOut, r)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	fmt.Fprintln(out, "atoms com_x com_y com_z radius")
	fmt.Fprintf(out, "%d %g %g %g %g\n", len(xyz.Pos), com.X, com.Y, com.Z, radius)

	if log != nil {
		log.Printf("radius_gyration: %d atoms, radius %.3f Å", len(xyz.Pos), radius)
	}
	return nil
}

func (r *RadiusGyration) masses(elements []string) ([]float64, error) {
	if len(r.Masses) == 0 {
		return nil, nil
	}

	masses := make([]float64, len(elements))
	for k, el := range elements {
		mass, ok := r.Masses[el]
		if !ok {
			return nil, fmt.Errorf("mass for element `%s` doesn't exist", el)
		}
		masses[k] = mass
	}
	return masses, nil
}

// Radius returns the center of mass and the radius of gyration of the atoms.
// If masses is nil, the atoms have the same mass.
func Radius(pos []r3.Vec, masses []float64) (com r3.Vec, radius float64) {
	if len(pos) == 0 {
		return r3.Vec{}, 0
	}

	x := make([]float64, len(pos))
	y := make([]float64, len(pos))
	z := make([]float64, len(pos))
	for k, p := range pos {
		x[k], y[k], z[k] = p.X, p.Y, p.Z
	}
	com = r3.Vec{X: stat.Mean(x, masses), Y: stat.Mean(y, masses), Z: stat.Mean(z, masses)}

	// Mean squared distance between the COM and each atom.
	d := make([]float64, len(pos))
	for k, p := range pos {
		d[k] = r3.Norm2(r3.Sub(p, com))
	}
	return com, math.Sqrt(stat.Mean(d, masses))
}
