// Package cn calculates the coordination number (CN) and the generalized
// coordination number (GCN) of every atom of an existing cluster.
package cn

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/kpotier/nanowulff/pkg/lattice"
	"github.com/kpotier/nanowulff/pkg/site"
	"github.com/kpotier/nanowulff/pkg/util"

	"github.com/pelletier/go-toml"
)

// Type is the type of calculation.
var Type = "cn"

// CN is a structure containing the parameters that can be parsed from a TOML
// configuration file. This structure can be instanced through the New method.
// If Cutoff is zero, the bond length of the structure rounded up to one
// decimal is used.
type CN struct {
	FileIn  string `toml:"cn.file_in"`
	FileOut string `toml:"cn.file_out"`

	Structure string  `toml:"cn.structure"`
	LatticeA  float64 `toml:"cn.lattice_a"`
	Cutoff    float64 `toml:"cn.cutoff"`

	structure lattice.Structure
}

// New returns an instance of the CN structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*CN, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c CN
	dec := toml.NewDecoder(f)
	err = dec.Decode(&c)
	if err != nil {
		return nil, err
	}

	err = c.check()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *CN) check() error {
	var err error
	c.structure, err = lattice.ParseStructure(c.Structure)
	if err != nil {
		return err
	}

	if c.Cutoff < 0 {
		return fmt.Errorf("Cutoff must be positive (got %g)", c.Cutoff)
	}
	if c.Cutoff == 0 {
		if c.LatticeA <= 0 {
			return fmt.Errorf("LatticeA must be greater than zero when Cutoff is not given (got %g)", c.LatticeA)
		}
		c.Cutoff = lattice.Cutoff(c.structure, c.LatticeA)
	}

	if c.FileIn == "" || c.FileOut == "" {
		return fmt.Errorf("FileIn and FileOut are required")
	}
	return nil
}

// Start performs the calculation. It is a thread blocking method. This
// calculation only use one thread.
func (c *CN) Start(log *log.Logger) error {
	fIn, err := os.Open(c.FileIn)
	if err != nil {
		return fmt.Errorf("Open: %w", err)
	}
	defer fIn.Close()

	xyz, err := util.ReadXYZ(fIn)
	if err != nil {
		return fmt.Errorf("ReadXYZ: %w", err)
	}

	an := site.Count(xyz.Pos, c.Cutoff, c.structure)

	fOut, err := util.Write(c.FileOut, c)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer fOut.Close()

	err = c.write(fOut, xyz, an)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if log != nil {
		log.Printf("cn: %d atoms, %d surface atoms (average CN %.2f)", len(xyz.Pos), an.NSurf, an.SurfCN)
	}
	return nil
}

func (c *CN) write(f *os.File, xyz util.XYZ, an site.Analysis) error {
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "nsurf = %d\nsurf_cn = %.4f\n\n", an.NSurf, an.SurfCN)

	fmt.Fprintln(w, "cn\tcount")
	for cn, n := range Histogram(an.CN) {
		fmt.Fprintf(w, "%d\t%d\n", cn, n)
	}

	fmt.Fprintln(w, "\nid\tel\tx\ty\tz\tcn\tgcn")
	for i, p := range xyz.Pos {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%.3f\t%d\t%.3f\n",
			i, xyz.Elements[i], p.X, p.Y, p.Z, an.CN[i], an.GCN[i])
	}

	return w.Flush()
}

// Histogram returns the number of atoms for each CN, from zero to the
// largest one.
func Histogram(cn []int) []int {
	var hist []int
	for _, v := range cn {
		for len(hist) <= v {
			hist = append(hist, 0)
		}
		hist[v]++
	}
	return hist
}
