package util

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// XYZ is a structure file: one element and one position per atom, plus an
// optional label per atom (the fifth column).
type XYZ struct {
	Comment  string
	Elements []string
	Pos      []r3.Vec
	Labels   []string
}

// WriteXYZ writes the structure in the XYZ format. The label column is only
// written if Labels is not nil.
func WriteXYZ(w io.Writer, xyz XYZ) error {
	if len(xyz.Elements) != len(xyz.Pos) {
		return fmt.Errorf("length of Elements isn't equal to Pos (%d vs %d)",
			len(xyz.Elements), len(xyz.Pos))
	}
	if xyz.Labels != nil && len(xyz.Labels) != len(xyz.Pos) {
		return fmt.Errorf("length of Labels isn't equal to Pos (%d vs %d)",
			len(xyz.Labels), len(xyz.Pos))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", len(xyz.Pos), xyz.Comment)
	for i, p := range xyz.Pos {
		fmt.Fprintf(bw, "%s  %.3f  %.3f  %.3f", xyz.Elements[i], p.X, p.Y, p.Z)
		if xyz.Labels != nil {
			fmt.Fprintf(bw, "  %s", xyz.Labels[i])
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// ReadXYZ reads a structure in the XYZ format. A fifth column, if present, is
// stored in Labels.
func ReadXYZ(r io.Reader) (XYZ, error) {
	rd := bufio.NewReader(r)

	b, err := rd.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return XYZ{}, err
	}
	atoms, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return XYZ{}, fmt.Errorf("number of atoms: %w", err)
	}

	comment, _ := rd.ReadString('\n')
	xyz := XYZ{
		Comment:  strings.TrimRight(comment, "\r\n"),
		Elements: make([]string, 0, atoms),
		Pos:      make([]r3.Vec, 0, atoms),
	}

	for i := 0; i < atoms; i++ {
		b, err := rd.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || b == "") {
			return XYZ{}, fmt.Errorf("atom %d: %w", i, err)
		}

		fields := strings.Fields(b)
		if len(fields) < 4 {
			return XYZ{}, fmt.Errorf("not enough columns (id %d, got %d, expected at least 4)", i, len(fields))
		}

		var v [3]float64
		for k := 0; k < 3; k++ {
			v[k], err = strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return XYZ{}, fmt.Errorf("atom %d: %w", i, err)
			}
		}

		xyz.Elements = append(xyz.Elements, fields[0])
		xyz.Pos = append(xyz.Pos, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
		if len(fields) > 4 {
			if xyz.Labels == nil {
				xyz.Labels = make([]string, i, atoms)
			}
			xyz.Labels = append(xyz.Labels, strings.Join(fields[4:], " "))
		} else if xyz.Labels != nil {
			xyz.Labels = append(xyz.Labels, "")
		}
	}

	return xyz, nil
}
