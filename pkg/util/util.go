// Package util contains some methods that can be used by every other package.
package util

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml"
)

// Write writes the output file according to a specific scheme. It writes the
// date, parses the structure in a TOML format and writes it. This method
// returns the file for further writing. It must be closed at the end of the
// calculation.
func Write(path string, structure interface{}) (*os.File, error) {
	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	err = Header(f, structure)
	if err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// Header writes the date and the structure encoded in TOML, followed by an
// empty line.
func Header(w io.Writer, structure interface{}) error {
	fmt.Fprintf(w, "Date: %v\n", time.Now().Format("2006-01-02 15:04:05 -0700 MST"))

	enc := toml.NewEncoder(w)
	err := enc.Encode(structure)
	if err != nil {
		return err
	}

	_, err = w.Write([]byte{'\n'})
	return err
}

// WriteFiles writes every file of the map. The directories are created if
// needed. If one file cannot be written, the files already written by this
// call are removed so that no partial output is left behind.
func WriteFiles(files map[string][]byte, order []string) error {
	var done []string
	for _, path := range order {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err == nil {
			err = os.WriteFile(path, files[path], 0644)
		}

		if err != nil {
			for _, p := range done {
				os.Remove(p)
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		done = append(done, path)
	}

	return nil
}

// Pow returns x**y, the base-x exponential of y.
func Pow(x float64, n int) float64 {
	res := x
	for i := 0; i < (n - 1); i++ {
		res *= x
	}
	return res
}

// RoundUp truncates x to one decimal and adds 0.1, e.g. 2.958 gives 3.0 and
// 2.5 gives 2.6.
func RoundUp(x float64) float64 {
	return (math.Trunc(x*10) + 1) / 10
}
