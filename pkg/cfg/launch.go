package cfg

import (
	"fmt"
	"log"

	"github.com/kpotier/nanowulff/pkg/cn"
	"github.com/kpotier/nanowulff/pkg/kmcinput"
	"github.com/kpotier/nanowulff/pkg/radiusgyration"
	"github.com/kpotier/nanowulff/pkg/wulff"
)

// Calculation is an interface that only contains one method: Start. Every
// calculation must have a Start method that will launch the calculation. It
// must be a thread blocking method. The logger receives the progress of the
// calculation.
type Calculation interface {
	Start(log *log.Logger) error
}

// Launch launchs a specific calculation. It is a thread blocking method. The
// parameters required to launch the calculation must be in a file.
func Launch(name string, path string, log *log.Logger) error {
	var (
		err error
		cal Calculation
	)

	switch name {
	case wulff.Type:
		cal, err = wulff.New(path)
	case kmcinput.Type:
		cal, err = kmcinput.New(path)
	case cn.Type:
		cal, err = cn.New(path)
	case radiusgyration.Type:
		cal, err = radiusgyration.New(path)
	default:
		return fmt.Errorf("calculation `%s` doesn't exist", name)
	}

	if err != nil {
		return fmt.Errorf("%s: New: %w", name, err)
	}

	err = cal.Start(log)
	if err != nil {
		return fmt.Errorf("%s: Start: %w", name, err)
	}

	return nil
}
