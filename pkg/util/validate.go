package util

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError returns the first validation error in a readable format.
// Other errors are returned unchanged.
func ValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}

	e := errs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", e.Namespace())
	case "min", "gte":
		return fmt.Errorf("%s: must be at least %s", e.Namespace(), e.Param())
	case "max", "lte":
		return fmt.Errorf("%s: must not exceed %s", e.Namespace(), e.Param())
	case "gt":
		return fmt.Errorf("%s: must be greater than %s", e.Namespace(), e.Param())
	case "len":
		return fmt.Errorf("%s: must have %s elements", e.Namespace(), e.Param())
	case "oneof":
		return fmt.Errorf("%s: must be one of [%s], got `%v`", e.Namespace(), e.Param(), e.Value())
	}
	return fmt.Errorf("%s: validation failed (%s)", e.Namespace(), e.Tag())
}
