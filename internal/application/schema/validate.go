package schema

import (
	"errors"
	"strings"

	"github.com/adhikag24/unified-pricing-layer-mvp/internal/domain/fault"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// shapeErr translates validator field errors into a ValidationError
// naming the offending fields.
func shapeErr(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
		}
		return fault.New(fault.KindValidation, "shape validation failed: %s", strings.Join(fields, ", "))
	}
	return fault.Wrap(fault.KindValidation, err, "shape validation failed")
}
