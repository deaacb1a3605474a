package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput runs struct tag validation and folds the first failure into ErrInvalidInput.
func validateInput(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, e.Field())
	case "min":
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, e.Field())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of %s", ErrInvalidInput, e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Errorf("%w: %s is invalid", ErrInvalidInput, e.Field())
	}
}
