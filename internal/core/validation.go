package core

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs struct tags and wraps failures in ErrValidation.
func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}

// validateValue checks one value against a validator tag such as "required,max=80".
func validateValue(field string, value interface{}, rule string) error {
	if rule == "" {
		return nil
	}
	if err := validate.Var(value, rule); err != nil {
		return fmt.Errorf("%w: field '%s' fails '%s'", ErrValidation, field, rule)
	}
	return nil
}
