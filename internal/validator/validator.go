// Package validator wraps go-playground/validator with the domain rules the
// services share.
package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// imdbIDPattern matches IMDb title ids like tt0133093.
var imdbIDPattern = regexp.MustCompile(`^tt\d{7,8}$`)

type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom "imdbid" tag registered.
func New() *Validator {
	v := validator.New()
	// RegisterValidation only errors on an empty tag name.
	_ = v.RegisterValidation("imdbid", func(fl validator.FieldLevel) bool {
		return imdbIDPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates s against its validate tags.
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
