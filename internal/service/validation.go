package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/dom/twitter-clone/internal/domain"
	"github.com/go-playground/validator/v10"
)

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	err := v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	if err != nil {
		panic(err)
	}
	return v
}

// validate maps validator failures onto domain.ValidationError.
func validate(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &domain.ValidationError{Fields: make([]domain.FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = domain.FieldError{Field: fe.Field(), Rule: fe.Tag()}
	}
	return out
}
