// Package validate envuelve go-playground/validator con un singleton.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

// newValidator reporta los campos por su nombre JSON.
func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Struct valida los tags `validate` y devuelve un error legible.
func Struct(s any) error {
	return humanize(v.Struct(s))
}

// Email valida una dirección individual.
func Email(addr string) error {
	return humanize(v.Var(addr, "required,email,max=254"))
}

func humanize(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if field == "" {
			field = "value"
		}
		msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", field, fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}
