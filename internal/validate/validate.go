// Package validate checks decoded request bodies against their struct schema and
// reports the outcome as a tagged Result instead of a bare bool.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("instant", isInstant); err != nil {
		panic(err)
	}
	return v
}

// Result is either a valid Value or a list of problems.
type Result[T any] struct {
	Value    T
	Problems []string
}

func (r Result[T]) OK() bool {
	return len(r.Problems) == 0
}

// Err folds the problems into a single error, nil when the result is valid.
func (r Result[T]) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("validate: %s", strings.Join(r.Problems, "; "))
}

// Struct validates v using its `validate` struct tags.
func Struct[T any](v T) Result[T] {
	err := validate.Struct(v)
	if err == nil {
		return Result[T]{Value: v}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Result[T]{Value: v, Problems: []string{err.Error()}}
	}

	return Result[T]{
		Value: v,
		Problems: lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
			return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
		}),
	}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// isInstant accepts a time.Time that is not the zero value.
func isInstant(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(interface{ IsZero() bool })
	return ok && !t.IsZero()
}
