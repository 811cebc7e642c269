package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	ValidateField(field string, value interface{}, rules ...string) error
}

// ValidationError lists the fields that failed, using their form names.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

type validatorImpl struct {
	v *validator.Validate
}

// New returns a Validator reading `validate` tags. Besides the stock rules it
// understands notblank, which rejects whitespace-only strings.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return !field.IsZero()
		}
		return strings.TrimSpace(field.String()) != ""
	})
	return &validatorImpl{v: v}
}

func (vi *validatorImpl) Validate(obj interface{}) error {
	return vi.convert(vi.v.Struct(obj), "")
}

func (vi *validatorImpl) ValidateField(field string, value interface{}, rules ...string) error {
	return vi.convert(vi.v.Var(value, strings.Join(rules, ",")), field)
}

func (vi *validatorImpl) convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		out.Fields = append(out.Fields, name)
	}
	return out
}
