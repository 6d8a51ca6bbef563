// Package validator provides validation infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"chalkstone_backend/platform/formcheck"

	"github.com/go-playground/validator/v10"
)

// Custom tags backed by formcheck.
const (
	TagStrongPassword = "strongpassword"
	TagCouncilEmail   = "councilemail"
	TagLatitude       = "latitude_coord"
	TagLongitude      = "longitude_coord"
)

// Validator wraps the go-playground validator for structured validation.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator with the formcheck tags registered and JSON
// field names used in error reports.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	val := &Validator{v: v}
	val.mustRegister(TagStrongPassword, func(fl validator.FieldLevel) bool {
		return formcheck.IsValidPassword(fl.Field().String())
	})
	val.mustRegister(TagCouncilEmail, func(fl validator.FieldLevel) bool {
		return formcheck.IsValidEmail(fl.Field().String())
	})
	val.mustRegister(TagLatitude, coordinateFunc(formcheck.AxisLatitude))
	val.mustRegister(TagLongitude, coordinateFunc(formcheck.AxisLongitude))
	return val
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

func (val *Validator) mustRegister(tag string, fn validator.Func) {
	if err := val.v.RegisterValidation(tag, fn); err != nil {
		panic("register validation " + tag + ": " + err.Error())
	}
}

// FieldErrors flattens a validation error into field -> failed tag, suitable
// for the details of an error response. Non-validation errors give nil.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe.Namespace())] = fe.Tag()
	}
	return out
}

func coordinateFunc(axis formcheck.Axis) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		for field.Kind() == reflect.Pointer {
			if field.IsNil() {
				return false
			}
			field = field.Elem()
		}
		if !field.CanInterface() {
			return false
		}
		return formcheck.IsValidCoordinate(field.Interface(), axis)
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

// fieldPath drops the root struct name from a namespace like
// "CreateIssueRequest.location.latitude".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
