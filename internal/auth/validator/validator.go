// Package validator registers the auth-specific validation tags.
package validator

import (
	"regexp"

	"chalkstone_backend/platform/formcheck"
	"chalkstone_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
)

// TagUsername validates account usernames.
const TagUsername = "username"

// PasswordPolicy describes the password requirements for API error messages.
const PasswordPolicy = formcheck.PasswordPolicy

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

// IsValidUsername reports whether s is 3 to 50 letters, digits, dots,
// dashes or underscores.
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// Register adds the auth tags to val.
func Register(val *validator.Validator) error {
	return val.RegisterValidation(TagUsername, func(fl govalidator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
}
