package formcheck

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minPasswordLength = 8

var (
	emailShape      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	emailDoubleDots = regexp.MustCompile(`@.*\.\.`)
)

// PasswordPolicy describes the password rule for API error messages.
const PasswordPolicy = "Password must be at least 8 characters and include an uppercase letter, a lowercase letter and a number"

// IsValidEmail accepts a local@domain.tld shape with no whitespace and no
// consecutive dots after the @.
func IsValidEmail(email string) bool {
	if email == "" || strings.IndexFunc(email, isEmailSpace) >= 0 {
		return false
	}
	return emailShape.MatchString(email) && !emailDoubleDots.MatchString(email)
}

// isEmailSpace matches Unicode white space and the byte order mark. The
// regexp \s class is ASCII only.
func isEmailSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// IsValidPassword requires at least 8 characters with one lowercase
// letter, one uppercase letter and one digit. Letters and digits are ASCII.
func IsValidPassword(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return false
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}
