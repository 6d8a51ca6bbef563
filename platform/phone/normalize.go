// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country code.
const DefaultRegion = "GB"

// NormalizeE164 formats a phone number to E.164. If parsing fails, it
// returns the trimmed input.
func NormalizeE164(input string) string {
	if formatted, ok := ParseE164(input); ok {
		return formatted
	}
	return strings.TrimSpace(input)
}

// ParseE164 parses input as a UK-default phone number and reports whether
// it is a valid number.
func ParseE164(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	number, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}

	return phonenumbers.Format(number, phonenumbers.E164), true
}
