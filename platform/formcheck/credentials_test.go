package formcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"test@example.com",
		"test.name@example.co.uk",
		"test+label@example.com",
		"123456@example.com",
		"name-with-dash@example.com",
		"name_with_underscore@example.com",
		"a@b.c",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), email)
	}

	invalid := []string{
		"test",
		"test@",
		"@example.com",
		"test@example",
		"test@.com",
		"",
		"test@example..com",
		"test@exam ple.com",
		"test@@example.com",
		" test@example.com",
		"test@example.com ",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), "%q", email)
	}
}

func TestIsValidEmailRejectsUnicodeWhitespace(t *testing.T) {
	for _, email := range []string{
		"ab\v@example.com",
		"a\u00a0b@example.com",
		"a@exa\u2003mple.com",
		"a@example.c\u2028om",
		"a\u3000b@example.com",
		"\ufeffa@example.com",
		"a@example.com\u0085",
	} {
		assert.False(t, IsValidEmail(email), "%q", email)
	}
}

func TestIsValidPassword(t *testing.T) {
	valid := []string{
		"Password123",
		"Abc12345",
		"Complex1Password",
		"P@ssw0rd",
		"SuperSecret123",
		"CorrectHorseBatteryStaple1",
	}
	for _, pw := range valid {
		assert.True(t, IsValidPassword(pw), pw)
	}

	invalid := []string{
		"pass",
		"password",
		"PASSWORD123",
		"Password",
		"12345678",
		"",
		"abcdefgh",
		"ABCDEFGH",
		"Ab1",
	}
	for _, pw := range invalid {
		assert.False(t, IsValidPassword(pw), "%q", pw)
	}
}
