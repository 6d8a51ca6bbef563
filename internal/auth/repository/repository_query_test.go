package repository

import (
	"strings"
	"testing"
)

func TestUsernameLookupIsCaseInsensitive(t *testing.T) {
	query := strings.ToLower(getUserByUsernameQuery)
	if !strings.Contains(query, "lower(username) = lower($1)") {
		t.Fatalf("expected case-insensitive username match, got %q", query)
	}
}

func TestInsertReturnsAllColumns(t *testing.T) {
	if !strings.HasSuffix(strings.TrimSpace(insertUserQuery), userColumns) {
		t.Fatal("insert must return the columns scanUser expects")
	}
}
