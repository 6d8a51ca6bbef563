package main

import (
	"bytes"
	"strings"
	"testing"

	"chalkstone_backend/platform/httpkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	id := uuid.New()
	out, err := runCmd(t, "token", "--type", "staff", "--id", id.String(), "--secret", "s3cret")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	gotID, roles, err := httpkit.ParseAccessToken(lines[1], "s3cret")
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, []string{httpkit.RoleStaff}, roles)
}

func TestTokenCommandRejectsBadInput(t *testing.T) {
	_, err := runCmd(t, "token", "--type", "admin", "--secret", "x")
	assert.ErrorContains(t, err, "invalid user type")

	_, err = runCmd(t, "token", "--id", "test-user", "--secret", "x")
	assert.ErrorContains(t, err, "invalid user id")
}

func TestSeedEngineersMissingFile(t *testing.T) {
	_, err := runCmd(t, "seed", "engineers", "--file", "does-not-exist.yaml")
	assert.ErrorContains(t, err, "open seed file")
}
