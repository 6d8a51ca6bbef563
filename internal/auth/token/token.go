// Package token signs the access tokens checked by httpkit.AuthRequired.
package token

import (
	"errors"
	"time"

	"chalkstone_backend/platform/httpkit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SignAccessToken issues an HS256 access token for userID.
func SignAccessToken(secret string, userID uuid.UUID, roles []string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	if roles == nil {
		roles = []string{}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  httpkit.TokenTypeAccess,
		"roles": roles,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(secret))
}

// RolesForUserType maps an account type to token roles.
func RolesForUserType(userType string) []string {
	if userType == httpkit.RoleStaff {
		return []string{httpkit.RoleStaff}
	}
	return []string{httpkit.RolePublic}
}
