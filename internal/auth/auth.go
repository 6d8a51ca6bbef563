// Package auth provides authentication for citizens and council staff.
// This file defines the public API of the auth bounded context.
package auth

import "chalkstone_backend/internal/auth/repository"

// Account types accepted by the users table.
const (
	UserTypePublic = repository.UserTypePublic
	UserTypeStaff  = repository.UserTypeStaff
)
