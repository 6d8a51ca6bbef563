package transport

import "time"

// RegisterRequest creates a citizen or staff account.
type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,username"`
	Email       *string `json:"email" validate:"omitempty,councilemail"`
	Password    string  `json:"password" validate:"required,strongpassword"`
	IsStaff     bool    `json:"is_staff"`
	StaffSecret string  `json:"staff_secret"`
}

// LoginRequest signs in with username and password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	UserType  string    `json:"userType"`
	IsStaff   bool      `json:"isStaff"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse carries the access token of a signed-in account.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
