package user

import "time"

// UserResponse represents user information in responses. The password hash
// is never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUserResponse is returned after registration
type CreateUserResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// TokenResponse carries a signed bearer token
type TokenResponse struct {
	Token string `json:"token"`
}
