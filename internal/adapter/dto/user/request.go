package user

// CreateUserRequest registers a user by email and password
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenRequest asks for a development token
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
}
