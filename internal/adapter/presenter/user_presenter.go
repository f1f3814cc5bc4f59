package presenter

import (
	userDTO "github.com/johnquangdev/meeting-notes/internal/adapter/dto/user"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/internal/usecase/user"
)

// ToUserResponse converts a User entity to UserResponse DTO
func ToUserResponse(u *entities.User) *userDTO.UserResponse {
	if u == nil {
		return nil
	}
	return &userDTO.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToCreateUserResponse converts a registration result to its DTO
func ToCreateUserResponse(res *user.AuthResult) *userDTO.CreateUserResponse {
	if res == nil {
		return nil
	}
	return &userDTO.CreateUserResponse{
		User:  ToUserResponse(res.User),
		Token: res.Token,
	}
}
