package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/errors"
	userDTO "github.com/johnquangdev/meeting-notes/internal/adapter/dto/user"
	"github.com/johnquangdev/meeting-notes/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-notes/internal/usecase/user"
)

// UserService is the user use case consumed by the handler
type UserService interface {
	Register(ctx context.Context, email, password string) (*user.AuthResult, error)
	IssueDevToken(ctx context.Context, username string) (string, error)
}

// User handles registration and token issuance
type User struct {
	service UserService
	logger  *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service UserService, logger *zap.Logger) *User {
	return &User{service: service, logger: logger}
}

// CreateUser godoc
// @Summary      Register a user
// @Description  Creates the user, or refreshes the name of an existing one, and returns a bearer token
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request  body      userDTO.CreateUserRequest   true  "Credentials"
// @Success      201      {object}  userDTO.CreateUserResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /users [post]
func (h *User) CreateUser(c echo.Context) error {
	var req userDTO.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("email and password required"))
	}

	res, err := h.service.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, presenter.ToCreateUserResponse(res))
}

// IssueToken godoc
// @Summary      Issue a development token
// @Description  Signs a token for username@example.com, creating that user when needed. Not mounted in production; refused for registered accounts.
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        request  body      userDTO.TokenRequest   true  "Username"
// @Success      200      {object}  userDTO.TokenResponse
// @Failure      400      {object}  common.ErrorResponse
// @Failure      403      {object}  common.ErrorResponse
// @Failure      500      {object}  common.ErrorResponse
// @Router       /token [post]
func (h *User) IssueToken(c echo.Context) error {
	var req userDTO.TokenRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("username required"))
	}

	token, err := h.service.IssueDevToken(c.Request().Context(), req.Username)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, userDTO.TokenResponse{Token: token})
}
