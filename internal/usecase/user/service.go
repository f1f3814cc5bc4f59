package user

import (
	"context"
	stdErrors "errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/internal/domain/repositories"
)

var errRegisteredAccount = errors.ErrForbidden("username belongs to a registered account")

// TokenIssuer signs access tokens for a user ID
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthResult is a stored user plus a freshly issued token
type AuthResult struct {
	User  *entities.User
	Token string
}

// Service handles user registration and token issuance
type Service struct {
	users    repositories.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
	hashCost int
}

// NewService creates a new user service
func NewService(users repositories.UserRepository, tokens TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register upserts a user keyed by email and returns it with a token. The
// display name is the local part of the email.
func (s *Service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.ErrInvalidArgument("email and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if stdErrors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, errors.ErrInvalidArgument("password is too long")
		}
		return nil, errors.ErrInternal(err)
	}

	u := entities.NewUser(email, string(hash), entities.DisplayNameFromEmail(email))
	if err := u.Validate(); err != nil {
		return nil, errors.ErrInvalidArgument(err.Error())
	}

	stored, err := s.users.Upsert(ctx, u)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("upsert_user", err)
	}

	token, err := s.tokens.Issue(stored.ID.String())
	if err != nil {
		return nil, errors.ErrInternal(err)
	}

	s.logger.Info("user registered", zap.String("user_id", stored.ID.String()))
	return &AuthResult{User: stored, Token: token}, nil
}

// IssueDevToken upserts the development user "<username>@example.com" and
// returns a token for it, so tokens always carry a real user ID. Addresses
// that belong to a registered account are refused.
func (s *Service) IssueDevToken(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.ErrInvalidArgument("username required")
	}

	u := entities.NewUser(entities.DevEmail(username), "", username)
	if err := u.Validate(); err != nil {
		return "", errors.ErrInvalidArgument(err.Error())
	}

	existing, err := s.users.FindByEmail(ctx, u.Email)
	switch {
	case err == nil && existing.HasPassword():
		return "", errRegisteredAccount
	case err != nil && !stdErrors.Is(err, entities.ErrUserNotFound):
		return "", errors.ErrDBQueryFailed("find_user", err)
	}

	stored, err := s.users.Upsert(ctx, u)
	if err != nil {
		return "", errors.ErrDBQueryFailed("upsert_user", err)
	}
	// registration may have won the race since the lookup
	if stored.HasPassword() {
		return "", errRegisteredAccount
	}

	token, err := s.tokens.Issue(stored.ID.String())
	if err != nil {
		return "", errors.ErrInternal(err)
	}
	return token, nil
}
