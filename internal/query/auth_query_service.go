package query

import (
	"context"
	"errors"

	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/apperr"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/token"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/validation"
)

// AuthQueryService handles login and token verification. There's no
// CommandService for these because they don't mutate application state.
type AuthQueryService struct {
	users    repository.UserStore
	readRepo *repository.UserReadRepository
	hasher   *utils.PasswordHasher
	tokens   *token.Manager
}

func NewAuthQueryService(
	users repository.UserStore,
	readRepo *repository.UserReadRepository,
	hasher *utils.PasswordHasher,
	tokens *token.Manager,
) *AuthQueryService {
	return &AuthQueryService{users: users, readRepo: readRepo, hasher: hasher, tokens: tokens}
}

// Login answers unknown emails and wrong passwords with the same error.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*models.AuthResult, error) {
	if errs := validation.Struct(cmd); errs != nil {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(cmd.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Auth("Invalid credentials")
		}
		return nil, apperr.Internal(err)
	}
	if !s.hasher.CheckPassword(cmd.Password, user.PasswordHash) {
		return nil, apperr.Auth("Invalid credentials")
	}

	signed, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &models.AuthResult{Token: signed, User: user.View().AuthUser()}, nil
}

// Verify resolves a session token to the user it was issued for.
func (s *AuthQueryService) Verify(ctx context.Context, q cqrs.VerifyTokenQuery) (*models.UserView, error) {
	if q.Token == "" {
		return nil, apperr.Auth("No token provided")
	}
	claims, err := s.tokens.Parse(q.Token)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindAuth, Message: "Invalid token", Err: err}
	}
	if !utils.ValidateUserID(claims.UserID) {
		return nil, apperr.Auth("Invalid token")
	}

	view, err := s.readRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.Auth("Invalid token")
		}
		return nil, apperr.Internal(err)
	}
	return view, nil
}
