package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/satyaranjan2005/Taskmanager-backend/internal/repository"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/apperr"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/events"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/token"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/utils"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/validation"
)

const minPasswordLength = 6

// UserCommandService writes user state to the store and invalidates the
// Redis read model after each write.
type UserCommandService struct {
	store     repository.UserStore
	readRepo  *repository.UserReadRepository
	hasher    *utils.PasswordHasher
	tokens    *token.Manager
	publisher *events.Publisher
	now       func() time.Time
}

func NewUserCommandService(
	store repository.UserStore,
	readRepo *repository.UserReadRepository,
	hasher *utils.PasswordHasher,
	tokens *token.Manager,
	publisher *events.Publisher,
) *UserCommandService {
	return &UserCommandService{
		store:     store,
		readRepo:  readRepo,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
		now:       utcNow,
	}
}

// Signup registers a new account and signs the caller in.
func (s *UserCommandService) Signup(ctx context.Context, cmd cqrs.SignupCommand) (*models.AuthResult, error) {
	cmd.Email = utils.NormalizeEmail(cmd.Email)
	if errs := validation.Struct(cmd); errs != nil {
		switch {
		case validation.HasTag(errs, "required"):
			return nil, apperr.Validation("Email and password are required")
		case validation.HasTag(errs, "mailbox"):
			return nil, apperr.Validation("Please enter a valid email address")
		default:
			return nil, apperr.Validation("Password must be at least 6 characters long")
		}
	}

	passwordHash, err := s.hasher.HashPassword(cmd.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	now := s.now()
	user := &models.User{
		ID:           utils.GenerateID("usr"),
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Conflict("User already exists with this email")
		}
		return nil, apperr.Internal(err)
	}

	signed, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	view := user.View()
	s.readRepo.InvalidateUserView(ctx, user.ID)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserCreated, events.UserCreatedEvent{
		UserID: user.ID,
		Email:  user.Email,
	}); err != nil {
		log.Printf("Failed to publish user.created event: %v", err)
	}
	return &models.AuthResult{Token: signed, User: view.AuthUser()}, nil
}

// UpdateProfile changes the caller's email. An empty email leaves the
// profile untouched and returns it as is.
func (s *UserCommandService) UpdateProfile(ctx context.Context, cmd cqrs.UpdateProfileCommand) (*models.UserView, error) {
	email := utils.NormalizeEmail(cmd.Email)
	if email == "" {
		user, err := s.store.GetByID(ctx, cmd.UserID)
		if err != nil {
			return nil, userError(err)
		}
		return user.View(), nil
	}
	if !validation.IsEmail(email) {
		return nil, apperr.Validation("Please enter a valid email address")
	}

	taken, err := s.store.EmailTaken(ctx, email, cmd.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if taken {
		return nil, apperr.Conflict("Email already taken")
	}
	if err := s.store.UpdateEmail(ctx, cmd.UserID, email, s.now()); err != nil {
		return nil, userError(err)
	}

	s.readRepo.InvalidateUserView(ctx, cmd.UserID)

	user, err := s.store.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, userError(err)
	}
	view := user.View()
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserUpdated, events.UserUpdatedEvent{
		UserID: user.ID,
		Email:  user.Email,
	}); err != nil {
		log.Printf("Failed to publish user.updated event: %v", err)
	}
	return view, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *UserCommandService) ChangePassword(ctx context.Context, cmd cqrs.ChangePasswordCommand) error {
	if errs := validation.Struct(cmd); errs != nil {
		return apperr.Validation("Current password and new password are required")
	}
	if len(cmd.NewPassword) < minPasswordLength {
		return apperr.Validation("Password must be at least 6 characters long")
	}

	user, err := s.store.GetByID(ctx, cmd.UserID)
	if err != nil {
		return userError(err)
	}
	if !s.hasher.CheckPassword(cmd.CurrentPassword, user.PasswordHash) {
		return apperr.Auth("Current password is incorrect")
	}

	passwordHash, err := s.hasher.HashPassword(cmd.NewPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to hash password: %w", err))
	}
	user.UpdatedAt = s.now()
	if err := s.store.UpdatePassword(ctx, user.ID, passwordHash, user.UpdatedAt); err != nil {
		return userError(err)
	}

	s.readRepo.InvalidateUserView(ctx, user.ID)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserPasswordChanged, events.UserPasswordChangedEvent{
		UserID: user.ID,
	}); err != nil {
		log.Printf("Failed to publish user.password_changed event: %v", err)
	}
	return nil
}

func userError(err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, repository.ErrEmailExists):
		return apperr.Conflict("Email already taken")
	default:
		return apperr.Internal(err)
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}
