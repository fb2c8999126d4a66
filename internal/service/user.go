package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yosefkovan/storefront/internal/auth"
	"github.com/yosefkovan/storefront/internal/domain"
	"github.com/yosefkovan/storefront/internal/event"
	"github.com/yosefkovan/storefront/internal/repository"
	apperrors "github.com/yosefkovan/storefront/pkg/errors"
)

// bcryptCost is the work factor used for password hashing.
const bcryptCost = 12

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginInput holds the parameters for authenticating.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// UserService implements the business logic for accounts and authentication.
type UserService struct {
	users    repository.UserRepository
	jwt      *auth.JWTManager
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, jwt *auth.JWTManager, producer *event.Producer, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		jwt:      jwt,
		producer: producer,
		logger:   logger,
	}
}

// Register creates a new account with role "user". Username and email
// collisions surface as a conflict.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Password != input.ConfirmPassword {
		return nil, apperrors.InvalidInput("passwords do not match")
	}
	if err := checkPasswordPolicy(input.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict("username or email already in use")
		}
		return nil, err
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the password and issues a JWT access token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{
		AccessToken: token,
		User:        user,
	}, nil
}

// Exists reports whether a username or email is already taken, for the
// registration form.
func (s *UserService) Exists(ctx context.Context, username, email string) (bool, error) {
	if username == "" && email == "" {
		return false, apperrors.InvalidInput("username or email is required")
	}

	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// GetByID retrieves an account.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// EnsureAdmin seeds the default admin account if it does not exist yet.
// Called once at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	exists, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, admin); err != nil {
		// A concurrent replica may have seeded it first.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create admin account: %w", err)
	}

	s.logger.InfoContext(ctx, "default admin account created",
		slog.String("username", username),
	)

	return nil
}

// checkPasswordPolicy requires at least 8 characters with an upper-case
// letter, a lower-case letter, and a digit.
func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain upper-case, lower-case, and digit characters")
	}
	return nil
}
