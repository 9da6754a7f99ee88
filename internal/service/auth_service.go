package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/repository"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// MsgInvalidCredentials is the single failure message for login. Unknown
// email and wrong password must be indistinguishable to the caller.
const MsgInvalidCredentials = "Invalid email or password!"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// AuthService coordinates registration, login and logout.
type AuthService struct {
	users      repository.UserRepository
	sessions   *auth.SessionManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(users repository.UserRepository, sessions *auth.SessionManager, bcryptCost int) *AuthService {
	return &AuthService{users: users, sessions: sessions, bcryptCost: bcryptCost}
}

// Register validates the input and creates an account. Validation rules are
// applied in order; the first failing rule decides the returned message and
// nothing is written on failure.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)

	if username == "" || email == "" || input.Password == "" || input.ConfirmPassword == "" {
		return apperrors.NewValidationError("Please fill in all required fields!")
	}
	if !emailPattern.MatchString(email) {
		return apperrors.NewValidationError("Please enter a valid email address!")
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return apperrors.NewValidationError("Please enter a valid phone number!")
	}
	if input.Password != input.ConfirmPassword {
		return apperrors.NewValidationError("Passwords do not match!")
	}
	if len(input.Password) < 6 {
		return apperrors.NewValidationError("Password must be at least 6 characters long!")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewValidationError("Email already exists!")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperrors.NewValidationError("Username already exists!")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if phone != "" {
		user.Phone = &phone
	}
	if err := s.users.Create(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// Login authenticates by email and password and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *auth.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthenticated(MsgInvalidCredentials)
		}
		return nil, nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthenticated(MsgInvalidCredentials)
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, session, nil
}

// Logout revokes the session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListUsers returns all accounts, newest first. Admin surface only.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
