package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/domain"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

func newAuthService(users *mockUserRepo) *AuthService {
	sessions := auth.NewSessionManager(auth.NewMemorySessionStore(), time.Hour)
	return NewAuthService(users, sessions, 4)
}

func TestRegisterValidationOrder(t *testing.T) {
	cases := []struct {
		name    string
		input   RegisterInput
		message string
	}{
		{
			name:    "missing fields",
			input:   RegisterInput{Username: "alice"},
			message: "Please fill in all required fields!",
		},
		{
			name: "bad email",
			input: RegisterInput{
				Username: "alice", Email: "not-an-email",
				Password: "secret1", ConfirmPassword: "secret1",
			},
			message: "Please enter a valid email address!",
		},
		{
			name: "bad phone",
			input: RegisterInput{
				Username: "alice", Email: "alice@example.com", Phone: "abc",
				Password: "secret1", ConfirmPassword: "secret1",
			},
			message: "Please enter a valid phone number!",
		},
		{
			name: "password mismatch",
			input: RegisterInput{
				Username: "alice", Email: "alice@example.com",
				Password: "secret1", ConfirmPassword: "secret2",
			},
			message: "Passwords do not match!",
		},
		{
			name: "short password",
			input: RegisterInput{
				Username: "alice", Email: "alice@example.com",
				Password: "abc", ConfirmPassword: "abc",
			},
			message: "Password must be at least 6 characters long!",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := new(mockUserRepo)
			err := newAuthService(users).Register(context.Background(), tc.input)

			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Equal(t, tc.message, domainErr.Message)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{ID: 1, Email: "alice@example.com"}, nil)

	err := newAuthService(users).Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Email already exists!", domainErr.Message)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, pgx.ErrNoRows)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 2, Username: "alice"}, nil)

	err := newAuthService(users).Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "Username already exists!", domainErr.Message)
}

func TestRegisterSuccess(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, pgx.ErrNoRows)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, pgx.ErrNoRows)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" &&
			u.Email == "alice@example.com" &&
			u.Role == domain.RoleUser &&
			u.Phone != nil && *u.Phone == "+15551234567" &&
			auth.ComparePassword(u.PasswordHash, "secret1") == nil
	})).Return(nil)

	err := newAuthService(users).Register(context.Background(), RegisterInput{
		Username: " alice ", Email: " alice@example.com ", Phone: "+15551234567",
		Password: "secret1", ConfirmPassword: "secret1",
	})

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestLoginFailureIsUniform(t *testing.T) {
	hash, err := auth.HashPassword("correct-password", 4)
	require.NoError(t, err)

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, pgx.ErrNoRows)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{ID: 1, Email: "alice@example.com", PasswordHash: hash}, nil)

	svc := newAuthService(users)

	_, _, unknownErr := svc.Login(context.Background(), "ghost@example.com", "whatever")
	_, _, wrongErr := svc.Login(context.Background(), "alice@example.com", "wrong-password")

	var unknownDomain, wrongDomain *apperrors.DomainError
	require.ErrorAs(t, unknownErr, &unknownDomain)
	require.ErrorAs(t, wrongErr, &wrongDomain)

	assert.Equal(t, MsgInvalidCredentials, unknownDomain.Message)
	assert.Equal(t, MsgInvalidCredentials, wrongDomain.Message)
	assert.Equal(t, unknownDomain.Code, wrongDomain.Code)
	assert.Equal(t, unknownDomain.HTTPStatus, wrongDomain.HTTPStatus)
}

func TestLoginIssuesResolvableSession(t *testing.T) {
	hash, err := auth.HashPassword("secret1", 4)
	require.NoError(t, err)

	users := new(mockUserRepo)
	users.On("GetByEmail", mock.Anything, "alice@example.com").
		Return(&domain.User{ID: 42, Username: "alice", Email: "alice@example.com", PasswordHash: hash}, nil)

	store := auth.NewMemorySessionStore()
	sessions := auth.NewSessionManager(store, time.Hour)
	svc := NewAuthService(users, sessions, 4)

	user, session, err := svc.Login(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	require.NotEmpty(t, session.Token)

	resolved, err := sessions.Resolve(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resolved.UserID)

	require.NoError(t, svc.Logout(context.Background(), session.Token))
	_, err = sessions.Resolve(context.Background(), session.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}
