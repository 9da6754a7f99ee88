package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/report-service/internal/domain"
	"github.com/spec-kit/report-service/internal/repository"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

const principalKey = "auth_principal"

// MsgLoginRequired is the uniform message for requests lacking a live session.
const MsgLoginRequired = "Please login first!"

// Principal represents the authenticated caller. User is loaded fresh from
// the credential store on each request, so the role is never stale.
type Principal struct {
	Session *Session
	User    *domain.User
}

// AuthMiddleware validates session cookies and loads principals.
type AuthMiddleware struct {
	sessions   *SessionManager
	users      repository.UserRepository
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionManager, users repository.UserRepository, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		return apperrors.NewUnauthenticated(MsgLoginRequired)
	}

	session, err := m.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return apperrors.NewUnauthenticated(MsgLoginRequired)
		}
		return apperrors.MapError(err)
	}

	user, err := m.users.GetByID(c.UserContext(), session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated(MsgLoginRequired)
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Session: session, User: user})
	return c.Next()
}

// CookieName returns the configured session cookie name.
func (m *AuthMiddleware) CookieName() string {
	return m.cookieName
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
