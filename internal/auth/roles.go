package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/report-service/pkg/util"
)

// RequireAdmin gates privileged routes. The role check runs against the user
// record loaded this request, not against anything cached at login time.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated(MsgLoginRequired)
		}
		if !principal.User.IsAdmin() {
			return apperrors.NewForbidden("Unauthorized!")
		}
		return c.Next()
	}
}
