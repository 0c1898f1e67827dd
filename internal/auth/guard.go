package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/todo-service/pkg/util"
)

// Authorize allows a subject to act only on resources it owns. Plain equality,
// no roles, no delegation.
func Authorize(subjectID, ownerID int64) error {
	if subjectID != ownerID {
		return ErrForbidden
	}
	return nil
}

// RequireOwner returns a handler that compares the authenticated subject
// against the owner id taken from the named route parameter. The owner id is
// read from the path only, never from the request body, and the guard runs
// before any handler or repository code, so an unauthorized caller never
// triggers a lookup of someone else's data.
func RequireOwner(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := SubjectFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Missing authentication token")
		}

		ownerID, err := strconv.ParseInt(c.Params(param), 10, 64)
		if err != nil || ownerID <= 0 {
			return apperrors.NewValidationError("invalid user id in path", nil)
		}

		if err := Authorize(subjectID, ownerID); err != nil {
			return apperrors.NewForbidden("You can only access your own resources")
		}
		return c.Next()
	}
}
