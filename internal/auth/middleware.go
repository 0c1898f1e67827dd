package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/todo-service/pkg/util"
)

const subjectKey = "auth_subject"

// AuthMiddleware runs the credential pipeline for protected routes: header
// present, Bearer prefix, structural decode, signature and expiry
// verification, identity extraction. The stages are strictly ordered and the
// first failure short-circuits the request.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware around a token manager.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication and stores the verified subject id in the
// request locals for the ownership guard and handlers downstream.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("Missing authentication token")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("Invalid token format")
	}
	raw := parts[1]

	if _, err := DecodeToken(raw); err != nil {
		return MapAuthError(err)
	}

	claims, err := m.tokens.Verify(raw)
	if err != nil {
		return MapAuthError(err)
	}

	subjectID, err := ExtractUserID(claims)
	if err != nil {
		return MapAuthError(err)
	}

	c.Locals(subjectKey, subjectID)
	return c.Next()
}

// SubjectFromContext retrieves the authenticated subject id.
func SubjectFromContext(c *fiber.Ctx) (int64, bool) {
	val := c.Locals(subjectKey)
	if val == nil {
		return 0, false
	}
	id, ok := val.(int64)
	return id, ok
}

// MapAuthError converts a taxonomy error into the fixed HTTP response for it.
// Messages are deliberately generic; nothing about claim contents, resource
// existence, or the secret ever leaks through them.
func MapAuthError(err error) error {
	switch {
	case errors.Is(err, ErrMissingToken):
		return apperrors.NewUnauthorized("Missing authentication token")
	case errors.Is(err, ErrMalformedToken):
		return apperrors.NewUnauthorized("Invalid token format")
	case errors.Is(err, ErrTokenExpired):
		return apperrors.NewUnauthorized("Token expired")
	case errors.Is(err, ErrMissingClaim), errors.Is(err, ErrInvalidClaimType):
		return apperrors.NewUnauthorized("Invalid token claims")
	case errors.Is(err, ErrForbidden):
		return apperrors.NewForbidden("You can only access your own resources")
	default:
		// ErrInvalidSignature and ErrUnsupportedAlgorithm share one message.
		return apperrors.NewUnauthorized("Invalid token signature")
	}
}
