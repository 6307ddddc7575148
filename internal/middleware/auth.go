package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthGuard rejects requests without a live bearer token and attaches the
// resolved user and raw token to the request.
func AuthGuard(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := stripToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return customErrors.AuthenticationNoToken
		}

		user, err := authenticator.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		auth.Attach(c, user, token)
		return c.Next()
	}
}

func stripToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
