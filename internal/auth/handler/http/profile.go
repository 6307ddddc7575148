package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/handlers"
)

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	currentUser := auth.CurrentUser(c)
	if currentUser == nil {
		return customErrors.AuthenticationNoToken
	}

	user, err := h.authService.Profile(c.UserContext(), currentUser.ID)
	if err != nil {
		return err
	}
	return handlers.OK(c, "Profile fetched successfully", user)
}
