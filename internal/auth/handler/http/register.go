package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/handlers"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/internal/upload"
	"go.uber.org/zap"
)

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input model.RegisterInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	avatar, err := h.storage.FromForm(c, "avatar", upload.Avatar)
	if err != nil {
		return err
	}
	input.Avatar = avatar

	result, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		if avatar != nil {
			if rmErr := h.storage.Remove(*avatar); rmErr != nil {
				h.log.Warn("failed to remove avatar", zap.String("path", *avatar), zap.Error(rmErr))
			}
		}
		return err
	}
	return handlers.Created(c, "OTP sent to your email. Please verify to complete registration.", result)
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var input model.VerifyOTPInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	result, err := h.authService.VerifyOTP(c.UserContext(), input)
	if err != nil {
		return err
	}
	return handlers.OK(c, "Email verified successfully", result)
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var input model.EmailInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	if err := h.authService.ResendOTP(c.UserContext(), input.Email); err != nil {
		return err
	}
	return handlers.OK(c, "New OTP sent to your email", nil)
}
