package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/handlers"
	"github.com/mambasports/team-service/internal/model"
)

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input model.LoginInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	result, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return handlers.OK(c, "Login successful", result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), auth.CurrentToken(c)); err != nil {
		return err
	}
	return handlers.OK(c, "Logout successful", nil)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var input model.EmailInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	email, err := h.authService.ForgotPassword(c.UserContext(), input.Email)
	if err != nil {
		return err
	}
	return handlers.OK(c, "Password reset OTP sent to your email", fiber.Map{"email": email})
}

func (h *AuthHandler) VerifyResetOTP(c *fiber.Ctx) error {
	var input model.VerifyOTPInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	if err := h.authService.VerifyPasswordResetOTP(c.UserContext(), input); err != nil {
		return err
	}
	return handlers.OK(c, "OTP verified successfully", fiber.Map{"email": input.Email})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var input model.ResetPasswordInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	result, err := h.authService.ResetPassword(c.UserContext(), input)
	if err != nil {
		return err
	}
	return handlers.OK(c, "Password reset successful", result)
}
