package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth/service"
	"github.com/mambasports/team-service/internal/upload"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	storage     *upload.Storage
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, storage *upload.Storage, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, storage: storage, log: log}
}

// RegisterRoutes mounts /api/auth. limited wraps every endpoint that takes a
// password or a code; guard protects the session endpoints.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, guard, limited fiber.Handler) {
	r := router.Group("/auth")

	r.Post("/register", limited, h.Register)
	r.Post("/verify-otp", limited, h.VerifyOTP)
	r.Post("/resend-otp", limited, h.ResendOTP)
	r.Post("/login", limited, h.Login)
	r.Post("/forgot-password", limited, h.ForgotPassword)
	r.Post("/verify-reset-otp", limited, h.VerifyResetOTP)
	r.Post("/reset-password", limited, h.ResetPassword)

	r.Get("/profile", guard, h.Profile)
	r.Post("/logout", guard, h.Logout)
}
