package users

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/handlers"
	"github.com/mambasports/team-service/internal/upload"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	storage *upload.Storage
	log     *zap.Logger
}

func NewHandler(service *Service, storage *upload.Storage, log *zap.Logger) *Handler {
	return &Handler{service: service, storage: storage, log: log}
}

func (h *Handler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	r := router.Group("/users", guard)

	r.Get("/allUser", h.List)
	r.Delete("/delete/:userId", h.Delete)
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), ListQuery{
		Role:       c.Query("role"),
		IsActive:   handlers.QueryBool(c, "isActive"),
		SearchText: c.Query("searchText"),
		Page:       handlers.Page(c),
	})
	if err != nil {
		return err
	}
	return handlers.OK(c, "Users fetched successfully", page)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	deleted, err := h.service.Delete(c.UserContext(), auth.CurrentUser(c), c.Params("userId"))
	if err != nil {
		return err
	}
	for _, path := range deleted.Files {
		if err := h.storage.Remove(path); err != nil {
			h.log.Warn("failed to remove user file", zap.String("path", path), zap.Error(err))
		}
	}
	return handlers.OK(c, deletedMessage(deleted.User), nil)
}
