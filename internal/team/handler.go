package team

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/handlers"
	"github.com/mambasports/team-service/internal/model"
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

// RegisterRoutes mounts /teams; every route requires a bearer token.
func (h *Handler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	r := router.Group("/teams", guard)

	r.Get("/", h.List)
	r.Post("/addteam", h.Create)
	r.Put("/status/:teamId", h.ToggleStatus)
	r.Get("/:teamId", h.Get)
	r.Put("/:teamId", h.Update)
	r.Delete("/:teamId", h.Delete)
}

func (h *Handler) discard(p *string) {
	if p == nil {
		return
	}
	if err := h.storage.Remove(*p); err != nil {
		h.log.Warn("failed to remove upload", zap.String("path", *p), zap.Error(err))
	}
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), auth.CurrentUser(c), model.TeamFilter{
		SearchText: c.Query("searchText"),
		IsActive:   handlers.QueryBool(c, "isActive"),
		Page:       handlers.Page(c),
	})
	if err != nil {
		return err
	}
	return handlers.OK(c, "Teams fetched successfully", page)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	t, err := h.service.Get(c.UserContext(), auth.CurrentUser(c), c.Params("teamId"))
	if err != nil {
		return err
	}
	return handlers.OK(c, "Team fetched successfully", t)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var input CreateInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	photo, err := h.storage.FromForm(c, "photo", upload.TeamPhoto)
	if err != nil {
		return err
	}

	t, err := h.service.Create(c.UserContext(), auth.CurrentUser(c), input, photo)
	if err != nil {
		h.discard(photo)
		return err
	}
	return handlers.Created(c, "Team created successfully", t)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var input UpdateInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	photo, err := h.storage.FromForm(c, "photo", upload.TeamPhoto)
	if err != nil {
		return err
	}

	t, replaced, err := h.service.Update(c.UserContext(), auth.CurrentUser(c), c.Params("teamId"), input, photo)
	if err != nil {
		h.discard(photo)
		return err
	}
	h.discard(replaced)
	return handlers.OK(c, "Team updated successfully", t)
}

func (h *Handler) ToggleStatus(c *fiber.Ctx) error {
	res, err := h.service.ToggleStatus(c.UserContext(), auth.CurrentUser(c), c.Params("teamId"))
	if err != nil {
		return err
	}
	msg := "Team deactivated successfully"
	if res.IsActive {
		msg = "Team activated successfully"
	}
	return handlers.OK(c, msg, res)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	photo, err := h.service.Delete(c.UserContext(), auth.CurrentUser(c), c.Params("teamId"))
	if err != nil {
		return err
	}
	h.discard(photo)
	return handlers.OK(c, "Team deleted successfully", nil)
}
