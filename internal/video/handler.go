package video

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
	r := router.Group("/videos")

	r.Get("/", h.List)
	r.Get("/:id", h.Get)
	r.Post("/", guard, h.Create)
	r.Put("/:id", guard, h.Update)
	r.Delete("/:id", guard, h.Delete)
	r.Post("/:id/like", guard, h.ToggleLike)
	r.Post("/:id/comment", guard, h.AddComment)
}

func (h *Handler) discard(p string) {
	if err := h.storage.Remove(p); err != nil {
		h.log.Warn("failed to remove upload", zap.String("path", p), zap.Error(err))
	}
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), ListQuery{
		AuthorID:  c.Query("author"),
		Search:    c.Query("search"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Page:      handlers.Page(c),
	})
	if err != nil {
		return err
	}
	return handlers.OK(c, "Videos fetched successfully", page)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	v, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return handlers.OK(c, "Video fetched successfully", v)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var input CreateInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	stored, err := h.storage.FromForm(c, "video", upload.Video)
	if err != nil {
		return err
	}

	v, err := h.service.Create(c.UserContext(), auth.CurrentUser(c), input, stored)
	if err != nil {
		if stored != nil {
			h.discard(*stored)
		}
		return err
	}
	return handlers.Created(c, "Video created successfully", v)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var input UpdateInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	stored, err := h.storage.FromForm(c, "video", upload.Video)
	if err != nil {
		return err
	}

	v, replaced, err := h.service.Update(c.UserContext(), auth.CurrentUser(c), c.Params("id"), input, stored)
	if err != nil {
		if stored != nil {
			h.discard(*stored)
		}
		return err
	}
	if replaced != nil {
		h.discard(*replaced)
	}
	return handlers.OK(c, "Video updated successfully", v)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	p, err := h.service.Delete(c.UserContext(), auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	h.discard(p)
	return handlers.OK(c, "Video deleted successfully", nil)
}

func (h *Handler) ToggleLike(c *fiber.Ctx) error {
	res, err := h.service.ToggleLike(c.UserContext(), auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	msg := "Video unliked"
	if res.Liked {
		msg = "Video liked"
	}
	return handlers.OK(c, msg, res)
}

type commentInput struct {
	Content string `json:"content" form:"content"`
}

func (h *Handler) AddComment(c *fiber.Ctx) error {
	var input commentInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	comment, err := h.service.AddComment(c.UserContext(), auth.CurrentUser(c), c.Params("id"), input.Content)
	if err != nil {
		return err
	}
	return handlers.Created(c, "Comment added successfully", comment)
}
