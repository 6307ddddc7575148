package blog

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

func (h *Handler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	r := router.Group("/blogs")

	r.Get("/", h.List)
	r.Get("/user/blogs", guard, h.UserBlogs)
	r.Get("/:id", h.Get)
	r.Post("/", guard, h.Create)
	r.Put("/:id", guard, h.Update)
	r.Delete("/:id", guard, h.Delete)
	r.Post("/:id/like", guard, h.ToggleLike)
	r.Post("/:id/comment", guard, h.AddComment)
}

// discard removes an uploaded file that ended up unused.
func (h *Handler) discard(p *string) {
	if p == nil {
		return
	}
	if err := h.storage.Remove(*p); err != nil {
		h.log.Warn("failed to remove upload", zap.String("path", *p), zap.Error(err))
	}
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), model.BlogFilter{
		Status:   model.BlogStatus(c.Query("status")),
		AuthorID: c.Query("author"),
		Search:   c.Query("search"),
		Page:     handlers.Page(c),
	})
	if err != nil {
		return err
	}
	return handlers.OK(c, "Blogs fetched successfully", page)
}

func (h *Handler) UserBlogs(c *fiber.Ctx) error {
	page, err := h.service.UserBlogs(c.UserContext(), auth.CurrentUser(c), model.BlogStatus(c.Query("status")), handlers.Page(c))
	if err != nil {
		return err
	}
	return handlers.OK(c, "Blogs fetched successfully", page)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	b, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return handlers.OK(c, "Blog fetched successfully", b)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var input CreateInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	thumbnail, err := h.storage.FromForm(c, "thumbnail", upload.BlogThumbnail)
	if err != nil {
		return err
	}

	b, err := h.service.Create(c.UserContext(), auth.CurrentUser(c), input, thumbnail)
	if err != nil {
		h.discard(thumbnail)
		return err
	}
	return handlers.Created(c, "Blog created successfully", b)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var input UpdateInput
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}

	thumbnail, err := h.storage.FromForm(c, "thumbnail", upload.BlogThumbnail)
	if err != nil {
		return err
	}

	b, replaced, err := h.service.Update(c.UserContext(), auth.CurrentUser(c), c.Params("id"), input, thumbnail)
	if err != nil {
		h.discard(thumbnail)
		return err
	}
	h.discard(replaced)
	return handlers.OK(c, "Blog updated successfully", b)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	thumbnail, err := h.service.Delete(c.UserContext(), auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	h.discard(thumbnail)
	return handlers.OK(c, "Blog deleted successfully", nil)
}

func (h *Handler) ToggleLike(c *fiber.Ctx) error {
	res, err := h.service.ToggleLike(c.UserContext(), auth.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	msg := "Blog unliked"
	if res.Liked {
		msg = "Blog liked"
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
