package product

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/handlers"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	r := router.Group("/products")

	r.Get("/", h.List)
	r.Post("/addproduct", guard, h.Add)
	r.Put("/:id", guard, h.Update)
	r.Delete("/:id", guard, h.Delete)
}

func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.UserContext(), Filter{
		UserID: c.Query("user"),
		Search: c.Query("search"),
		Page:   handlers.Page(c),
	})
	if err != nil {
		return err
	}
	return handlers.OK(c, "Products fetched successfully", page)
}

func (h *Handler) Add(c *fiber.Ctx) error {
	var input Input
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}
	p, err := h.service.Add(c.UserContext(), auth.CurrentUser(c), input)
	if err != nil {
		return err
	}
	return handlers.Created(c, "Product added successfully", p)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var input Input
	if err := handlers.Bind(c, &input); err != nil {
		return err
	}
	p, err := h.service.Update(c.UserContext(), auth.CurrentUser(c), c.Params("id"), input)
	if err != nil {
		return err
	}
	return handlers.OK(c, "Product updated successfully", p)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), auth.CurrentUser(c), c.Params("id")); err != nil {
		return err
	}
	return handlers.OK(c, "Product deleted successfully", nil)
}
