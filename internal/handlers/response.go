package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/internal/utils/validator"
)

// Respond writes a success envelope.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(model.Envelope{
		StatusCode: status,
		Success:    true,
		Message:    message,
		Data:       data,
	})
}

func OK(c *fiber.Ctx, message string, data any) error {
	return Respond(c, fiber.StatusOK, message, data)
}

func Created(c *fiber.Ctx, message string, data any) error {
	return Respond(c, fiber.StatusCreated, message, data)
}

// Bind decodes the body (JSON or form) into dst and validates it.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return customErrors.Validation("Invalid request body")
	}
	return validator.Struct(dst)
}

// Page reads page/limit query params with defaults applied.
func Page(c *fiber.Ctx) model.PageQuery {
	return model.NewPageQuery(c.QueryInt("page", model.DefaultPage), c.QueryInt("limit", model.DefaultLimit))
}

// QueryBool returns nil when key is absent or not a boolean.
func QueryBool(c *fiber.Ctx, key string) *bool {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
