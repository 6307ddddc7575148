package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal Server Error"

// ErrorHandler renders every error returned by a handler as the response
// envelope. Internal causes are logged and never echoed.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		env := model.Envelope{Success: false}

		var typedErr *customErrors.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &typedErr) && typedErr.ErrorType() != customErrors.ErrorTypeInternal:
			env.StatusCode = typedErr.ErrorType().HTTPStatus()
			env.Message = typedErr.Message
			env.Error = typedErr.Details
		case errors.As(err, &fiberErr):
			env.StatusCode = fiberErr.Code
			env.Message = fiberErr.Message
		default:
			log.Error("internal error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			env.StatusCode = fiber.StatusInternalServerError
			env.Message = internalErrorMessage
		}

		return c.Status(env.StatusCode).JSON(env)
	}
}
