package serverutils

import (
	"github.com/gofiber/fiber/v2"

	"construction-docs-be/internal/pkg/apperror"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:   fiber.StatusBadRequest,
	apperror.KindNotFound:     fiber.StatusNotFound,
	apperror.KindInvariant:    fiber.StatusConflict,
	apperror.KindPrecondition: fiber.StatusBadRequest,
	apperror.KindConflict:     fiber.StatusConflict,
	apperror.KindCollaborator: fiber.StatusBadGateway,
	apperror.KindInternal:     fiber.StatusInternalServerError,
}

// ErrorHandlerMiddleware converts service errors bubbling out of handlers
// into the JSON error envelope. Unknown errors become opaque 500s.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			status, known := kindStatus[appErr.Kind]
			if !known {
				status = fiber.StatusInternalServerError
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		}

		if fiberErr, ok := err.(*fiber.Error); ok {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
	}
}

// StatusForKind exposes the kind to status mapping for controllers that
// need to set the code themselves.
func StatusForKind(kind apperror.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}
