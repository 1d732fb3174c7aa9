package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cargoconnect/internal/http/middleware"
	"cargoconnect/internal/lifecycle"
	"cargoconnect/internal/registry"
	"cargoconnect/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// translateError maps engine errors onto the standardized envelope. Illegal
// transitions keep their message so a stale client can see both states.
func translateError(c *fiber.Ctx, err error) error {
	var illegal *lifecycle.IllegalTransitionError
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrDuplicateActiveDocument):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_DOCUMENT", "an active document of this type already exists; resubmit instead")
	case errors.As(err, &illegal):
		return writeError(c, fiber.StatusConflict, "ILLEGAL_TRANSITION", illegal.Error())
	case errors.Is(err, registry.ErrUnknownJurisdiction):
		return writeError(c, fiber.StatusUnprocessableEntity, "UNKNOWN_JURISDICTION", "jurisdiction is not configured")
	case errors.Is(err, service.ErrReasonRequired):
		return writeError(c, fiber.StatusBadRequest, "REASON_REQUIRED", "a rejection reason is required")
	case errors.Is(err, service.ErrNoFile):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_ATTACHED", "document has no file attached")
	case errors.Is(err, service.ErrStaleDocument):
		return writeError(c, fiber.StatusConflict, "STALE_DOCUMENT", "document changed concurrently, reload and retry")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
