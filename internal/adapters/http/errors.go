package http

import (
	"context"
	"errors"
	"net"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/echoadmin/internal/adapters/upstream"
	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
	// Upload is the session state when an upload failed.
	Upload *domain.UploadSnapshot `json:"upload,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return c.Status(status).JSON(apiError(c, status, code, message))
}

func apiError(c *fiber.Ctx, status int, code, message string) APIError {
	reqID := RequestIDFromCtx(c.UserContext())
	if reqID == "" {
		reqID, _ = c.Locals("requestid").(string)
	}
	return APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	}
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errBadGateway returns a 502 error.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "bad_gateway", msg)
}

// errTooLarge returns a 413 error.
func errTooLarge(c *fiber.Ctx, msg string) error {
	return newError(c, 413, "payload_too_large", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "service_unavailable", msg)
}

// errFrom maps a service error onto the response taxonomy.
func errFrom(c *fiber.Ctx, err error) error {
	status, code, msg := classify(err)
	logServerError(c, status, err)
	return newError(c, status, code, msg)
}

func logServerError(c *fiber.Ctx, status int, err error) {
	if status >= 500 {
		LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "status", status, "error", err)
	}
}

func classify(err error) (int, string, string) {
	var (
		verr   *domain.ValidationError
		terr   *domain.TransferError
		serr   *upstream.StatusError
		netErr net.Error
	)
	switch {
	case errors.As(err, &verr):
		return 400, "bad_request", verr.Error()
	case errors.Is(err, domain.ErrNotFound):
		return 404, "not_found", "resource not found"
	case errors.Is(err, domain.ErrSessionBusy), errors.Is(err, domain.ErrSessionCompleted):
		return 409, "conflict", err.Error()
	case errors.Is(err, domain.ErrUploadCancelled):
		return 409, "cancelled", domain.ErrUploadCancelled.Error()
	case errors.Is(err, usecases.ErrAuditDisabled):
		return 503, "service_unavailable", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return 504, "timeout", "upstream request timed out"
	case errors.As(err, &terr):
		return 502, "upload_failed", terr.Message
	case errors.As(err, &serr):
		if serr.Status == 401 || serr.Status == 403 {
			return 502, "upstream_unauthorized", "upstream rejected the service credentials"
		}
		msg := serr.Message
		if msg == "" {
			msg = "upstream request failed"
		}
		return 502, "bad_gateway", msg
	case errors.As(err, &netErr):
		return 502, "bad_gateway", "upstream unreachable"
	}
	return 500, "internal_error", err.Error()
}
