package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moztech/fiscal-mz/internal/application/compliance"
	"github.com/moztech/fiscal-mz/internal/application/dto"
)

// ValidationHandler answers the public QR validation endpoint. No
// authentication: the HMAC hash in the URL is the credential.
type ValidationHandler struct {
	validationSvc *compliance.ValidationService
	enabled       bool
}

// NewValidationHandler builds the handler.
func NewValidationHandler(validationSvc *compliance.ValidationService, enabled bool) *ValidationHandler {
	return &ValidationHandler{validationSvc: validationSvc, enabled: enabled}
}

// Validate checks a document hash and returns the public summary.
// GET /validate?doctype=&name=&hash=
func (h *ValidationHandler) Validate(c *fiber.Ctx) error {
	if !h.enabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ValidateResponse{
			Valid: false, Message: "Validação não configurada",
		})
	}
	resp := h.validationSvc.Validate(
		c.Context(),
		c.Query("doctype"),
		c.Query("name"),
		c.Query("hash"),
	)
	// Always 200: the body carries the verdict, never the status code.
	return c.JSON(resp)
}
