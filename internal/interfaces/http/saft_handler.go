package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/moztech/fiscal-mz/internal/application/compliance"
	"github.com/moztech/fiscal-mz/internal/application/dto"
	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
)

// SAFTHandler handles audit file generation and transmission (protected).
type SAFTHandler struct {
	saftSvc     *compliance.SAFTService
	transmitSvc *compliance.TransmissionService
}

// NewSAFTHandler builds the handler.
func NewSAFTHandler(saftSvc *compliance.SAFTService, transmitSvc *compliance.TransmissionService) *SAFTHandler {
	return &SAFTHandler{saftSvc: saftSvc, transmitSvc: transmitSvc}
}

// Generate builds the SAF-T files for a month. An empty file_type runs
// the monthly cycle (sales plus payroll when the month has slips).
// POST /api/saft/generate
func (h *SAFTHandler) Generate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.GenerateSAFTRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.Year < 2000 || in.Month < 1 || in.Month > 12 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ano ou mês inválido"})
	}

	if in.FileType == "" {
		result, err := h.saftSvc.GenerateMonthly(c.Context(), companyID, in.Year, in.Month)
		if err != nil {
			return h.generationError(c, err)
		}
		files := []dto.SAFTFileResponse{dto.NewSAFTFileResponse(result.Sales.File)}
		if result.Payroll != nil {
			files = append(files, dto.NewSAFTFileResponse(result.Payroll.File))
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"period": result.Period, "files": files})
	}

	gen, err := h.saftSvc.Generate(c.Context(), companyID, in.FileType, in.Year, in.Month)
	if err != nil {
		return h.generationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSAFTFileResponse(gen.File))
}

// Transmit submits a generated file to the AT. A completed transmission
// for the same type and period is returned as-is, without a new call.
// POST /api/saft/transmit
func (h *SAFTHandler) Transmit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.TransmitSAFTRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.FileType == "" {
		in.FileType = entity.SAFTTypeSales
	}
	if in.Period == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "período obrigatório"})
	}

	entry, err := h.transmitSvc.TransmitSAFT(c.Context(), companyID, in.FileType, in.Period)
	if err != nil {
		if errors.Is(err, domain.ErrDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "AT_DISABLED", Message: "transmissão à AT não configurada"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "período inválido"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa não encontrada"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AT_ERROR", Message: err.Error()})
	}
	return c.JSON(dto.NewTransmissionResponse(entry))
}

// ListFiles returns the company's newest generated files.
// GET /api/saft/files?file_type=&period=&limit=
func (h *SAFTHandler) ListFiles(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	limit := c.QueryInt("limit", 50)
	files, err := h.saftSvc.ListFiles(companyID, c.Query("file_type"), c.Query("period"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.SAFTFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, dto.NewSAFTFileResponse(f))
	}
	return c.JSON(out)
}

// ListTransmissions returns the company's newest ledger entries.
// GET /api/transmissions?period=&limit=
func (h *SAFTHandler) ListTransmissions(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	limit := c.QueryInt("limit", 50)
	entries, err := h.transmitSvc.ListTransmissions(companyID, c.Query("period"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "período inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.TransmissionResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewTransmissionResponse(e))
	}
	return c.JSON(out)
}

func (h *SAFTHandler) generationError(c *fiber.Ctx, err error) error {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		if errors.Is(genErr.Cause, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa não encontrada"})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "GENERATION", Message: genErr.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "empresa não encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
