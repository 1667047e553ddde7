package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/moztech/fiscal-mz/internal/application/compliance"
)

// RouterDeps carries the dependencies of the router.
type RouterDeps struct {
	InvoiceSvc    *compliance.InvoiceService
	TransmitSvc   *compliance.TransmissionService
	SAFTSvc       *compliance.SAFTService
	PayrollSvc    *compliance.PayrollService
	PDFSvc        *compliance.PDFService
	ValidationSvc *compliance.ValidationService
	Features      compliance.FeatureAvailability
	JWTSecret     string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Public validation endpoint reached from QR codes.
	validationHandler := NewValidationHandler(deps.ValidationSvc, deps.Features.Validation)
	app.Get("/validate", validationHandler.Validate)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Invoices
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceSvc, deps.TransmitSvc, deps.PDFSvc, deps.Features)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.PDF)
	invoices.Post("/:id/transmit", invoiceHandler.Transmit)
	invoices.Post("/:id/cancel", RequireRole("admin", "contabilista"), invoiceHandler.Cancel)

	// SAF-T files and the transmission ledger
	saftHandler := NewSAFTHandler(deps.SAFTSvc, deps.TransmitSvc)
	saftGroup := api.Group("/saft", RequireRole("admin", "contabilista"))
	saftGroup.Post("/generate", saftHandler.Generate)
	saftGroup.Post("/transmit", saftHandler.Transmit)
	saftGroup.Get("/files", saftHandler.ListFiles)
	api.Get("/transmissions", saftHandler.ListTransmissions)

	// Payroll
	payrollHandler := NewPayrollHandler(deps.PayrollSvc)
	payroll := api.Group("/payroll", RequireRole("admin", "contabilista"))
	payroll.Post("/run", payrollHandler.Run)
	payroll.Post("/preview", payrollHandler.Preview)
}
