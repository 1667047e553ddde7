package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/moztech/fiscal-mz/internal/application/compliance"
	"github.com/moztech/fiscal-mz/internal/infrastructure/at"
	infrapdf "github.com/moztech/fiscal-mz/internal/infrastructure/pdf"
	"github.com/moztech/fiscal-mz/internal/infrastructure/postgres"
	"github.com/moztech/fiscal-mz/internal/infrastructure/qr"
	"github.com/moztech/fiscal-mz/internal/infrastructure/saft"
	httpRouter "github.com/moztech/fiscal-mz/internal/interfaces/http"
	"github.com/moztech/fiscal-mz/pkg/config"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	employeeRepo := postgres.NewEmployeeRepository(pool)
	slipRepo := postgres.NewSalarySlipRepository(pool)
	fileRepo := postgres.NewSAFTFileRepository(pool)
	logRepo := postgres.NewTransmissionLogRepository(pool)
	tokenRepo := postgres.NewValidationTokenRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	features := compliance.ProbeFeatures(cfg, log)

	builder := saft.NewBuilder(cfg.SAFT.SoftwareVersion)
	validator := saft.NewSchemaValidator(cfg.SAFT.SchemaPath)
	saftSvc := compliance.NewSAFTService(
		companyRepo, customerRepo, productRepo, invoiceRepo,
		journalRepo, employeeRepo, slipRepo, fileRepo,
		builder, validator, cfg.SAFT.ExportDir, log,
	)

	atClient := at.NewClient(cfg.AT, log)
	transmitSvc := compliance.NewTransmissionService(
		invoiceRepo, companyRepo, customerRepo, logRepo,
		saftSvc, atClient, features, log,
	)

	signer := qr.NewSigner(cfg.Validation.SecretKey, cfg.Validation.BaseURL)
	tokenSvc := compliance.NewTokenService(signer, tokenRepo, log)

	invoiceSvc := compliance.NewInvoiceService(invoiceRepo, customerRepo, txRunner, transmitSvc, tokenSvc, log)
	payrollSvc := compliance.NewPayrollService(employeeRepo, slipRepo, companyRepo, txRunner, log)

	validationSvc := compliance.NewValidationService(
		signer, invoiceRepo, slipRepo, companyRepo, customerRepo, log,
	)
	pdfGenerator := infrapdf.NewMarotoInvoiceGenerator()
	pdfSvc := compliance.NewPDFService(
		invoiceRepo, companyRepo, customerRepo, pdfGenerator, signer, features,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceSvc:    invoiceSvc,
		TransmitSvc:   transmitSvc,
		SAFTSvc:       saftSvc,
		PayrollSvc:    payrollSvc,
		PDFSvc:        pdfSvc,
		ValidationSvc: validationSvc,
		Features:      features,
		JWTSecret:     cfg.JWT.Secret,
	})

	// Monthly cycle: generate and transmit the previous month's files
	// for every company enrolled in auto-submission.
	autoCtx, stopAuto := context.WithCancel(ctx)
	defer stopAuto()
	if features.AutoSubmit {
		go runAutoSubmit(autoCtx, transmitSvc, log)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")
	stopAuto()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}

// runAutoSubmit fires the monthly cycle shortly after startup and then
// once a day. GenerateAndAutoSubmit itself skips periods that already
// have a completed transmission, so repeated runs are harmless.
func runAutoSubmit(ctx context.Context, svc *compliance.TransmissionService, log *logger.Logger) {
	timer := time.NewTimer(time.Minute)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		log.Info().Msg("running SAF-T auto-submission cycle")
		svc.GenerateAndAutoSubmit(ctx)
		timer.Reset(24 * time.Hour)
	}
}
