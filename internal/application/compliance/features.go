package compliance

import (
	"os"

	"github.com/moztech/fiscal-mz/pkg/config"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

// FeatureAvailability records which optional capabilities this
// deployment has. It is probed once at startup; use cases consult it
// instead of re-checking configuration on every request.
type FeatureAvailability struct {
	ATTransmission bool // AT endpoint configured and enabled
	AutoSubmit     bool // monthly SAF-T auto-submission runner active
	Validation     bool // QR validation secret configured
	ExportDir      bool // filesystem copy of generated SAF-T files
	SchemaCheck    bool // schema manifest present on disk
}

// ProbeFeatures inspects configuration and the filesystem and logs what
// this deployment can do. Missing optional features are reported, not
// fatal.
func ProbeFeatures(cfg *config.Config, log *logger.Logger) FeatureAvailability {
	f := FeatureAvailability{
		ATTransmission: cfg.AT.Enabled && cfg.AT.Endpoint != "",
		AutoSubmit:     cfg.AT.Enabled && cfg.AT.Endpoint != "" && cfg.AT.AutoSubmit,
		Validation:     cfg.Validation.SecretKey != "",
	}

	if cfg.SAFT.ExportDir != "" {
		if err := os.MkdirAll(cfg.SAFT.ExportDir, 0o755); err != nil {
			log.Warn().Err(err).Str("dir", cfg.SAFT.ExportDir).Msg("SAF-T export dir unavailable")
		} else {
			f.ExportDir = true
		}
	}
	if cfg.SAFT.SchemaPath != "" {
		if _, err := os.Stat(cfg.SAFT.SchemaPath); err == nil {
			f.SchemaCheck = true
		}
	}

	log.Info().
		Bool("at_transmission", f.ATTransmission).
		Bool("auto_submit", f.AutoSubmit).
		Bool("validation", f.Validation).
		Bool("export_dir", f.ExportDir).
		Bool("schema_check", f.SchemaCheck).
		Msg("feature availability")
	return f
}
