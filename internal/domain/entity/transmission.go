package entity

import (
	"fmt"
	"time"
)

// Transmission ledger statuses.
const (
	TransmissionStatusPending   = "Pending"
	TransmissionStatusCompleted = "Completed"
	TransmissionStatusFailed    = "Failed"
)

// Transmission types accepted by the AT endpoint.
const (
	TransmissionTypeInvoice      = "invoice"
	TransmissionTypeSAFT         = "saft"
	TransmissionTypeCancellation = "cancellation"
)

// Transmission is one entry of the AT transmission ledger. The request id
// identifies the logical document; completed entries make retransmission
// of the same request id a no-op.
type Transmission struct {
	ID          string
	CompanyID   string
	RequestID   string
	Type        string // see TransmissionType* constants
	Doctype     string
	Docname     string
	Status      string // see TransmissionStatus* constants
	Checksum    string // SHA-256 hex of the transmitted payload
	ATReference string
	Detail      string // response message or error detail
	HTTPStatus  int    // 0 when the call never completed
	RespDigest  string // SHA-256 hex of the raw response body
	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InvoiceRequestID builds the ledger request id for an invoice document.
func InvoiceRequestID(docname string) string {
	return docname
}

// SAFTRequestID builds the ledger request id for a SAF-T file,
// e.g. "SAFT_sales-2025-01".
func SAFTRequestID(fileType, period string) string {
	return fmt.Sprintf("SAFT_%s-%s", fileType, period)
}

// CancellationRequestID builds the ledger request id for a cancellation
// notice, e.g. "CANCEL-Sales Invoice-FT2025-00042".
func CancellationRequestID(doctype, docname string) string {
	return fmt.Sprintf("CANCEL-%s-%s", doctype, docname)
}
