package dto

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CancelInvoiceRequest is the payload of POST /api/invoices/:id/cancel.
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// RunPayrollRequest is the payload of POST /api/payroll/run.
type RunPayrollRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PayrollPreviewRequest is the payload of POST /api/payroll/preview.
type PayrollPreviewRequest struct {
	Gross string `json:"gross"`
}
