package dto

import (
	"time"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
)

// GenerateSAFTRequest is the payload of POST /api/saft/generate.
type GenerateSAFTRequest struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	FileType string `json:"file_type"` // sales, payroll, complete; empty means sales+payroll
}

// TransmitSAFTRequest is the payload of POST /api/saft/transmit.
type TransmitSAFTRequest struct {
	FileType string `json:"file_type"`
	Period   string `json:"period"` // YYYY-MM
}

// SAFTFileResponse describes a generated file.
type SAFTFileResponse struct {
	ID            string    `json:"id"`
	FileType      string    `json:"file_type"`
	Period        string    `json:"period"`
	Filename      string    `json:"filename"`
	Checksum      string    `json:"checksum"`
	SizeBytes     int64     `json:"size_bytes"`
	DocumentCount int       `json:"document_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// NewSAFTFileResponse maps the entity to its API shape.
func NewSAFTFileResponse(f *entity.SAFTFile) SAFTFileResponse {
	return SAFTFileResponse{
		ID:            f.ID,
		FileType:      f.FileType,
		Period:        f.Period,
		Filename:      f.Filename,
		Checksum:      f.Checksum,
		SizeBytes:     f.SizeBytes,
		DocumentCount: f.DocumentCount,
		GeneratedAt:   f.GeneratedAt,
	}
}

// TransmissionResponse is one ledger entry as returned by the API.
type TransmissionResponse struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Type        string    `json:"type"`
	Doctype     string    `json:"doctype"`
	Docname     string    `json:"docname"`
	Status      string    `json:"status"`
	Checksum    string    `json:"checksum,omitempty"`
	ATReference string    `json:"at_reference,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	HTTPStatus  int       `json:"http_status,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewTransmissionResponse maps the entity to its API shape.
func NewTransmissionResponse(tx *entity.Transmission) TransmissionResponse {
	return TransmissionResponse{
		ID:          tx.ID,
		RequestID:   tx.RequestID,
		Type:        tx.Type,
		Doctype:     tx.Doctype,
		Docname:     tx.Docname,
		Status:      tx.Status,
		Checksum:    tx.Checksum,
		ATReference: tx.ATReference,
		Detail:      tx.Detail,
		HTTPStatus:  tx.HTTPStatus,
		SubmittedAt: tx.SubmittedAt,
	}
}

// ValidateResponse is the public validation endpoint answer.
type ValidateResponse struct {
	Valid        bool             `json:"valid"`
	Message      string           `json:"message,omitempty"`
	DocumentInfo *DocumentInfoDTO `json:"document_info,omitempty"`
}

// DocumentInfoDTO is the minimal document summary shown to a validator.
type DocumentInfoDTO struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Company  string `json:"company,omitempty"`
	Date     string `json:"date,omitempty"`
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Status   string `json:"status,omitempty"`
	Customer string `json:"customer,omitempty"`
	TaxID    string `json:"tax_id,omitempty"`
}
