package at

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
)

// InvoicePayload is the wire shape of one invoice transmission. Field
// order is fixed by the struct so the checksum input is reproducible.
type InvoicePayload struct {
	InvoiceNumber string          `json:"invoice_number"`
	FiscalSeries  string          `json:"fiscal_series"`
	PostingDate   string          `json:"posting_date"`
	DueDate       string          `json:"due_date"`
	CustomerNUIT  string          `json:"customer_nuit"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	CompanyNUIT   string          `json:"company_nuit"`
	Timestamp     string          `json:"timestamp"`
	Items         []InvoiceItemPayload `json:"items"`
	Checksum      string          `json:"checksum,omitempty"`
}

// InvoiceItemPayload is one invoice line on the wire.
type InvoiceItemPayload struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Qty      decimal.Decimal `json:"qty"`
	Rate     decimal.Decimal `json:"rate"`
	Amount   decimal.Decimal `json:"amount"`
	VATRate  decimal.Decimal `json:"vat_rate"`
}

// BuildInvoicePayload assembles the payload and seals it with a
// SHA-256 checksum over its own serialized form (checksum field empty).
func BuildInvoicePayload(inv *entity.SalesInvoice, company *entity.Company, customer *entity.Customer, now time.Time) (*InvoicePayload, error) {
	p := &InvoicePayload{
		InvoiceNumber: inv.Name(),
		FiscalSeries:  inv.Series,
		PostingDate:   inv.Date.Format("2006-01-02"),
		DueDate:       inv.DueDate.Format("2006-01-02"),
		CustomerNUIT:  customer.FiscalNumber(),
		TotalAmount:   inv.GrandTotal,
		VATAmount:     inv.TaxTotal,
		NetAmount:     inv.NetTotal,
		CompanyNUIT:   company.FiscalNumber(),
		Timestamp:     now.Format(time.RFC3339),
		Items:         make([]InvoiceItemPayload, 0, len(inv.Items)),
	}
	for _, item := range inv.Items {
		p.Items = append(p.Items, InvoiceItemPayload{
			ItemCode: item.ProductID,
			ItemName: item.Description,
			Qty:      item.Quantity,
			Rate:     item.UnitPrice,
			Amount:   item.NetAmount,
			VATRate:  item.VATRate,
		})
	}

	sum, err := payloadChecksum(p)
	if err != nil {
		return nil, err
	}
	p.Checksum = sum
	return p, nil
}

// SAFTPayload is the wire shape of one SAF-T file transmission. The
// file checksum is computed over the canonical XML before the payload
// is built; it is carried, never recomputed here.
type SAFTPayload struct {
	FileType     string `json:"file_type"`
	Period       string `json:"period"`
	CompanyNUIT  string `json:"company_nuit"`
	FileContent  string `json:"file_content"`
	FileChecksum string `json:"file_checksum"`
	Timestamp    string `json:"timestamp"`
}

// BuildSAFTPayload assembles the SAF-T transmission payload.
func BuildSAFTPayload(fileType, periodID string, company *entity.Company, xmlContent []byte, checksum string, now time.Time) *SAFTPayload {
	return &SAFTPayload{
		FileType:     fileType,
		Period:       periodID,
		CompanyNUIT:  company.FiscalNumber(),
		FileContent:  string(xmlContent),
		FileChecksum: checksum,
		Timestamp:    now.Format(time.RFC3339),
	}
}

// payloadChecksum hashes the JSON serialization of the payload with its
// checksum field left empty.
func payloadChecksum(p *InvoicePayload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("at: checksum payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
