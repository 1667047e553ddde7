package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implements InvoiceRepository (usable with pool or tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the adapter. Pass a pool or tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, customer_id, series, number, date, due_date, currency,
		net_total, tax_total, grand_total, status, at_status, COALESCE(at_reference, ''), COALESCE(at_errors, ''),
		created_at, updated_at`

// Create persists the invoice header.
func (r *InvoiceRepo) Create(invoice *entity.SalesInvoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_invoices (id, company_id, customer_id, series, number, date, due_date, currency,
			net_total, tax_total, grand_total, status, at_status, at_reference, at_errors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.CompanyID, invoice.CustomerID, invoice.Series, invoice.Number,
		invoice.Date, invoice.DueDate, invoice.Currency,
		invoice.NetTotal, invoice.TaxTotal, invoice.GrandTotal,
		invoice.Status, invoice.ATStatus,
		nullIfEmpty(invoice.ATReference), nullIfEmpty(invoice.ATErrors),
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateItem persists one invoice line.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_invoice_items (id, invoice_id, product_id, description, quantity, unit_price, vat_rate, net_amount, tax_amount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.InvoiceID, item.ProductID, item.Description,
		item.Quantity, item.UnitPrice, item.VATRate,
		item.NetAmount, item.TaxAmount, item.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// UpdateATStatus updates only the AT transmission fields.
func (r *InvoiceRepo) UpdateATStatus(invoice *entity.SalesInvoice) error {
	query := `
		UPDATE sales_invoices SET at_status = $2, at_reference = $3, at_errors = $4, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.ATStatus,
		nullIfEmpty(invoice.ATReference), nullIfEmpty(invoice.ATErrors),
	)
	if err != nil {
		return fmt.Errorf("update invoice AT status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus changes the document status.
func (r *InvoiceRepo) UpdateStatus(id, status string) error {
	query := `UPDATE sales_invoices SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches the invoice header.
func (r *InvoiceRepo) GetByID(id string) (*entity.SalesInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM sales_invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetByName looks the invoice up by document name (series-number).
func (r *InvoiceRepo) GetByName(name string) (*entity.SalesInvoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM sales_invoices
		WHERE series || '-' || number = $1 OR (series = '' AND number = $1)`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice by name: %w", err)
	}
	return inv, nil
}

// GetItemsByInvoiceID fetches the invoice lines.
func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, description, quantity, unit_price, vat_rate, net_amount, tax_amount, line_total
		FROM sales_invoice_items WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	var out []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(
			&it.ID, &it.InvoiceID, &it.ProductID, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.VATRate,
			&it.NetAmount, &it.TaxAmount, &it.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// ListSubmittedInPeriod returns posted invoices in the date range,
// cancelled ones included, ordered by date then series/number.
func (r *InvoiceRepo) ListSubmittedInPeriod(companyID string, from, to time.Time) ([]*entity.SalesInvoice, error) {
	query := `SELECT ` + invoiceColumns + `
		FROM sales_invoices
		WHERE company_id = $1 AND date BETWEEN $2 AND $3 AND status <> $4
		ORDER BY date, series, number`
	rows, err := r.q.Query(context.Background(), query, companyID, from, to, entity.InvoiceStatusDraft)
	if err != nil {
		return nil, fmt.Errorf("list invoices in period: %w", err)
	}
	defer rows.Close()

	var out []*entity.SalesInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.SalesInvoice, error) {
	var inv entity.SalesInvoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.Series, &inv.Number,
		&inv.Date, &inv.DueDate, &inv.Currency,
		&inv.NetTotal, &inv.TaxTotal, &inv.GrandTotal,
		&inv.Status, &inv.ATStatus, &inv.ATReference, &inv.ATErrors,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
