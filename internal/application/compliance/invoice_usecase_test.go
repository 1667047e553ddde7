package compliance_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moztech/fiscal-mz/internal/application/compliance"
	"github.com/moztech/fiscal-mz/internal/application/dto"
	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/infrastructure/qr"
)

func newInvoiceService(invoiceRepo *fakeInvoiceRepo, customerRepo *fakeCustomerRepo,
	logRepo *fakeLogRepo) *compliance.InvoiceService {
	transmitSvc := newTransmissionService(
		newFakeCompanyRepo(testCompany()), customerRepo, invoiceRepo, logRepo, nil, &fakeSubmitter{})
	tokenSvc := compliance.NewTokenService(
		qr.NewSigner("encryption-key", "https://fiscal.example.co.mz"),
		&fakeTokenRepo{}, testLogger())
	return compliance.NewInvoiceService(
		invoiceRepo, customerRepo,
		&fakeTxRunner{invoiceRepo: invoiceRepo},
		transmitSvc, tokenSvc, testLogger(),
	)
}

func TestInvoiceCreate_ComputesTotalsFromLines(t *testing.T) {
	invoiceRepo := newFakeInvoiceRepo()
	customerRepo := newFakeCustomerRepo(&entity.Customer{ID: "cust-1", CompanyID: "comp-1"})
	svc := newInvoiceService(invoiceRepo, customerRepo, &fakeLogRepo{})

	req := dto.CreateInvoiceRequest{
		CustomerID: "cust-1",
		Series:     "FT2025",
		Number:     "00001",
		Date:       "2025-01-10",
		Items: []dto.CreateInvoiceItemRequest{
			{Description: "Servico A", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500), VATRate: decimal.NewFromInt(16)},
			{Description: "Servico B", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("250.50"), VATRate: decimal.NewFromInt(16)},
		},
	}

	inv, err := svc.Create(context.Background(), "comp-1", req)
	require.NoError(t, err)

	// 2*500 = 1000.00 net, 160.00 VAT; 250.50 net, 40.08 VAT.
	assert.True(t, inv.NetTotal.Equal(decimal.RequireFromString("1250.50")), "net %s", inv.NetTotal)
	assert.True(t, inv.TaxTotal.Equal(decimal.RequireFromString("200.08")), "tax %s", inv.TaxTotal)
	assert.True(t, inv.GrandTotal.Equal(decimal.RequireFromString("1450.58")), "total %s", inv.GrandTotal)
	assert.Equal(t, "MZN", inv.Currency)
	assert.Equal(t, entity.InvoiceStatusSubmitted, inv.Status)
	assert.Equal(t, entity.ATStatusNotSent, inv.ATStatus)
	assert.Equal(t, "FT2025-00001", inv.Name())

	items, _ := invoiceRepo.GetItemsByInvoiceID(inv.ID)
	assert.Len(t, items, 2)
	assert.Equal(t, inv.ID, items[0].InvoiceID)
}

func TestInvoiceCreate_RejectsBadInput(t *testing.T) {
	customerRepo := newFakeCustomerRepo(&entity.Customer{ID: "cust-1"})
	svc := newInvoiceService(newFakeInvoiceRepo(), customerRepo, &fakeLogRepo{})

	line := dto.CreateInvoiceItemRequest{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}

	cases := []struct {
		name string
		req  dto.CreateInvoiceRequest
	}{
		{"missing customer", dto.CreateInvoiceRequest{Number: "1", Date: "2025-01-10", Items: []dto.CreateInvoiceItemRequest{line}}},
		{"no lines", dto.CreateInvoiceRequest{CustomerID: "cust-1", Number: "1", Date: "2025-01-10"}},
		{"bad date", dto.CreateInvoiceRequest{CustomerID: "cust-1", Number: "1", Date: "10/01/2025", Items: []dto.CreateInvoiceItemRequest{line}}},
		{"zero quantity", dto.CreateInvoiceRequest{CustomerID: "cust-1", Number: "1", Date: "2025-01-10",
			Items: []dto.CreateInvoiceItemRequest{{Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(10)}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "comp-1", tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestInvoiceCreate_UnknownCustomer(t *testing.T) {
	svc := newInvoiceService(newFakeInvoiceRepo(), newFakeCustomerRepo(), &fakeLogRepo{})

	_, err := svc.Create(context.Background(), "comp-1", dto.CreateInvoiceRequest{
		CustomerID: "ghost", Number: "1", Date: "2025-01-10",
		Items: []dto.CreateInvoiceItemRequest{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceCancel_RecordsLedgerEntry(t *testing.T) {
	inv := submittedInvoice()
	invoiceRepo := newFakeInvoiceRepo(inv)
	logRepo := &fakeLogRepo{}
	svc := newInvoiceService(invoiceRepo, newFakeCustomerRepo(), logRepo)

	require.NoError(t, svc.Cancel(context.Background(), "comp-1", "inv-1", "wrong amount"))

	got, _ := invoiceRepo.GetByID("inv-1")
	assert.Equal(t, entity.InvoiceStatusCancelled, got.Status)
	require.Len(t, logRepo.entries, 1)
	assert.Equal(t, "CANCEL-Sales Invoice-FT2025-00042", logRepo.entries[0].RequestID)
	assert.Equal(t, "wrong amount", logRepo.entries[0].Detail)

	// Cancelling twice is a conflict, not a second ledger entry.
	err := svc.Cancel(context.Background(), "comp-1", "inv-1", "again")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, logRepo.entries, 1)
}

func TestInvoiceCancel_ScopedToCompany(t *testing.T) {
	invoiceRepo := newFakeInvoiceRepo(submittedInvoice())
	svc := newInvoiceService(invoiceRepo, newFakeCustomerRepo(), &fakeLogRepo{})

	err := svc.Cancel(context.Background(), "other-company", "inv-1", "x")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, _ := invoiceRepo.GetByID("inv-1")
	assert.Equal(t, entity.InvoiceStatusSubmitted, got.Status)
}

func TestInvoiceCreate_IssuesValidationToken(t *testing.T) {
	invoiceRepo := newFakeInvoiceRepo()
	customerRepo := newFakeCustomerRepo(&entity.Customer{ID: "cust-1"})
	transmitSvc := newTransmissionService(
		newFakeCompanyRepo(testCompany()), customerRepo, invoiceRepo, &fakeLogRepo{}, nil, &fakeSubmitter{})
	tokenRepo := &fakeTokenRepo{}
	tokenSvc := compliance.NewTokenService(
		qr.NewSigner("encryption-key", "https://fiscal.example.co.mz"), tokenRepo, testLogger())
	svc := compliance.NewInvoiceService(
		invoiceRepo, customerRepo,
		&fakeTxRunner{invoiceRepo: invoiceRepo},
		transmitSvc, tokenSvc, testLogger(),
	)

	inv, err := svc.Create(context.Background(), "comp-1", dto.CreateInvoiceRequest{
		CustomerID: "cust-1", Series: "FT2025", Number: "00007", Date: "2025-01-10",
		Items: []dto.CreateInvoiceItemRequest{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	tokens, err := tokenRepo.ListByDocument(compliance.DoctypeSalesInvoice, inv.Name())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "comp-1", tokens[0].CompanyID)
}

func TestInvoiceCreate_TxFailureReturnsError(t *testing.T) {
	invoiceRepo := newFakeInvoiceRepo()
	customerRepo := newFakeCustomerRepo(&entity.Customer{ID: "cust-1"})
	transmitSvc := newTransmissionService(
		newFakeCompanyRepo(testCompany()), customerRepo, invoiceRepo, &fakeLogRepo{}, nil, &fakeSubmitter{})
	svc := compliance.NewInvoiceService(
		invoiceRepo, customerRepo,
		&fakeTxRunner{invoiceRepo: invoiceRepo, failWith: errBoom},
		transmitSvc, nil, testLogger(),
	)

	_, err := svc.Create(context.Background(), "comp-1", dto.CreateInvoiceRequest{
		CustomerID: "cust-1", Number: "1", Date: "2025-01-10",
		Items: []dto.CreateInvoiceItemRequest{{Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, errBoom)
}
