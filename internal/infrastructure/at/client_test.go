package at_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/infrastructure/at"
	"github.com/moztech/fiscal-mz/pkg/config"
	"github.com/moztech/fiscal-mz/pkg/logger"
)

func newClient(t *testing.T, endpoint string) *at.Client {
	t.Helper()
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return at.NewClient(config.ATConfig{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
	}, log)
}

func TestSubmit_SetsHeadersAndParsesJSON(t *testing.T) {
	var gotAuth, gotNUIT, gotType, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotNUIT = r.Header.Get("X-Company-NUIT")
		gotType = r.Header.Get("X-Transmission-Type")
		gotContent = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reference":"AT-REF-001","message":"accepted"}`))
	}))
	defer srv.Close()

	res, err := newClient(t, srv.URL).Submit(context.Background(), "400123456", "saft", map[string]string{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "400123456", gotNUIT)
	assert.Equal(t, "saft", gotType)
	assert.Equal(t, "application/json", gotContent)

	assert.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "AT-REF-001", res.Reference)
	assert.Equal(t, "accepted", res.Message)
}

func TestSubmit_NonJSONBodyStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	res, err := newClient(t, srv.URL).Submit(context.Background(), "400123456", "invoice", struct{}{})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "Transmission successful", res.Message)
	// Raw body is preserved as a JSON string for the ledger.
	assert.Equal(t, `"OK"`, string(res.Response))
}

func TestSubmit_NonOKStatusIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	res, err := newClient(t, srv.URL).Submit(context.Background(), "400123456", "invoice", struct{}{})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Equal(t, "AT API error: 502", res.Message)
}

func TestSubmit_NetworkErrorReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	_, err := newClient(t, srv.URL).Submit(context.Background(), "400123456", "invoice", struct{}{})
	assert.Error(t, err)
}

func TestBuildInvoicePayload_ChecksumCoversPayload(t *testing.T) {
	company := &entity.Company{NUIT: "400123456"}
	customer := &entity.Customer{NUIT: "500987654"}
	now := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	inv := &entity.SalesInvoice{
		Series:     "FT2025",
		Number:     "00042",
		Date:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		NetTotal:   decimal.NewFromInt(1000),
		TaxTotal:   decimal.NewFromInt(160),
		GrandTotal: decimal.NewFromInt(1160),
		Items: []entity.InvoiceItem{
			{ProductID: "P-1", Description: "Cimento", Quantity: decimal.NewFromInt(10),
				UnitPrice: decimal.NewFromInt(100), NetAmount: decimal.NewFromInt(1000),
				VATRate: decimal.NewFromInt(16)},
		},
	}

	p, err := at.BuildInvoicePayload(inv, company, customer, now)
	require.NoError(t, err)

	assert.Equal(t, "FT2025-00042", p.InvoiceNumber)
	assert.Equal(t, "500987654", p.CustomerNUIT)
	assert.Len(t, p.Checksum, 64)

	// Identical inputs give an identical checksum.
	again, err := at.BuildInvoicePayload(inv, company, customer, now)
	require.NoError(t, err)
	assert.Equal(t, p.Checksum, again.Checksum)

	// Changing any transmitted field changes the checksum.
	inv.GrandTotal = decimal.NewFromInt(1161)
	changed, err := at.BuildInvoicePayload(inv, company, customer, now)
	require.NoError(t, err)
	assert.NotEqual(t, p.Checksum, changed.Checksum)
}

func TestBuildSAFTPayload(t *testing.T) {
	company := &entity.Company{TaxID: "legacy-1"}
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	p := at.BuildSAFTPayload("sales", "2025-01", company, []byte("<SAFT/>"), "abc123", now)
	assert.Equal(t, "sales", p.FileType)
	assert.Equal(t, "legacy-1", p.CompanyNUIT, "falls back to legacy tax id")
	assert.Equal(t, "abc123", p.FileChecksum)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"file_content":"<SAFT/>"`)
}
