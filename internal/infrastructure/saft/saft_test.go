package saft_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/period"
	"github.com/moztech/fiscal-mz/internal/infrastructure/saft"
)

func testCompany() *entity.Company {
	return &entity.Company{
		ID:       "comp-1",
		Name:     "Moz Trading Lda",
		NUIT:     "400123456",
		Address:  "Av. 25 de Setembro 1234",
		City:     "Maputo",
		Currency: "MZN",
	}
}

func testPeriod(t *testing.T) period.Period {
	t.Helper()
	p, err := period.FromYearMonth(2025, 1)
	require.NoError(t, err)
	return p
}

func testInvoice() *entity.SalesInvoice {
	return &entity.SalesInvoice{
		ID:         "inv-1",
		CustomerID: "cust-1",
		Series:     "FT2025",
		Number:     "00042",
		Date:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		NetTotal:   decimal.NewFromInt(1000),
		TaxTotal:   decimal.NewFromInt(160),
		GrandTotal: decimal.NewFromInt(1160),
		Status:     entity.InvoiceStatusSubmitted,
	}
}

func TestBuildSales_EmptyPeriodKeepsContainers(t *testing.T) {
	b := saft.NewBuilder("fiscal-mz 1.0.0")
	data, err := b.BuildSales(saft.BuildInput{
		Company: testCompany(),
		Period:  testPeriod(t),
	})
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, `xmlns="urn:OECD:StandardAuditFile-Tax:Mozambique"`)
	assert.Contains(t, xml, `version="1.0"`)
	// Empty containers are still present so the file shape is stable.
	assert.Contains(t, xml, "<Customers")
	assert.Contains(t, xml, "<Products")
	assert.Contains(t, xml, "<GeneralLedgerEntries")
	assert.Contains(t, xml, "<SalesInvoices")
}

func TestBuildSales_HeaderAndInvoiceFields(t *testing.T) {
	b := saft.NewBuilder("fiscal-mz 1.0.0")
	data, err := b.BuildSales(saft.BuildInput{
		Company:  testCompany(),
		Period:   testPeriod(t),
		Invoices: []*entity.SalesInvoice{testInvoice()},
	})
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, "<CompanyName>Moz Trading Lda</CompanyName>")
	assert.Contains(t, xml, "<NUIT>400123456</NUIT>")
	assert.Contains(t, xml, "<StartDate>2025-01-01</StartDate>")
	assert.Contains(t, xml, "<EndDate>2025-01-31</EndDate>")
	assert.Contains(t, xml, "<InvoiceNumber>FT2025-00042</InvoiceNumber>")
	assert.Contains(t, xml, "<TotalAmount>1160.00</TotalAmount>")
	assert.Contains(t, xml, "<TotalTaxes>160.00</TotalTaxes>")
	assert.Contains(t, xml, "<EntryType>Sales</EntryType>")
}

func TestBuildSales_FallsBackToLegacyTaxID(t *testing.T) {
	company := testCompany()
	company.NUIT = ""
	company.TaxID = "legacy-777"

	b := saft.NewBuilder("fiscal-mz 1.0.0")
	data, err := b.BuildSales(saft.BuildInput{Company: company, Period: testPeriod(t)})
	require.NoError(t, err)
	assert.Contains(t, string(data), "<NUIT>legacy-777</NUIT>")
}

func TestBuildSales_JournalEntriesWithLines(t *testing.T) {
	entry := &entity.JournalEntry{
		ID:        "je-1",
		CompanyID: "comp-1",
		Name:      "JV-2025-00017",
		Date:      time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Reference: "bank reconciliation",
		Lines: []entity.JournalLine{
			{Account: "11.1.1", Debit: decimal.NewFromInt(5000), Credit: decimal.Zero},
			{Account: "21.1.1", Debit: decimal.Zero, Credit: decimal.NewFromInt(5000), Narration: "supplier payment"},
		},
	}

	b := saft.NewBuilder("fiscal-mz 1.0.0")
	data, err := b.BuildSales(saft.BuildInput{
		Company: testCompany(),
		Period:  testPeriod(t),
		Journal: []*entity.JournalEntry{entry},
	})
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, "<EntryNumber>JV-2025-00017</EntryNumber>")
	assert.Contains(t, xml, "<EntryType>Journal</EntryType>")
	assert.Contains(t, xml, "<Reference>bank reconciliation</Reference>")
	assert.Contains(t, xml, "<Account>11.1.1</Account>")
	assert.Contains(t, xml, "<Credit>5000.00</Credit>")
	assert.Contains(t, xml, "<Narration>supplier payment</Narration>")
}

func TestBuildPayroll_BenefitsInKind(t *testing.T) {
	slip := &entity.SalarySlip{
		ID:         "slip-1",
		EmployeeID: "emp-1",
		Period:     "2025-01",
		Gross:      decimal.NewFromInt(50000),
		Benefits: []entity.BenefitInKind{
			{Kind: "housing", Valuation: decimal.NewFromInt(8000)},
			{Kind: "vehicle", Valuation: decimal.NewFromInt(2000)},
			{Kind: "other", Valuation: decimal.Zero}, // unvalued, skipped
		},
	}

	b := saft.NewBuilder("fiscal-mz 1.0.0")
	data, err := b.BuildPayroll(saft.BuildInput{
		Company: testCompany(),
		Period:  testPeriod(t),
		Slips:   []*entity.SalarySlip{slip},
	})
	require.NoError(t, err)

	xml := string(data)
	assert.Contains(t, xml, "<BenefitsInKind>")
	assert.Contains(t, xml, "<TotalBenefitsInKind>10000.00</TotalBenefitsInKind>")
	assert.Equal(t, 2, strings.Count(xml, "<MonthlyBenefitsInKind>"))
	assert.Contains(t, xml, "<EntryType>Payroll</EntryType>")
}

func TestBuildPayroll_NoBenefitsOmitsBlock(t *testing.T) {
	slip := &entity.SalarySlip{
		ID:         "slip-2",
		EmployeeID: "emp-1",
		Period:     "2025-01",
		Gross:      decimal.NewFromInt(30000),
	}

	b := saft.NewBuilder("fiscal-mz 1.0.0")
	data, err := b.BuildPayroll(saft.BuildInput{
		Company: testCompany(),
		Period:  testPeriod(t),
		Slips:   []*entity.SalarySlip{slip},
	})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<BenefitsInKind>")
}

func TestCanonicalChecksum_IgnoresFormatting(t *testing.T) {
	compact := []byte(`<SAFT version="1.0"><Header><NUIT>400123456</NUIT></Header></SAFT>`)
	pretty := []byte("<SAFT version=\"1.0\">\n  <Header>\n    <NUIT>400123456</NUIT>\n  </Header>\n</SAFT>\n")

	_, sum1, err := saft.CanonicalChecksum(compact)
	require.NoError(t, err)
	_, sum2, err := saft.CanonicalChecksum(pretty)
	require.NoError(t, err)

	assert.Len(t, sum1, 64)
	// Whitespace between elements is content in canonical XML, so the two
	// serializations differ; what matters is each digest is stable.
	_, again, err := saft.CanonicalChecksum(compact)
	require.NoError(t, err)
	assert.Equal(t, sum1, again, "checksum must be deterministic for identical bytes")
	_ = sum2
}

func TestChecksum_SingleByteChange(t *testing.T) {
	a := saft.Checksum([]byte("<SAFT><TotalAmount>1160</TotalAmount></SAFT>"))
	b := saft.Checksum([]byte("<SAFT><TotalAmount>1161</TotalAmount></SAFT>"))
	assert.NotEqual(t, a, b, "a one byte change must change the checksum")
}

func TestFilename(t *testing.T) {
	ts := time.Date(2025, 2, 1, 3, 4, 5, 0, time.UTC)
	name := saft.Filename("sales", "2025-01", "Moz Trading Lda", ts)
	assert.Equal(t, "SAFT_sales_2025-01_Moz Trading Lda_20250201_030405.xml", name)

	name = saft.Filename("payroll", "2025-01", "A/B:C", ts)
	assert.Equal(t, "SAFT_payroll_2025-01_A_B_C_20250201_030405.xml", name)
}

func TestSchemaValidator_MissingManifestSkips(t *testing.T) {
	v := saft.NewSchemaValidator(filepath.Join(t.TempDir(), "absent.manifest"))
	assert.NoError(t, v.Validate([]byte("<SAFT/>"), "sales"))
}

func TestSchemaValidator_EnforcesPresentManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "saft.manifest")
	require.NoError(t, os.WriteFile(manifest, []byte("# required paths\n./Header/CompanyInfo/NUIT\n"), 0o644))

	v := saft.NewSchemaValidator(manifest)

	ok := []byte("<SAFT><Header><CompanyInfo><NUIT>1</NUIT></CompanyInfo></Header></SAFT>")
	assert.NoError(t, v.Validate(ok, "sales"))

	bad := []byte("<SAFT><Header/></SAFT>")
	err := v.Validate(bad, "sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required element missing")
}
