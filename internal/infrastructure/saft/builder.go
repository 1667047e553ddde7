package saft

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/period"
)

// SAF-T (MZ) document constants.
const (
	Namespace = "urn:OECD:StandardAuditFile-Tax:Mozambique"
	Version   = "1.0"
)

// BuildInput carries everything the builder needs for one export. Slices
// may be empty; the corresponding containers are still emitted so the
// file shape is stable.
type BuildInput struct {
	Company   *entity.Company
	Period    period.Period
	Customers []*entity.Customer
	Products  []*entity.Product
	Employees []*entity.Employee
	Invoices  []*entity.SalesInvoice
	Slips     []*entity.SalarySlip
	Journal   []*entity.JournalEntry
}

// Builder assembles SAF-T XML documents.
type Builder struct {
	softwareVersion string
	now             func() time.Time
}

// NewBuilder creates the builder. softwareVersion goes into the
// GenerationInfo header block.
func NewBuilder(softwareVersion string) *Builder {
	return &Builder{softwareVersion: softwareVersion, now: time.Now}
}

// BuildSales generates the sales SAF-T document: customer and product
// master data, sales ledger entries and invoice source documents.
func (b *Builder) BuildSales(in BuildInput) ([]byte, error) {
	if in.Company == nil {
		return nil, domain.NewGenerationError(entity.SAFTTypeSales, "build", domain.ErrInvalidInput)
	}
	doc, root := b.newDocument(in)

	master := root.CreateElement("MasterFiles")
	b.addCustomers(master, in.Customers)
	b.addProducts(master, in.Products)

	ledger := root.CreateElement("GeneralLedgerEntries")
	b.addJournalEntries(ledger, in.Journal)
	b.addSalesEntries(ledger, in.Invoices)

	source := root.CreateElement("SourceDocuments")
	b.addSalesInvoices(source, in.Invoices)

	return serialize(doc, entity.SAFTTypeSales)
}

// BuildPayroll generates the payroll SAF-T document: employee master
// data, payroll ledger entries and salary slip source documents with
// benefits in kind.
func (b *Builder) BuildPayroll(in BuildInput) ([]byte, error) {
	if in.Company == nil {
		return nil, domain.NewGenerationError(entity.SAFTTypePayroll, "build", domain.ErrInvalidInput)
	}
	doc, root := b.newDocument(in)

	master := root.CreateElement("MasterFiles")
	b.addEmployees(master, in.Employees)

	ledger := root.CreateElement("GeneralLedgerEntries")
	b.addPayrollEntries(ledger, in.Slips)

	source := root.CreateElement("SourceDocuments")
	b.addPayrollDocs(source, in.Slips)

	return serialize(doc, entity.SAFTTypePayroll)
}

// BuildComplete generates a single document carrying both the sales and
// the payroll sections.
func (b *Builder) BuildComplete(in BuildInput) ([]byte, error) {
	if in.Company == nil {
		return nil, domain.NewGenerationError(entity.SAFTTypeComplete, "build", domain.ErrInvalidInput)
	}
	doc, root := b.newDocument(in)

	master := root.CreateElement("MasterFiles")
	b.addCustomers(master, in.Customers)
	b.addProducts(master, in.Products)
	b.addEmployees(master, in.Employees)

	ledger := root.CreateElement("GeneralLedgerEntries")
	b.addJournalEntries(ledger, in.Journal)
	b.addSalesEntries(ledger, in.Invoices)
	b.addPayrollEntries(ledger, in.Slips)

	source := root.CreateElement("SourceDocuments")
	b.addSalesInvoices(source, in.Invoices)
	b.addPayrollDocs(source, in.Slips)

	return serialize(doc, entity.SAFTTypeComplete)
}

// newDocument creates the SAFT root with namespace, version and header.
func (b *Builder) newDocument(in BuildInput) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("SAFT")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("version", Version)

	header := root.CreateElement("Header")

	company := header.CreateElement("CompanyInfo")
	setText(company, "CompanyName", in.Company.Name)
	setText(company, "CompanyAddress", companyAddress(in.Company))
	setText(company, "NUIT", in.Company.FiscalNumber())

	periodInfo := header.CreateElement("PeriodInfo")
	setText(periodInfo, "StartDate", in.Period.StartISO())
	setText(periodInfo, "EndDate", in.Period.EndISO())

	now := b.now()
	gen := header.CreateElement("GenerationInfo")
	setText(gen, "GenerationDate", now.Format("2006-01-02"))
	setText(gen, "GenerationTime", now.Format("15:04:05"))
	setText(gen, "SoftwareVersion", b.softwareVersion)

	return doc, root
}

func (b *Builder) addCustomers(master *etree.Element, customers []*entity.Customer) {
	container := master.CreateElement("Customers")
	for _, c := range customers {
		el := container.CreateElement("Customer")
		setText(el, "CustomerID", c.ID)
		setText(el, "CustomerName", c.Name)
		setText(el, "NUIT", c.NUIT)
		setText(el, "TaxID", c.TaxID)
	}
}

func (b *Builder) addProducts(master *etree.Element, products []*entity.Product) {
	container := master.CreateElement("Products")
	for _, p := range products {
		el := container.CreateElement("Product")
		setText(el, "ProductID", p.ID)
		setText(el, "ProductName", p.Description)
		setText(el, "ProductGroup", p.Code)
		setText(el, "TaxCategory", p.VATRate.String())
	}
}

func (b *Builder) addEmployees(master *etree.Element, employees []*entity.Employee) {
	container := master.CreateElement("Employees")
	for _, e := range employees {
		el := container.CreateElement("Employee")
		setText(el, "EmployeeID", e.ID)
		setText(el, "EmployeeName", e.Name)
		setText(el, "NUIT", e.NUIT)
		setText(el, "NationalID", e.INSSNumber)
	}
}

// addJournalEntries emits posted general ledger entries with their
// debit and credit lines.
func (b *Builder) addJournalEntries(ledger *etree.Element, entries []*entity.JournalEntry) {
	for _, je := range entries {
		entry := ledger.CreateElement("Entry")
		setText(entry, "EntryNumber", je.Name)
		setText(entry, "EntryDate", je.Date.Format("2006-01-02"))
		setText(entry, "EntryType", "Journal")
		if je.Reference != "" {
			setText(entry, "Reference", je.Reference)
		}
		for _, line := range je.Lines {
			el := entry.CreateElement("Line")
			setText(el, "Account", line.Account)
			setText(el, "Debit", line.Debit.StringFixed(2))
			setText(el, "Credit", line.Credit.StringFixed(2))
			if line.Narration != "" {
				setText(el, "Narration", line.Narration)
			}
		}
	}
}

func (b *Builder) addSalesEntries(ledger *etree.Element, invoices []*entity.SalesInvoice) {
	for _, inv := range invoices {
		entry := ledger.CreateElement("Entry")
		setText(entry, "EntryNumber", inv.Name())
		setText(entry, "EntryDate", inv.Date.Format("2006-01-02"))
		setText(entry, "EntryType", "Sales")
		setText(entry, "TotalAmount", inv.GrandTotal.StringFixed(2))
		setText(entry, "TotalTaxes", inv.TaxTotal.StringFixed(2))
	}
}

func (b *Builder) addPayrollEntries(ledger *etree.Element, slips []*entity.SalarySlip) {
	for _, slip := range slips {
		entry := ledger.CreateElement("Entry")
		setText(entry, "EntryNumber", slip.ID)
		setText(entry, "EntryDate", slip.Period+"-01")
		setText(entry, "EntryType", "Payroll")
		setText(entry, "TotalAmount", slip.Gross.StringFixed(2))
	}
}

func (b *Builder) addSalesInvoices(source *etree.Element, invoices []*entity.SalesInvoice) {
	container := source.CreateElement("SalesInvoices")
	for _, inv := range invoices {
		el := container.CreateElement("Invoice")
		setText(el, "InvoiceNumber", inv.Name())
		setText(el, "InvoiceDate", inv.Date.Format("2006-01-02"))
		setText(el, "CustomerID", inv.CustomerID)
		setText(el, "TotalAmount", inv.GrandTotal.StringFixed(2))
		setText(el, "TotalTaxes", inv.TaxTotal.StringFixed(2))
	}
}

// addPayrollDocs emits one PayrollEntry per slip, with a BenefitsInKind
// block when the slip carries valued benefits. Benefit enrichment never
// blocks the export.
func (b *Builder) addPayrollDocs(source *etree.Element, slips []*entity.SalarySlip) {
	container := source.CreateElement("PayrollEntries")
	for _, slip := range slips {
		el := container.CreateElement("PayrollEntry")
		setText(el, "EntryNumber", slip.ID)
		setText(el, "EntryDate", slip.Period+"-01")
		setText(el, "TotalAmount", slip.Gross.StringFixed(2))

		if len(slip.Benefits) == 0 {
			continue
		}
		benefits := el.CreateElement("BenefitsInKind")
		total := decimal.Zero
		for _, bik := range slip.Benefits {
			if !bik.Valuation.IsPositive() {
				continue
			}
			emp := benefits.CreateElement("Employee")
			setText(emp, "EmployeeID", slip.EmployeeID)
			setText(emp, "MonthlyBenefitsInKind", bik.Valuation.StringFixed(2))
			total = total.Add(bik.Valuation)
		}
		setText(benefits, "TotalBenefitsInKind", total.StringFixed(2))
	}
}

func setText(parent *etree.Element, tag, text string) {
	parent.CreateElement(tag).SetText(text)
}

func companyAddress(c *entity.Company) string {
	out := ""
	for _, part := range []string{c.Address, c.City, c.Province} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

func serialize(doc *etree.Document, fileType string) ([]byte, error) {
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return nil, domain.NewGenerationError(fileType, "serialize", fmt.Errorf("write xml: %w", err))
	}
	return data, nil
}
