package compliance_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
	"github.com/moztech/fiscal-mz/internal/infrastructure/at"
)

// ── in-memory repositories ────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func newFakeCompanyRepo(companies ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: map[string]*entity.Company{}}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(c *entity.Company) error { r.companies[c.ID] = c; return nil }
func (r *fakeCompanyRepo) Update(c *entity.Company) error { r.companies[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	if c, ok := r.companies[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}
func (r *fakeCompanyRepo) ListAutoSubmit() ([]*entity.Company, error) {
	var out []*entity.Company
	for _, c := range r.companies {
		if c.ATEnabled && c.AutoSubmitSAF {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: map[string]*entity.Customer{}}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error { r.customers[c.ID] = c; return nil }
func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	if c, ok := r.customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}
func (r *fakeCustomerRepo) ListByCompany(companyID string) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeProductRepo struct{}

func (r *fakeProductRepo) Create(*entity.Product) error                         { return nil }
func (r *fakeProductRepo) GetByID(string) (*entity.Product, error)              { return nil, domain.ErrNotFound }
func (r *fakeProductRepo) ListByCompany(string) ([]*entity.Product, error)      { return nil, nil }

type fakeInvoiceRepo struct {
	invoices map[string]*entity.SalesInvoice
	items    map[string][]*entity.InvoiceItem
}

func newFakeInvoiceRepo(invoices ...*entity.SalesInvoice) *fakeInvoiceRepo {
	r := &fakeInvoiceRepo{
		invoices: map[string]*entity.SalesInvoice{},
		items:    map[string][]*entity.InvoiceItem{},
	}
	for _, inv := range invoices {
		r.invoices[inv.ID] = inv
	}
	return r
}

func (r *fakeInvoiceRepo) Create(inv *entity.SalesInvoice) error {
	if inv.ID == "" {
		inv.ID = "inv-" + inv.Number
	}
	r.invoices[inv.ID] = inv
	return nil
}
func (r *fakeInvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	r.items[item.InvoiceID] = append(r.items[item.InvoiceID], item)
	return nil
}
func (r *fakeInvoiceRepo) UpdateATStatus(inv *entity.SalesInvoice) error {
	stored, ok := r.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.ATStatus = inv.ATStatus
	stored.ATReference = inv.ATReference
	stored.ATErrors = inv.ATErrors
	return nil
}
func (r *fakeInvoiceRepo) UpdateStatus(id, status string) error {
	stored, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = status
	return nil
}
func (r *fakeInvoiceRepo) GetByID(id string) (*entity.SalesInvoice, error) {
	if inv, ok := r.invoices[id]; ok {
		cp := *inv
		cp.Items = nil
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}
func (r *fakeInvoiceRepo) GetByName(name string) (*entity.SalesInvoice, error) {
	for _, inv := range r.invoices {
		if inv.Name() == name {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeInvoiceRepo) GetItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	return r.items[invoiceID], nil
}
func (r *fakeInvoiceRepo) ListSubmittedInPeriod(companyID string, from, to time.Time) ([]*entity.SalesInvoice, error) {
	var out []*entity.SalesInvoice
	for _, inv := range r.invoices {
		if inv.CompanyID == companyID && !inv.Date.Before(from) && !inv.Date.After(to) {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeJournalRepo struct {
	entries []*entity.JournalEntry
}

func (r *fakeJournalRepo) Create(e *entity.JournalEntry) error {
	r.entries = append(r.entries, e)
	return nil
}
func (r *fakeJournalRepo) CreateLine(line *entity.JournalLine) error {
	for _, e := range r.entries {
		if e.ID == line.EntryID {
			e.Lines = append(e.Lines, *line)
			return nil
		}
	}
	return domain.ErrNotFound
}
func (r *fakeJournalRepo) ListInPeriod(companyID string, from, to time.Time) ([]*entity.JournalEntry, error) {
	var out []*entity.JournalEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID && !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees []*entity.Employee
}

func (r *fakeEmployeeRepo) Create(e *entity.Employee) error { r.employees = append(r.employees, e); return nil }
func (r *fakeEmployeeRepo) GetByID(id string) (*entity.Employee, error) {
	for _, e := range r.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeEmployeeRepo) ListActiveByCompany(companyID string) ([]*entity.Employee, error) {
	var out []*entity.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID && e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSlipRepo struct {
	slips    []*entity.SalarySlip
	benefits map[string][]*entity.BenefitInKind
}

func newFakeSlipRepo() *fakeSlipRepo {
	return &fakeSlipRepo{benefits: map[string][]*entity.BenefitInKind{}}
}

func (r *fakeSlipRepo) Create(s *entity.SalarySlip) error {
	if s.ID == "" {
		s.ID = "slip-" + s.EmployeeID + "-" + s.Period
	}
	r.slips = append(r.slips, s)
	return nil
}
func (r *fakeSlipRepo) CreateBenefit(b *entity.BenefitInKind) error {
	r.benefits[b.SalarySlipID] = append(r.benefits[b.SalarySlipID], b)
	return nil
}
func (r *fakeSlipRepo) GetByID(id string) (*entity.SalarySlip, error) {
	for _, s := range r.slips {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeSlipRepo) ListByPeriod(companyID, period string) ([]*entity.SalarySlip, error) {
	var out []*entity.SalarySlip
	for _, s := range r.slips {
		if s.CompanyID == companyID && s.Period == period {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r *fakeSlipRepo) GetBenefitsBySlipID(slipID string) ([]*entity.BenefitInKind, error) {
	return r.benefits[slipID], nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []*entity.Transmission
}

func (r *fakeLogRepo) Create(tx *entity.Transmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == "" {
		tx.ID = "log-" + tx.RequestID
	}
	cp := *tx
	r.entries = append(r.entries, &cp)
	return nil
}
func (r *fakeLogRepo) Update(tx *entity.Transmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == tx.ID {
			*e = *tx
			return nil
		}
	}
	return domain.ErrNotFound
}
func (r *fakeLogRepo) GetByID(id string) (*entity.Transmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeLogRepo) GetCompletedByRequestID(companyID, requestID string) (*entity.Transmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.CompanyID == companyID && e.RequestID == requestID && e.Status == entity.TransmissionStatusCompleted {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeLogRepo) ListByCompany(companyID string, limit int) ([]*entity.Transmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Transmission
	for _, e := range r.entries {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSAFTFileRepo struct {
	files []*entity.SAFTFile
}

func (r *fakeSAFTFileRepo) Create(f *entity.SAFTFile) error {
	if f.ID == "" {
		f.ID = "file-" + f.FileType + "-" + f.Period
	}
	r.files = append(r.files, f)
	return nil
}
func (r *fakeSAFTFileRepo) GetByID(id string) (*entity.SAFTFile, error) {
	for _, f := range r.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeSAFTFileRepo) GetLatest(companyID, fileType, period string) (*entity.SAFTFile, error) {
	for i := len(r.files) - 1; i >= 0; i-- {
		f := r.files[i]
		if f.CompanyID == companyID && f.FileType == fileType && f.Period == period {
			return f, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *fakeSAFTFileRepo) ListByCompany(companyID, fileType, period string, limit int) ([]*entity.SAFTFile, error) {
	var out []*entity.SAFTFile
	for i := len(r.files) - 1; i >= 0; i-- {
		f := r.files[i]
		if f.CompanyID != companyID {
			continue
		}
		if fileType != "" && f.FileType != fileType {
			continue
		}
		if period != "" && f.Period != period {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

type fakeTokenRepo struct {
	tokens []*entity.ValidationToken
}

func (r *fakeTokenRepo) Create(t *entity.ValidationToken) error {
	if t.ID == "" {
		t.ID = "token-" + t.Docname
	}
	r.tokens = append(r.tokens, t)
	return nil
}
func (r *fakeTokenRepo) ListByDocument(doctype, docname string) ([]*entity.ValidationToken, error) {
	var out []*entity.ValidationToken
	for i := len(r.tokens) - 1; i >= 0; i-- {
		t := r.tokens[i]
		if t.Doctype == doctype && t.Docname == docname {
			out = append(out, t)
		}
	}
	return out, nil
}

// ── submitter and tx runner fakes ─────────────────────────────────────────────

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	result  *at.Result
	err     error
	lastTyp string
}

func (f *fakeSubmitter) Submit(_ context.Context, _, transmissionType string, _ any) (*at.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastTyp = transmissionType
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTxRunner struct {
	invoiceRepo repository.InvoiceRepository
	slipRepo    repository.SalarySlipRepository
	failWith    error
}

func (r *fakeTxRunner) RunInvoice(_ context.Context, fn func(repository.InvoiceRepository) error) error {
	if r.failWith != nil {
		return r.failWith
	}
	return fn(r.invoiceRepo)
}

func (r *fakeTxRunner) RunPayroll(_ context.Context, fn func(repository.SalarySlipRepository) error) error {
	if r.failWith != nil {
		return r.failWith
	}
	return fn(r.slipRepo)
}

var errBoom = errors.New("boom")
