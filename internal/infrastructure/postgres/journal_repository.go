package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
)

var _ repository.JournalRepository = (*JournalRepo)(nil)

// JournalRepo implements JournalRepository (usable with pool or tx).
type JournalRepo struct {
	q Querier
}

// NewJournalRepository builds the adapter. Pass a pool or tx (Querier).
func NewJournalRepository(q Querier) *JournalRepo {
	return &JournalRepo{q: q}
}

// Create persists a journal entry header.
func (r *JournalRepo) Create(entry *entity.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO journal_entries (id, company_id, name, date, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.CompanyID, entry.Name, entry.Date, nullIfEmpty(entry.Reference), entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// CreateLine persists one journal line.
func (r *JournalRepo) CreateLine(line *entity.JournalLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO journal_lines (id, entry_id, account, debit, credit, narration)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.EntryID, line.Account, line.Debit, line.Credit, nullIfEmpty(line.Narration),
	)
	if err != nil {
		return fmt.Errorf("insert journal line: %w", err)
	}
	return nil
}

// ListInPeriod returns entries in the date range with their lines.
func (r *JournalRepo) ListInPeriod(companyID string, from, to time.Time) ([]*entity.JournalEntry, error) {
	query := `
		SELECT id, company_id, name, date, COALESCE(reference, ''), created_at
		FROM journal_entries
		WHERE company_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date, name`
	rows, err := r.q.Query(context.Background(), query, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.JournalEntry
	for rows.Next() {
		var e entity.JournalEntry
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Name, &e.Date, &e.Reference, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range out {
		lines, err := r.linesByEntry(e.ID)
		if err != nil {
			return nil, err
		}
		e.Lines = lines
	}
	return out, nil
}

func (r *JournalRepo) linesByEntry(entryID string) ([]entity.JournalLine, error) {
	query := `
		SELECT id, entry_id, account, debit, credit, COALESCE(narration, '')
		FROM journal_lines WHERE entry_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, entryID)
	if err != nil {
		return nil, fmt.Errorf("list journal lines: %w", err)
	}
	defer rows.Close()

	var out []entity.JournalLine
	for rows.Next() {
		var l entity.JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.Account, &l.Debit, &l.Credit, &l.Narration); err != nil {
			return nil, fmt.Errorf("scan journal line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
