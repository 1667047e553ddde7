package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moztech/fiscal-mz/internal/domain"
	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
)

var _ repository.SAFTFileRepository = (*SAFTFileRepo)(nil)

// SAFTFileRepo implements SAFTFileRepository (usable with pool or tx).
type SAFTFileRepo struct {
	q Querier
}

// NewSAFTFileRepository builds the adapter. Pass a pool or tx (Querier).
func NewSAFTFileRepository(q Querier) *SAFTFileRepo {
	return &SAFTFileRepo{q: q}
}

const saftFileColumns = `id, company_id, file_type, period, filename, COALESCE(path, ''), checksum,
		size_bytes, document_count, generated_at, created_at`

// Create persists the metadata of a generated file.
func (r *SAFTFileRepo) Create(file *entity.SAFTFile) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	query := `
		INSERT INTO saft_files (id, company_id, file_type, period, filename, path, checksum, size_bytes, document_count, generated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		file.ID, file.CompanyID, file.FileType, file.Period, file.Filename,
		nullIfEmpty(file.Path), file.Checksum, file.SizeBytes, file.DocumentCount,
		file.GeneratedAt, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saft file: %w", err)
	}
	return nil
}

// GetByID fetches one generated file record.
func (r *SAFTFileRepo) GetByID(id string) (*entity.SAFTFile, error) {
	query := `SELECT ` + saftFileColumns + ` FROM saft_files WHERE id = $1`
	f, err := scanSAFTFile(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get saft file: %w", err)
	}
	return f, nil
}

// GetLatest returns the most recent generation for the type and period.
func (r *SAFTFileRepo) GetLatest(companyID, fileType, period string) (*entity.SAFTFile, error) {
	query := `SELECT ` + saftFileColumns + `
		FROM saft_files
		WHERE company_id = $1 AND file_type = $2 AND period = $3
		ORDER BY generated_at DESC
		LIMIT 1`
	f, err := scanSAFTFile(r.q.QueryRow(context.Background(), query, companyID, fileType, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get latest saft file: %w", err)
	}
	return f, nil
}

// ListByCompany returns the newest generated files for the company,
// optionally narrowed by file type and period.
func (r *SAFTFileRepo) ListByCompany(companyID, fileType, period string, limit int) ([]*entity.SAFTFile, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + saftFileColumns + `
		FROM saft_files
		WHERE company_id = $1
		  AND ($2 = '' OR file_type = $2)
		  AND ($3 = '' OR period = $3)
		ORDER BY generated_at DESC
		LIMIT $4`
	rows, err := r.q.Query(context.Background(), query, companyID, fileType, period, limit)
	if err != nil {
		return nil, fmt.Errorf("list saft files: %w", err)
	}
	defer rows.Close()

	var out []*entity.SAFTFile
	for rows.Next() {
		f, err := scanSAFTFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saft file: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanSAFTFile(row pgx.Row) (*entity.SAFTFile, error) {
	var f entity.SAFTFile
	err := row.Scan(
		&f.ID, &f.CompanyID, &f.FileType, &f.Period, &f.Filename, &f.Path,
		&f.Checksum, &f.SizeBytes, &f.DocumentCount, &f.GeneratedAt, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
