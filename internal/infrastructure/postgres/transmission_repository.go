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

var _ repository.TransmissionLogRepository = (*TransmissionLogRepo)(nil)

// TransmissionLogRepo implements TransmissionLogRepository (usable with
// pool or tx).
type TransmissionLogRepo struct {
	q Querier
}

// NewTransmissionLogRepository builds the adapter. Pass a pool or tx (Querier).
func NewTransmissionLogRepository(q Querier) *TransmissionLogRepo {
	return &TransmissionLogRepo{q: q}
}

const transmissionColumns = `id, company_id, request_id, type, doctype, docname, status,
		COALESCE(checksum, ''), COALESCE(at_reference, ''), COALESCE(detail, ''),
		COALESCE(http_status, 0), COALESCE(response_digest, ''),
		submitted_at, created_at, updated_at`

// Create persists a new ledger entry, normally in Pending status.
func (r *TransmissionLogRepo) Create(tx *entity.Transmission) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transmission_logs (id, company_id, request_id, type, doctype, docname, status, checksum, at_reference, detail, http_status, response_digest, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.CompanyID, tx.RequestID, tx.Type, tx.Doctype, tx.Docname, tx.Status,
		nullIfEmpty(tx.Checksum), nullIfEmpty(tx.ATReference), nullIfEmpty(tx.Detail),
		tx.HTTPStatus, nullIfEmpty(tx.RespDigest),
		tx.SubmittedAt, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transmission: %w", err)
	}
	return nil
}

// Update overwrites the outcome fields of a ledger entry.
func (r *TransmissionLogRepo) Update(tx *entity.Transmission) error {
	query := `
		UPDATE transmission_logs SET
			status = $2, checksum = $3, at_reference = $4, detail = $5,
			http_status = $6, response_digest = $7, submitted_at = $8, updated_at = NOW()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.Status,
		nullIfEmpty(tx.Checksum), nullIfEmpty(tx.ATReference), nullIfEmpty(tx.Detail),
		tx.HTTPStatus, nullIfEmpty(tx.RespDigest),
		tx.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("update transmission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID fetches one ledger entry.
func (r *TransmissionLogRepo) GetByID(id string) (*entity.Transmission, error) {
	query := `SELECT ` + transmissionColumns + ` FROM transmission_logs WHERE id = $1`
	tx, err := scanTransmission(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transmission: %w", err)
	}
	return tx, nil
}

// GetCompletedByRequestID returns the newest completed entry for the
// request id. Used as the idempotency guard before transmitting.
func (r *TransmissionLogRepo) GetCompletedByRequestID(companyID, requestID string) (*entity.Transmission, error) {
	query := `SELECT ` + transmissionColumns + `
		FROM transmission_logs
		WHERE company_id = $1 AND request_id = $2 AND status = $3
		ORDER BY submitted_at DESC
		LIMIT 1`
	tx, err := scanTransmission(r.q.QueryRow(context.Background(), query,
		companyID, requestID, entity.TransmissionStatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get completed transmission: %w", err)
	}
	return tx, nil
}

// ListByCompany returns the newest ledger entries for the company.
func (r *TransmissionLogRepo) ListByCompany(companyID string, limit int) ([]*entity.Transmission, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + transmissionColumns + `
		FROM transmission_logs
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transmissions: %w", err)
	}
	defer rows.Close()

	var out []*entity.Transmission
	for rows.Next() {
		tx, err := scanTransmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transmission: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func scanTransmission(row pgx.Row) (*entity.Transmission, error) {
	var tx entity.Transmission
	err := row.Scan(
		&tx.ID, &tx.CompanyID, &tx.RequestID, &tx.Type, &tx.Doctype, &tx.Docname,
		&tx.Status, &tx.Checksum, &tx.ATReference, &tx.Detail,
		&tx.HTTPStatus, &tx.RespDigest,
		&tx.SubmittedAt, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
