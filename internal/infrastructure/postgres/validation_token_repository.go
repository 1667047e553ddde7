package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
	"github.com/moztech/fiscal-mz/internal/domain/repository"
)

var _ repository.ValidationTokenRepository = (*ValidationTokenRepo)(nil)

// ValidationTokenRepo implements ValidationTokenRepository (usable with
// pool or tx).
type ValidationTokenRepo struct {
	q Querier
}

// NewValidationTokenRepository builds the adapter. Pass a pool or tx (Querier).
func NewValidationTokenRepository(q Querier) *ValidationTokenRepo {
	return &ValidationTokenRepo{q: q}
}

const validationTokenColumns = `id, company_id, doctype, docname, hash, COALESCE(content, ''), created_at`

// Create appends an issued token. Tokens are never updated or deleted.
func (r *ValidationTokenRepo) Create(token *entity.ValidationToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	query := `
		INSERT INTO validation_tokens (id, company_id, doctype, docname, hash, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		token.ID, token.CompanyID, token.Doctype, token.Docname,
		token.Hash, nullIfEmpty(token.Content), token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert validation token: %w", err)
	}
	return nil
}

// ListByDocument returns every token issued for the document, newest first.
func (r *ValidationTokenRepo) ListByDocument(doctype, docname string) ([]*entity.ValidationToken, error) {
	query := `SELECT ` + validationTokenColumns + `
		FROM validation_tokens
		WHERE doctype = $1 AND docname = $2
		ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, doctype, docname)
	if err != nil {
		return nil, fmt.Errorf("list validation tokens: %w", err)
	}
	defer rows.Close()

	var out []*entity.ValidationToken
	for rows.Next() {
		tok, err := scanValidationToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan validation token: %w", err)
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

func scanValidationToken(row pgx.Row) (*entity.ValidationToken, error) {
	var tok entity.ValidationToken
	err := row.Scan(
		&tok.ID, &tok.CompanyID, &tok.Doctype, &tok.Docname,
		&tok.Hash, &tok.Content, &tok.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}
