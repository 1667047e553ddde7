package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// ValidationTokenRepository defines the persistence port for issued QR
// validation tokens. The store is append-only.
type ValidationTokenRepository interface {
	Create(token *entity.ValidationToken) error
	// ListByDocument returns every token issued for the document,
	// newest first.
	ListByDocument(doctype, docname string) ([]*entity.ValidationToken, error)
}
