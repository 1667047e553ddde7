package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// TransmissionLogRepository defines the persistence port for the AT
// transmission ledger.
type TransmissionLogRepository interface {
	Create(tx *entity.Transmission) error
	// Update overwrites status, checksum, reference and detail for the
	// given ledger entry.
	Update(tx *entity.Transmission) error
	GetByID(id string) (*entity.Transmission, error)
	// GetCompletedByRequestID returns the most recent completed entry for
	// the request id, or domain.ErrNotFound when none exists. This is the
	// idempotency guard before any transmission attempt.
	GetCompletedByRequestID(companyID, requestID string) (*entity.Transmission, error)
	ListByCompany(companyID string, limit int) ([]*entity.Transmission, error)
}
