package repository

import (
	"time"

	"github.com/moztech/fiscal-mz/internal/domain/entity"
)

// JournalRepository defines the persistence port for general ledger entries.
type JournalRepository interface {
	Create(entry *entity.JournalEntry) error
	CreateLine(line *entity.JournalLine) error
	// ListInPeriod returns posted entries with a posting date inside
	// [from, to], ordered by date then name, lines included.
	ListInPeriod(companyID string, from, to time.Time) ([]*entity.JournalEntry, error)
}
