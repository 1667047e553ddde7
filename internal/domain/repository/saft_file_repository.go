package repository

import "github.com/moztech/fiscal-mz/internal/domain/entity"

// SAFTFileRepository defines the persistence port for generated SAF-T files.
type SAFTFileRepository interface {
	Create(file *entity.SAFTFile) error
	GetByID(id string) (*entity.SAFTFile, error)
	// GetLatest returns the most recently generated file for the
	// company, file type and period, or domain.ErrNotFound.
	GetLatest(companyID, fileType, period string) (*entity.SAFTFile, error)
	// ListByCompany returns the newest files, optionally narrowed by
	// file type and period. Empty filter values match everything.
	ListByCompany(companyID, fileType, period string, limit int) ([]*entity.SAFTFile, error)
}
