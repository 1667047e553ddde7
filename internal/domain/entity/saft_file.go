package entity

import "time"

// SAF-T file types.
const (
	SAFTTypeSales    = "sales"
	SAFTTypePayroll  = "payroll"
	SAFTTypeComplete = "complete"
)

// SAFTFile is a generated SAF-T export kept on disk and tracked in the
// database. Checksum covers the canonical XML bytes.
type SAFTFile struct {
	ID          string
	CompanyID   string
	FileType    string // see SAFTType* constants
	Period      string // YYYY-MM
	Filename    string
	Path        string
	Checksum    string // SHA-256 hex
	SizeBytes   int64
	DocumentCount int
	GeneratedAt time.Time
	CreatedAt   time.Time
}
