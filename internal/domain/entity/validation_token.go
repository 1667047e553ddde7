package entity

import "time"

// ValidationToken is one issued QR validation credential. Tokens are
// append-only; a document may accumulate several over reissues. The
// stored hash is advisory: verification always recomputes it from the
// server secret.
type ValidationToken struct {
	ID        string
	CompanyID string
	Doctype   string
	Docname   string
	Hash      string
	Content   string // URL or JSON payload embedded in the QR
	CreatedAt time.Time
}
