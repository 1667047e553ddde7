package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a posted general ledger entry exported in the
// GeneralLedgerEntries section of the SAF-T file.
type JournalEntry struct {
	ID        string
	CompanyID string
	Name      string // document name, e.g. JV-2025-00017
	Date      time.Time
	Reference string
	CreatedAt time.Time

	Lines []JournalLine
}

// JournalLine is one debit or credit line of a journal entry.
type JournalLine struct {
	ID        string
	EntryID   string
	Account   string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Narration string
}
