package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxnKind records how a transaction's signed amount was resolved.
type TxnKind string

const (
	KindCredit TxnKind = "CREDIT"
	KindDebit  TxnKind = "DEBIT"
)

// RawTransaction is one decoded statement row. Pointer fields are nil when
// the source cell was empty or unparseable; Description and ForeignCurrency
// use "" for unset. Values are never mutated after decoding.
type RawTransaction struct {
	Date            *time.Time
	Description     string
	ForeignCurrency string           // Valuta column
	ExchangeRate    *decimal.Decimal // Kurs column
	Credit          *decimal.Decimal // Inn column (inflow)
	Debit           *decimal.Decimal // Ut column (outflow)
}

// ParsedTransaction is the normalized, sign-resolved shape every recorded
// row passes through. Amount is positive for credits and negative for
// debits.
type ParsedTransaction struct {
	Date             time.Time
	Amount           decimal.Decimal
	Description      string
	Kind             TxnKind
	IsPayment        bool
	IsBalanceForward bool
}

// StatementFile aggregates all rows decoded from one statement, in physical
// row order.
type StatementFile struct {
	SheetName    string
	Transactions []RawTransaction
}

// LatestDate returns the maximum date across all decoded rows, including
// rows that later filtering excludes. ok is false when no row carries a
// date.
func (s *StatementFile) LatestDate() (time.Time, bool) {
	var latest time.Time
	var found bool
	for _, txn := range s.Transactions {
		if txn.Date == nil {
			continue
		}
		if !found || txn.Date.After(latest) {
			latest = *txn.Date
			found = true
		}
	}
	return latest, found
}
