package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Posting is one account + signed amount line inside a balanced entry.
type Posting struct {
	Account  string
	Amount   decimal.Decimal
	Currency string
}

// Negated returns a copy of the posting with the amount sign flipped.
func (p Posting) Negated() Posting {
	return Posting{Account: p.Account, Amount: p.Amount.Neg(), Currency: p.Currency}
}

// MetaItem is one key/value pair of entry metadata. Order is preserved
// when rendering.
type MetaItem struct {
	Key   string
	Value string
}

// Entry is a finalized ledger transaction: the primary posting against the
// statement account plus zero or more balancing postings from the
// classifier.
type Entry struct {
	Date      time.Time
	Flag      string
	Narration string
	Meta      []MetaItem
	Postings  []Posting
}

// SumPostings returns the sum of all posting amounts. Zero for a balanced
// entry with at least one balancing posting.
func (e *Entry) SumPostings() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range e.Postings {
		sum = sum.Add(p.Amount)
	}
	return sum
}
