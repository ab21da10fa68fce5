// Package importer turns decoded DNB Mastercard statement rows into
// balanced ledger entries.
package importer

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/eivindsb/dnbimport/pkg/models"
	"github.com/eivindsb/dnbimport/pkg/parser"
)

const (
	// DefaultCurrency is used when the account config leaves currency
	// unset.
	DefaultCurrency = "NOK"

	// PaymentDescription marks a repayment made against the card.
	PaymentDescription = "Innbetaling"

	// BalanceForwardDescription marks the carried-over prior balance line.
	BalanceForwardDescription = "Skyldig beløp fra forrige faktura"

	defaultFlag = "*"
)

// Classifier supplies balancing postings for a sign-resolved transaction.
// A nil, nil return means no rule matched and no fallback applies; the
// entry then keeps only its primary posting.
type Classifier interface {
	Classify(txn models.ParsedTransaction, raw models.RawTransaction, primary models.Posting) ([]models.Posting, error)
}

// Config holds the static per-account importer settings. It is read-only
// for the lifetime of an import run.
type Config struct {
	AccountName        string
	Currency           string
	SkipBalanceForward bool
	SkipPayments       bool
}

type Importer struct {
	cfg        Config
	classifier Classifier
	parser     *parser.Parser
	logger     *log.Logger
}

func New(cfg Config, classifier Classifier, logger *log.Logger) *Importer {
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return &Importer{
		cfg:        cfg,
		classifier: classifier,
		parser:     parser.New(logger),
		logger:     logger,
	}
}

// Identify reports whether the file is a DNB Mastercard statement.
func (i *Importer) Identify(path string) bool {
	return i.parser.Identify(path)
}

// Account returns the ledger account the statement belongs to.
func (i *Importer) Account() string {
	return i.cfg.AccountName
}

// Filename returns a descriptive name for imported output, keyed by the
// account leaf and the original file name.
func (i *Importer) Filename(path string) string {
	parts := strings.Split(i.cfg.AccountName, ":")
	suffix := parts[len(parts)-1]
	return fmt.Sprintf("dnb_mastercard.%s.%s", suffix, filepath.Base(path))
}

// Date returns the statement's reporting date: the latest date across all
// decoded rows, filtered or not. Unreadable or dateless files yield the
// current date.
func (i *Importer) Date(path string) time.Time {
	stmt, err := i.parser.ParseStatement(path)
	if err != nil {
		i.logger.Debug("date: unreadable statement", "file", path, "error", err)
		return time.Now()
	}
	if latest, ok := stmt.LatestDate(); ok {
		return latest
	}
	return time.Now()
}

// Extract parses the statement at path and returns one balanced entry per
// recordable row. File-level read failures are returned; row-level
// problems are logged and skipped.
func (i *Importer) Extract(path string) ([]models.Entry, error) {
	stmt, err := i.parser.ParseStatement(path)
	if err != nil {
		return nil, err
	}
	return i.ExtractStatement(stmt, path), nil
}

// ExtractStatement runs the filter, sign resolution and classification
// pipeline over already-decoded rows, in original order.
func (i *Importer) ExtractStatement(stmt *models.StatementFile, path string) []models.Entry {
	var entries []models.Entry

	for idx, raw := range stmt.Transactions {
		rowIdx := idx + 1
		parsed, ok := i.resolve(raw, rowIdx)
		if !ok {
			continue
		}

		entry, err := i.buildEntry(parsed, raw, path, rowIdx)
		if err != nil {
			i.logger.Info("dropping transaction", "row", rowIdx, "error", err)
			continue
		}
		entries = append(entries, *entry)
	}

	return entries
}

// resolve applies the skip policies and derives the signed amount. Credit
// wins when both credit and debit happen to be set.
func (i *Importer) resolve(raw models.RawTransaction, rowIdx int) (models.ParsedTransaction, bool) {
	var none models.ParsedTransaction

	if raw.Date == nil {
		i.logger.Debug("skipping transaction: missing date", "row", rowIdx)
		return none, false
	}

	isBalanceForward := raw.Description == BalanceForwardDescription
	isPayment := raw.Description == PaymentDescription

	if i.cfg.SkipBalanceForward && isBalanceForward {
		i.logger.Debug("skipping balance forward entry", "row", rowIdx)
		return none, false
	}
	if i.cfg.SkipPayments && isPayment {
		i.logger.Debug("skipping payment entry", "row", rowIdx)
		return none, false
	}

	var amount decimal.Decimal
	var kind models.TxnKind
	switch {
	case raw.Credit != nil:
		amount = *raw.Credit
		kind = models.KindCredit
	case raw.Debit != nil:
		amount = raw.Debit.Neg()
		kind = models.KindDebit
	default:
		i.logger.Debug("skipping transaction: no amount", "row", rowIdx)
		return none, false
	}

	return models.ParsedTransaction{
		Date:             *raw.Date,
		Amount:           amount,
		Description:      raw.Description,
		Kind:             kind,
		IsPayment:        isPayment,
		IsBalanceForward: isBalanceForward,
	}, true
}

// buildEntry creates the primary posting and delegates to the classifier
// for the balancing side.
func (i *Importer) buildEntry(parsed models.ParsedTransaction, raw models.RawTransaction, path string, rowIdx int) (*models.Entry, error) {
	primary := models.Posting{
		Account:  i.cfg.AccountName,
		Amount:   parsed.Amount,
		Currency: i.cfg.Currency,
	}

	postings := []models.Posting{primary}
	if i.classifier != nil {
		balancing, err := i.classifier.Classify(parsed, raw, primary)
		if err != nil {
			return nil, err
		}
		postings = append(postings, balancing...)
	}

	return &models.Entry{
		Date:      parsed.Date,
		Flag:      defaultFlag,
		Narration: parsed.Description,
		Meta: []models.MetaItem{
			{Key: "type", Value: string(parsed.Kind)},
			{Key: "source-file", Value: path},
			{Key: "source-row", Value: strconv.Itoa(rowIdx)},
		},
		Postings: postings,
	}, nil
}
