// Package parser decodes DNB Mastercard statement workbooks into raw
// transaction rows.
package parser

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/eivindsb/dnbimport/pkg/models"
	"github.com/eivindsb/dnbimport/pkg/spreadsheet"
)

// ExpectedHeaders is the fixed header tuple of a DNB Mastercard statement.
// The fingerprint check compares the first row against it cell for cell.
var ExpectedHeaders = [6]string{"Dato", "Beløpet gjelder", "Valuta", "Kurs", "Inn", "Ut"}

// dateLayouts are the formats statement date cells render under. DNB uses
// dd.mm.yyyy; the rest cover ISO exports and datetime-formatted cells.
var dateLayouts = []string{
	"02.01.2006",
	"02.01.2006 15:04:05",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
}

type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Identify reports whether the file looks like a DNB Mastercard statement:
// a supported workbook extension and the expected six header cells in the
// first row. Any read failure yields false, never an error.
func (p *Parser) Identify(path string) bool {
	if !spreadsheet.Supported(path) {
		return false
	}

	sheet, err := spreadsheet.Open(path)
	if err != nil {
		p.logger.Debug("identify: unreadable workbook", "file", path, "error", err)
		return false
	}

	for col, want := range ExpectedHeaders {
		if sheet.Cell(0, col) != want {
			return false
		}
	}
	return true
}

// ParseStatement opens the workbook at path and decodes every data row.
// Unlike Identify it surfaces read failures, so callers can tell an
// unreadable file from an empty one.
func (p *Parser) ParseStatement(path string) (*models.StatementFile, error) {
	sheet, err := spreadsheet.Open(path)
	if err != nil {
		return nil, err
	}
	return p.Decode(sheet), nil
}

// Decode turns the cell grid into raw transactions, skipping the header
// row. A row contributes nothing only when both its date and description
// cells are empty; all other rows produce a record, with unparseable
// fields left unset.
func (p *Parser) Decode(sheet *spreadsheet.Sheet) *models.StatementFile {
	result := &models.StatementFile{SheetName: sheet.Name}

	for rowNum := 1; rowNum < len(sheet.Rows); rowNum++ {
		dateCell := strings.TrimSpace(sheet.Cell(rowNum, 0))
		description := strings.TrimSpace(sheet.Cell(rowNum, 1))
		valuta := strings.TrimSpace(sheet.Cell(rowNum, 2))
		kurs := sheet.Cell(rowNum, 3)
		inn := sheet.Cell(rowNum, 4)
		ut := sheet.Cell(rowNum, 5)

		if dateCell == "" && description == "" {
			continue
		}

		txn := models.RawTransaction{
			Description:     description,
			ForeignCurrency: valuta,
			ExchangeRate:    p.number(kurs, rowNum, "Kurs"),
			Credit:          p.number(inn, rowNum, "Inn"),
			Debit:           p.number(ut, rowNum, "Ut"),
		}

		if date, ok := parseDate(dateCell); ok {
			txn.Date = &date
		}

		result.Transactions = append(result.Transactions, txn)
	}

	return result
}

// number parses a monetary cell, logging and dropping the field on junk so
// a bad cell never aborts the row.
func (p *Parser) number(value string, row int, column string) *decimal.Decimal {
	d, err := ParseNorwegianNumber(value)
	if err != nil {
		p.logger.Debug("unparseable number, leaving unset", "row", row+1, "column", column, "value", value)
		return nil
	}
	return d
}

// ParseNorwegianNumber parses a number that may use Norwegian formatting:
// comma as the decimal separator and spaces as group separators. Empty
// input yields nil without error; anything non-numeric is an error.
func ParseNorwegianNumber(value string) (*decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
