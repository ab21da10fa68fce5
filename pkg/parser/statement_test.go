package parser

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/eivindsb/dnbimport/pkg/spreadsheet"
)

func testParser() *Parser {
	return New(log.New(io.Discard))
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

func testSheet(rows [][]string) *spreadsheet.Sheet {
	return &spreadsheet.Sheet{Name: "Sheet1", Rows: rows}
}

func headerRow() []string {
	return []string{"Dato", "Beløpet gjelder", "Valuta", "Kurs", "Inn", "Ut"}
}

func writeFixture(t *testing.T, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func TestDecode(t *testing.T) {
	sheet := testSheet([][]string{
		headerRow(),
		{"24.10.2025", "REMA 1000 OSLO", "", "", "", "150,50"},
		{"25.10.2025", "Innbetaling", "", "", "5000,00", ""},
		{"", "", "", "", "", ""},
		{"26.10.2025", "AMAZON.COM", "USD", "10,45", "", "250,00"},
		{"not a date", "MYSTERY SHOP", "", "", "", "99,90"},
	})

	stmt := testParser().Decode(sheet)

	if stmt.SheetName != "Sheet1" {
		t.Errorf("expected sheet name Sheet1, got %q", stmt.SheetName)
	}
	if len(stmt.Transactions) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(stmt.Transactions))
	}

	first := stmt.Transactions[0]
	if first.Date == nil || first.Date.Format("2006-01-02") != "2025-10-24" {
		t.Errorf("expected date 2025-10-24, got %v", first.Date)
	}
	if first.Description != "REMA 1000 OSLO" {
		t.Errorf("expected description REMA 1000 OSLO, got %q", first.Description)
	}
	if first.Credit != nil {
		t.Errorf("expected no credit, got %v", first.Credit)
	}
	if first.Debit == nil || !first.Debit.Equal(mustDecimal(t, "150.50")) {
		t.Errorf("expected debit 150.50, got %v", first.Debit)
	}

	second := stmt.Transactions[1]
	if second.Credit == nil || !second.Credit.Equal(mustDecimal(t, "5000")) {
		t.Errorf("expected credit 5000, got %v", second.Credit)
	}
	if second.Debit != nil {
		t.Errorf("expected no debit, got %v", second.Debit)
	}

	foreign := stmt.Transactions[2]
	if foreign.ForeignCurrency != "USD" {
		t.Errorf("expected foreign currency USD, got %q", foreign.ForeignCurrency)
	}
	if foreign.ExchangeRate == nil || !foreign.ExchangeRate.Equal(mustDecimal(t, "10.45")) {
		t.Errorf("expected exchange rate 10.45, got %v", foreign.ExchangeRate)
	}

	undated := stmt.Transactions[3]
	if undated.Date != nil {
		t.Errorf("expected unset date for unparseable cell, got %v", undated.Date)
	}
	if undated.Debit == nil {
		t.Error("expected debit to survive an unparseable date")
	}
}

func TestDecodeUnparseableNumber(t *testing.T) {
	sheet := testSheet([][]string{
		headerRow(),
		{"24.10.2025", "BROKEN ROW", "", "abc", "", "xyz"},
	})

	stmt := testParser().Decode(sheet)

	if len(stmt.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(stmt.Transactions))
	}
	txn := stmt.Transactions[0]
	if txn.ExchangeRate != nil {
		t.Errorf("expected unset exchange rate, got %v", txn.ExchangeRate)
	}
	if txn.Debit != nil {
		t.Errorf("expected unset debit, got %v", txn.Debit)
	}
}

func TestDecodeHeadersOnly(t *testing.T) {
	stmt := testParser().Decode(testSheet([][]string{headerRow()}))
	if len(stmt.Transactions) != 0 {
		t.Errorf("expected no transactions, got %d", len(stmt.Transactions))
	}
}

func TestDecodeShortRows(t *testing.T) {
	sheet := testSheet([][]string{
		headerRow(),
		{"24.10.2025", "SHORT ROW"},
	})

	stmt := testParser().Decode(sheet)
	if len(stmt.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(stmt.Transactions))
	}
	if stmt.Transactions[0].Credit != nil || stmt.Transactions[0].Debit != nil {
		t.Error("expected unset amounts on a short row")
	}
}

func TestParseNorwegianNumber(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantNil bool
		wantErr bool
	}{
		{input: "150,50", want: "150.50"},
		{input: "150.50", want: "150.50"},
		{input: "100", want: "100"},
		{input: "1 234,56", want: "1234.56"},
		{input: "  42,0  ", want: "42"},
		{input: "", wantNil: true},
		{input: "   ", wantNil: true},
		{input: "abc", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseNorwegianNumber(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseNorwegianNumber(%q): expected error, got %v", tc.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNorwegianNumber(%q): unexpected error %v", tc.input, err)
			continue
		}
		if tc.wantNil {
			if got != nil {
				t.Errorf("ParseNorwegianNumber(%q): expected nil, got %v", tc.input, got)
			}
			continue
		}
		if got == nil || !got.Equal(mustDecimal(t, tc.want)) {
			t.Errorf("ParseNorwegianNumber(%q): expected %s, got %v", tc.input, tc.want, got)
		}
	}
}

func TestIdentify(t *testing.T) {
	p := testParser()

	good := writeFixture(t, "statement.xlsx", [][]interface{}{
		{"Dato", "Beløpet gjelder", "Valuta", "Kurs", "Inn", "Ut"},
		{"24.10.2025", "REMA 1000 OSLO", "", "", "", "150,50"},
	})
	if !p.Identify(good) {
		t.Error("expected valid statement to identify")
	}
	// Same file, same result
	if !p.Identify(good) {
		t.Error("expected identify to be a pure predicate")
	}

	altered := writeFixture(t, "altered.xlsx", [][]interface{}{
		{"Dato", "Beløpet gjelder", "Valuta", "Kurs", "Inn", "Utgift"},
		{"24.10.2025", "REMA 1000 OSLO", "", "", "", "150,50"},
	})
	if p.Identify(altered) {
		t.Error("expected altered header to fail identification")
	}

	if p.Identify(filepath.Join(t.TempDir(), "missing.xlsx")) {
		t.Error("expected missing file to fail identification")
	}

	if p.Identify("statement.csv") {
		t.Error("expected unsupported extension to fail identification")
	}
}

func TestParseStatementMissingFile(t *testing.T) {
	_, err := testParser().ParseStatement(filepath.Join(t.TempDir(), "missing.xlsx"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseStatementFixture(t *testing.T) {
	path := writeFixture(t, "statement.xlsx", [][]interface{}{
		{"Dato", "Beløpet gjelder", "Valuta", "Kurs", "Inn", "Ut"},
		{"24.10.2025", "REMA 1000 OSLO", "", "", "", "150,50"},
		{"25.10.2025", "Innbetaling", "", "", "5000,00", ""},
	})

	stmt, err := testParser().ParseStatement(path)
	if err != nil {
		t.Fatalf("ParseStatement failed: %v", err)
	}
	if len(stmt.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(stmt.Transactions))
	}
	if stmt.Transactions[0].Debit == nil || !stmt.Transactions[0].Debit.Equal(mustDecimal(t, "150.50")) {
		t.Errorf("expected debit 150.50, got %v", stmt.Transactions[0].Debit)
	}
}
