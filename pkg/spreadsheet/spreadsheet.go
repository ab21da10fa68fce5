// Package spreadsheet reads statement workbooks into a plain cell grid so
// the decoding logic never touches a workbook library directly.
package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxRows bounds how many rows are read from a legacy workbook. Statement
// files carry at most a few hundred rows.
const maxRows = 10000

// Sheet is the first worksheet of a statement workbook as formatted cell
// text, rows in physical order.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the cell at (row, col) or "" when the row is short or out of
// range. Both indexes are zero-based.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	if col < 0 || col >= len(s.Rows[row]) {
		return ""
	}
	return s.Rows[row][col]
}

// Supported reports whether the file extension is a readable workbook
// format.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// Open reads the active worksheet of an .xlsx or legacy .xls workbook.
func Open(path string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return openXLSX(path)
	case ".xls":
		return openXLS(path)
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}
}

func openXLSX(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %w", name, err)
	}

	return &Sheet{Name: name, Rows: rows}, nil
}

func openXLS(path string) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	workbook, err := xls.OpenReader(file, "cp1252")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}

	var name string
	if ws := workbook.GetSheet(0); ws != nil {
		name = ws.Name
	}

	return &Sheet{Name: name, Rows: workbook.ReadAllCells(maxRows)}, nil
}
