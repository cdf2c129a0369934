// Package sheet reads the accounts spreadsheet into rows for the engine.
// Only the three configured columns are consumed; everything else in the
// file is ignored.
package sheet

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/invoicepost/internal/model"
)

// Columns are zero-based indexes into each spreadsheet row.
type Columns struct {
	Company int
	Account int
	Emails  int
}

// Source reads rows from an .xlsx or .csv file. The first row is treated
// as a header and skipped. An empty Sheet selects the workbook's first
// sheet; it is ignored for CSV files.
type Source struct {
	Path    string
	Sheet   string
	Columns Columns
}

func (s Source) Rows() ([]model.Row, error) {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		return s.readXLSX()
	case ".csv":
		return s.readCSV()
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format %q", filepath.Ext(s.Path))
	}
}

// cell returns the idx-th cell of a record, or "" when the row is shorter.
// Trailing empty cells are routinely absent from parsed rows.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (s Source) toRow(record []string) model.Row {
	return model.Row{
		Company:     cell(record, s.Columns.Company),
		RawAccounts: cell(record, s.Columns.Account),
		RawEmails:   cell(record, s.Columns.Emails),
	}
}
