package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/invoicepost/internal/model"
)

var testColumns = Columns{
	Company: model.DefaultCompanyColumn,
	Account: model.DefaultAccountColumn,
	Emails:  model.DefaultEmailsColumn,
}

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTestCSV(t,
		"Company,Account,C,D,E,F,Emails\n"+
			"Acme,12345,,,,,billing@acme.example\n"+
			"Globex,\"67890, 67891\",,,,,a@globex.example; b@globex.example\n")

	rows, err := Source{Path: path, Columns: testColumns}.Rows()
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (header skipped), got %d", len(rows))
	}
	if rows[0].Company != "Acme" || rows[0].RawAccounts != "12345" || rows[0].RawEmails != "billing@acme.example" {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].RawAccounts != "67890, 67891" {
		t.Errorf("quoted multi-account cell mangled: %q", rows[1].RawAccounts)
	}
}

func TestReadCSVShortRows(t *testing.T) {
	path := writeTestCSV(t,
		"Company,Account\n"+
			"Acme,12345\n")

	rows, err := Source{Path: path, Columns: testColumns}.Rows()
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if rows[0].RawEmails != "" {
		t.Errorf("missing email column should read as empty, got %q", rows[0].RawEmails)
	}
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.xlsx")

	f := excelize.NewFile()
	sw := [][]any{
		{"Company", "Account", nil, nil, nil, nil, "Emails"},
		{"Acme", "12345", nil, nil, nil, nil, "billing@acme.example"},
		{"Globex", "67890", nil, nil, nil, nil, "a@globex.example"},
	}
	for i, record := range sw {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cellRef, &record); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := Source{Path: path, Columns: testColumns}.Rows()
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Company != "Acme" || rows[0].RawAccounts != "12345" {
		t.Errorf("unexpected first row %+v", rows[0])
	}
	if rows[1].RawEmails != "a@globex.example" {
		t.Errorf("unexpected second row %+v", rows[1])
	}
}

func TestReadXLSXNamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.xlsx")

	f := excelize.NewFile()
	if _, err := f.NewSheet("Combined"); err != nil {
		t.Fatal(err)
	}
	header := []any{"Company", "Account", nil, nil, nil, nil, "Emails"}
	record := []any{"Acme", "12345", nil, nil, nil, nil, "billing@acme.example"}
	if err := f.SetSheetRow("Combined", "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Combined", "A2", &record); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rows, err := Source{Path: path, Sheet: "Combined", Columns: testColumns}.Rows()
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Company != "Acme" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestUnsupportedExtension(t *testing.T) {
	if _, err := (Source{Path: "accounts.ods", Columns: testColumns}).Rows(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	if _, err := (Source{Path: path, Columns: testColumns}).Rows(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
