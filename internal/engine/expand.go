// Package engine is the matching-and-dispatch core: it expands spreadsheet
// rows into send tasks against a snapshot of the invoices directory, then
// drives the sequential send loop with retry, rate limiting and dry-run
// semantics.
package engine

import (
	"fmt"
	"path/filepath"

	"github.com/invoicepost/internal/invoice"
	"github.com/invoicepost/internal/model"
	"github.com/invoicepost/internal/parse"
)

// ExpandOptions carries the row-independent inputs of row expansion.
type ExpandOptions struct {
	InvoicesDir string
	Extension   string // invoice file extension including the dot
	Subject     string
	Body        string
}

// ExpandRow turns one spreadsheet row into zero or more send tasks, one per
// account that resolves to exactly one invoice file. Anything wrong with a
// single token or account becomes a diagnostic and never blocks the rest of
// the row: one bad filename among fifty companies must not stop the other
// forty-nine.
func ExpandRow(row model.Row, filenames []string, opts ExpandOptions) ([]model.SendTask, []model.Diagnostic) {
	var diags []model.Diagnostic

	accounts, badAccounts := parse.Accounts(row.RawAccounts)
	for _, token := range badAccounts {
		diags = append(diags, model.Diagnostic{
			Company: row.Company,
			Message: fmt.Sprintf("account token %q is not a 5-digit number", token),
		})
	}

	recipients, badEmails := parse.Emails(row.RawEmails)
	for _, token := range badEmails {
		diags = append(diags, model.Diagnostic{
			Company: row.Company,
			Message: fmt.Sprintf("email token %q is not an address", token),
		})
	}

	if len(accounts) == 0 {
		diags = append(diags, model.Diagnostic{Company: row.Company, Message: "no valid accounts"})
		return nil, diags
	}
	if len(recipients) == 0 {
		diags = append(diags, model.Diagnostic{Company: row.Company, Message: "no valid emails"})
		return nil, diags
	}

	var tasks []model.SendTask
	for _, account := range accounts {
		name, err := invoice.Match(account, filenames, opts.Extension)
		if err != nil {
			diags = append(diags, model.Diagnostic{
				Company: row.Company,
				Account: account,
				Message: err.Error(),
			})
			continue
		}
		tasks = append(tasks, model.SendTask{
			Account:    account,
			Company:    row.Company,
			Recipients: recipients,
			PDFPath:    filepath.Join(opts.InvoicesDir, name),
			Subject:    renderTemplate(opts.Subject, account, row.Company),
			Body:       renderTemplate(opts.Body, account, row.Company),
		})
	}
	return tasks, diags
}

// Plan expands every row in order. Task order is spreadsheet row order,
// then account order within a row, which fixes the dispatch order and makes
// run reports reproducible.
func Plan(rows []model.Row, filenames []string, opts ExpandOptions) ([]model.SendTask, []model.Diagnostic) {
	var tasks []model.SendTask
	var diags []model.Diagnostic
	for _, row := range rows {
		rowTasks, rowDiags := ExpandRow(row, filenames, opts)
		tasks = append(tasks, rowTasks...)
		diags = append(diags, rowDiags...)
	}
	return tasks, diags
}
