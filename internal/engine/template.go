package engine

import "strings"

// Template placeholder tokens substituted literally into the subject and
// body before a task is built. No other templating is supported.
const (
	TokenAccount = "%ACCOUNT%"
	TokenCompany = "%COMPANY%"
)

func renderTemplate(tmpl, account, company string) string {
	out := strings.ReplaceAll(tmpl, TokenAccount, account)
	return strings.ReplaceAll(out, TokenCompany, company)
}
