// Package parse turns raw multi-valued spreadsheet cells into normalized
// account-number and email lists. Each field type has its own delimiter
// policy; both preserve first-seen order and drop duplicates.
package parse

import "strings"

func isAccountDelimiter(r rune) bool {
	switch r {
	case ',', ';', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

func isFiveDigits(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Accounts splits a raw cell on comma, semicolon, slash or whitespace runs
// and keeps tokens that are exactly five decimal digits, leading zeros
// preserved. Tokens that are non-empty but not five digits come back in bad
// so the caller can report them without aborting the row. An empty or
// whitespace-only cell yields nothing at all.
func Accounts(raw string) (valid, bad []string) {
	seen := make(map[string]bool)
	for _, token := range strings.FieldsFunc(raw, isAccountDelimiter) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !isFiveDigits(token) {
			bad = append(bad, token)
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		valid = append(valid, token)
	}
	return valid, bad
}
