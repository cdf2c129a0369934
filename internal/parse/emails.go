package parse

import "strings"

func isEmailDelimiter(r rune) bool {
	return r == ',' || r == ';'
}

// Emails splits a raw cell on comma or semicolon only. Slash and space are
// not delimiters here since they can legitimately appear around pasted
// addresses but never inside the lists the sheet uses. Tokens are trimmed
// and must contain "@"; anything else non-empty comes back in bad.
// Duplicates are dropped case-insensitively, keeping the first-seen casing
// and order, since mailbox providers treat addresses case-insensitively in
// practice and double delivery is worse than a lost case variant.
func Emails(raw string) (valid, bad []string) {
	seen := make(map[string]bool)
	for _, token := range strings.FieldsFunc(raw, isEmailDelimiter) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !strings.Contains(token, "@") {
			bad = append(bad, token)
			continue
		}
		key := strings.ToLower(token)
		if seen[key] {
			continue
		}
		seen[key] = true
		valid = append(valid, token)
	}
	return valid, bad
}
