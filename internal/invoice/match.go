// Package invoice resolves account numbers to invoice files on disk. The
// filename contract is "<account>_*.pdf"; matching is by literal prefix and
// case-insensitive extension, and any ambiguity is an error rather than a
// silent pick.
package invoice

import (
	"fmt"
	"strings"
)

// NotFoundError means no file in the invoices directory matches the account.
type NotFoundError struct {
	Account string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no invoice file found for account %s", e.Account)
}

// AmbiguousError means more than one file matches the account. The engine
// never picks one: sending the wrong invoice is a business-level failure, so
// the operator has to resolve the directory instead.
type AmbiguousError struct {
	Account    string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous invoice match for account %s: %s", e.Account, strings.Join(e.Candidates, ", "))
}

// Match returns the single filename that starts with "<account>_" and ends
// with ext (case-insensitive). ext must include the leading dot. Zero
// matches yield a *NotFoundError, several a *AmbiguousError.
func Match(account string, filenames []string, ext string) (string, error) {
	prefix := account + "_"
	suffix := strings.ToLower(ext)

	var candidates []string
	for _, name := range filenames {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), suffix) {
			continue
		}
		candidates = append(candidates, name)
	}

	switch len(candidates) {
	case 0:
		return "", &NotFoundError{Account: account}
	case 1:
		return candidates[0], nil
	default:
		return "", &AmbiguousError{Account: account, Candidates: candidates}
	}
}
