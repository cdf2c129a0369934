package invoice

import (
	"fmt"
	"os"
)

// DirLister snapshots the plain files of one directory, non-recursively.
// The engine lists once per run so files added or removed mid-run cannot
// change matching results.
type DirLister struct {
	Dir string
}

func (l DirLister) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("read invoices directory %s: %w", l.Dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
