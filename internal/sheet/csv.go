package sheet

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/invoicepost/internal/model"
)

func (s Source) readCSV() ([]model.Row, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may have trailing cells missing

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", s.Path, err)
	}

	var rows []model.Row
	for i, record := range records {
		if i == 0 {
			continue // header
		}
		rows = append(rows, s.toRow(record))
	}
	return rows, nil
}
