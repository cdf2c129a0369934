package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/invoicepost/internal/model"
)

func (s Source) readXLSX() ([]model.Row, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
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
