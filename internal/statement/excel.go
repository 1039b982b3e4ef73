package statement

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first sheet of an Excel statement.
func ReadXLSX(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ReadXLSX: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ReadXLSX: workbook has no sheets")
	}

	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ReadXLSX: reading sheet %q: %w", sheets[0], err)
	}

	rows, err := rowsFromTable(table)
	if err != nil {
		return nil, fmt.Errorf("ReadXLSX: %w", err)
	}
	return rows, nil
}
