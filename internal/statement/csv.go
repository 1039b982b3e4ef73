package statement

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV reads a statement exported as CSV. Rows may have varying widths.
func ReadCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	table, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}

	rows, err := rowsFromTable(table)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: %w", err)
	}
	return rows, nil
}
