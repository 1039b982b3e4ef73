// Package statement turns bank statement files into debit transactions ready
// for classification.
package statement

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned for statement formats with no reader.
	ErrUnsupportedFormat = errors.New("unsupported statement format")

	// ErrMissingColumn is returned when a required header cannot be found.
	ErrMissingColumn = errors.New("missing statement column")
)

// Header names looked up case-insensitively in CSV and XLSX statements.
const (
	ColumnDate        = "Date"
	ColumnDescription = "Transaction Note"
	ColumnAmount      = "Amount"
	ColumnType        = "Transaction Type"
)

// RawRow is one statement line as text, before any cleaning.
type RawRow struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

// Stats counts what Normalize kept and why it dropped the rest.
type Stats struct {
	Rows      int `json:"rows"`
	Kept      int `json:"kept"`
	Blank     int `json:"blank"`
	NonDebit  int `json:"non_debit"`
	BadAmount int `json:"bad_amount"`
}

// Normalize keeps the debit rows of a statement. Rows with a blank
// description or amount are dropped, the type is trimmed and capitalised
// before comparing with "Debit", and kept amounts are stored as absolute
// values.
func Normalize(rows []RawRow) ([]domain.Transaction, Stats) {
	stats := Stats{Rows: len(rows)}
	txs := make([]domain.Transaction, 0, len(rows))

	for _, r := range rows {
		desc := strings.TrimSpace(r.Description)
		rawAmount := strings.TrimSpace(r.Amount)
		if desc == "" || rawAmount == "" {
			stats.Blank++
			continue
		}

		if capitalize(strings.TrimSpace(r.Type)) != domain.TransactionTypeDebit {
			stats.NonDebit++
			continue
		}

		amount, ok := ParseAmount(rawAmount)
		if !ok {
			stats.BadAmount++
			continue
		}

		txs = append(txs, domain.Transaction{
			Date:        strings.TrimSpace(r.Date),
			Description: desc,
			Amount:      math.Abs(amount),
			Type:        domain.TransactionTypeDebit,
		})
	}

	stats.Kept = len(txs)
	return txs, stats
}

var amountReplacer = strings.NewReplacer(",", "", "₹", "", "INR", "", "Rs.", "", " ", "")

// ParseAmount reads a statement amount such as "1,250.00", "-500" or
// "₹ 99.5". Non-finite values are rejected.
func ParseAmount(s string) (float64, bool) {
	clean := amountReplacer.Replace(strings.TrimSpace(s))
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = "-" + strings.Trim(clean, "()")
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := []rune(strings.ToLower(s))
	return strings.ToUpper(string(lower[0])) + string(lower[1:])
}

// columns holds the index of each required header within a row.
type columns struct {
	date, description, amount, typ int
}

// locateHeader finds the first row that carries every required header and
// returns the index of that row with the column positions. When no row
// qualifies, the error names the headers missing from the first row.
func locateHeader(rows [][]string) (int, columns, error) {
	var firstMissing []string
	for i, row := range rows {
		idx := map[string]int{}
		for j, name := range row {
			key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
			if _, seen := idx[key]; !seen {
				idx[key] = j
			}
		}

		cols := columns{date: -1, description: -1, amount: -1, typ: -1}
		var missing []string
		for name, dst := range map[string]*int{
			ColumnDate:        &cols.date,
			ColumnDescription: &cols.description,
			ColumnAmount:      &cols.amount,
			ColumnType:        &cols.typ,
		} {
			j, ok := idx[strings.ToLower(name)]
			if !ok {
				missing = append(missing, name)
				continue
			}
			*dst = j
		}
		if len(missing) == 0 {
			return i, cols, nil
		}
		if i == 0 {
			firstMissing = missing
		}
	}
	if len(firstMissing) == 0 {
		firstMissing = []string{ColumnDate, ColumnDescription, ColumnAmount, ColumnType}
	}
	sort.Strings(firstMissing)
	return 0, columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(firstMissing, ", "))
}

// rowsFromTable converts the data rows after the header into RawRows.
// Short rows read missing cells as blank.
func rowsFromTable(table [][]string) ([]RawRow, error) {
	start, cols, err := locateHeader(table)
	if err != nil {
		return nil, err
	}

	out := make([]RawRow, 0, len(table)-start-1)
	for _, rec := range table[start+1:] {
		out = append(out, RawRow{
			Date:        cell(rec, cols.date),
			Description: cell(rec, cols.description),
			Amount:      cell(rec, cols.amount),
			Type:        cell(rec, cols.typ),
		})
	}
	return out, nil
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
