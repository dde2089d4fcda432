// Package export renders ledger records as spreadsheet-friendly CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Veraticus/sharebook/internal/model"
)

// DateLayout is the date format used in exported rows.
const DateLayout = "2006-01-02"

// NoCategory fills the category column of entries without one.
const NoCategory = "—"

// Header is the first CSV line.
var Header = []string{"Date", "Type", "Amount", "Category", "Description", "Notes"}

// Row is one exported transaction.
type Row struct {
	Date        string
	Type        string
	Amount      string
	Category    string
	Description string
	Notes       string
}

func (r Row) fields() []string {
	return []string{r.Date, r.Type, r.Amount, r.Category, r.Description, r.Notes}
}

// TransactionRows formats transactions for export, preserving their order.
func TransactionRows(txns []model.Transaction) []Row {
	rows := make([]Row, 0, len(txns))
	for _, t := range txns {
		category := t.Category
		if category == "" {
			category = NoCategory
		}
		rows = append(rows, Row{
			Date:        t.Date.Format(DateLayout),
			Type:        t.Type.Label(),
			Amount:      t.Amount.StringFixed(2),
			Category:    category,
			Description: t.Description,
			Notes:       t.Notes,
		})
	}
	return rows
}

// Options tune WriteCSV.
type Options struct {
	// Progress is called after each row with the number written so far.
	Progress func(done int)
}

// utf8BOM lets spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a byte order mark, the header and every row.
func WriteCSV(w io.Writer, rows []Row, opts Options) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write byte order mark: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(row.fields()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		if opts.Progress != nil {
			opts.Progress(i + 1)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
