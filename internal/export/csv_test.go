package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/sharebook/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []model.Transaction {
	return []model.Transaction{
		{
			Type:        model.TransactionExpense,
			Amount:      decimal.RequireFromString("1500"),
			Category:    "Rent",
			Description: "March rent",
			Date:        time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			Type:        model.TransactionIncome,
			Amount:      decimal.RequireFromString("250.5"),
			Description: `Order "42", paid`,
			Notes:       "cash",
			Date:        time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestTransactionRows(t *testing.T) {
	rows := TransactionRows(sampleTransactions())
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Date:        "2025-03-01",
		Type:        "Expense",
		Amount:      "1500.00",
		Category:    "Rent",
		Description: "March rent",
	}, rows[0])
	assert.Equal(t, "Income", rows[1].Type)
	assert.Equal(t, "250.50", rows[1].Amount)
	assert.Equal(t, NoCategory, rows[1].Category)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	var progress []int

	err := WriteCSV(&buf, TransactionRows(sampleTransactions()), Options{
		Progress: func(done int) { progress = append(progress, done) },
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, progress)

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "output starts with a BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, `Order "42", paid`, records[2][4], "quotes and commas survive")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, Options{}))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{Header}, records)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_WriterError(t *testing.T) {
	err := WriteCSV(failingWriter{}, TransactionRows(sampleTransactions()), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
