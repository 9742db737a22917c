package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/clinicore/customer-intake/internal/models"
)

// ParseCSV reads a CSV body into an ordered table. The first line is the
// header. Rows shorter than the header leave the missing columns unset so
// the validator's defaulting can fill them.
func ParseCSV(data []byte) (*models.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	table := &models.Table{Columns: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(table.Rows)+2, err)
		}

		row := make(models.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
