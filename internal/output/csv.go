package output

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

// CSVFormatter outputs rows as CSV with a header row, columns in the
// projected order.
type CSVFormatter struct {
	writer  io.Writer
	columns []string
}

// NewCSVFormatter creates a new CSV formatter writing the given columns.
func NewCSVFormatter(w io.Writer, columns []string) *CSVFormatter {
	return &CSVFormatter{writer: w, columns: columns}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes rows as CSV
func (c *CSVFormatter) Format(rows []map[string]interface{}) error {
	csvWriter := csv.NewWriter(c.writer)

	if err := csvWriter.Write(c.columns); err != nil {
		return err
	}

	for _, row := range rows {
		record := make([]string, len(c.columns))
		for i, col := range c.columns {
			record[i] = formatValue(row[col])
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(err, "failed to flush CSV writer")
	}
	return nil
}
