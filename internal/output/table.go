package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders rows as an aligned terminal table, columns in the
// projected order. Intended for interactive inspection of small samples.
type TableFormatter struct {
	writer  io.Writer
	columns []string
}

// NewTableFormatter creates a new table formatter writing the given columns.
func NewTableFormatter(w io.Writer, columns []string) *TableFormatter {
	return &TableFormatter{writer: w, columns: columns}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders rows as a table
func (t *TableFormatter) Format(rows []map[string]interface{}) error {
	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(t.columns)

	for _, row := range rows {
		record := make([]string, len(t.columns))
		for i, col := range t.columns {
			record[i] = formatValue(row[col])
		}
		table.Append(record)
	}

	table.Render()
	return nil
}
