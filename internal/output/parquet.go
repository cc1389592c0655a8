package output

import (
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// ParquetFormatter writes rows as one parquet output table.
//
// The output schema is the projected column list with every column optional
// string, matching the storage schema the upstream conversion step uses for
// shards. Values are stringified; nulls stay null.
type ParquetFormatter struct {
	writer  io.Writer
	columns []string
}

// NewParquetFormatter creates a parquet formatter writing the given columns.
func NewParquetFormatter(w io.Writer, columns []string) *ParquetFormatter {
	return &ParquetFormatter{writer: w, columns: columns}
}

// SetOutput sets the output writer
func (p *ParquetFormatter) SetOutput(w io.Writer) {
	p.writer = w
}

// Format writes all rows and closes the parquet writer, finalizing the
// file footer.
func (p *ParquetFormatter) Format(rows []map[string]interface{}) error {
	group := parquet.Group{}
	for _, col := range p.columns {
		group[col] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("sample", group)

	writer := parquet.NewGenericWriter[map[string]interface{}](p.writer, schema)
	for _, row := range rows {
		record := make(map[string]interface{}, len(p.columns))
		for _, col := range p.columns {
			if v, ok := row[col]; ok && v != nil {
				record[col] = formatValue(v)
			}
		}
		if _, err := writer.Write([]map[string]interface{}{record}); err != nil {
			_ = writer.Close()
			return errors.Wrap(err, "failed to write output row")
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to close parquet writer")
	}
	return nil
}
