// Package reader provides access to the columnar shard files of a dataset.
//
// It uses the parquet-go library. Rows are decoded as maps for flexible
// column access; shard row counts come from footer metadata alone, so
// building an index over a folder of shards never materializes row data.
package reader

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// Row is one dataset row keyed by column name.
type Row = map[string]interface{}

// ColumnRange holds the observed value bounds of a column within one row
// group, converted to Go values (float64, string or bool). Bounds are only
// reported when usable statistics exist for every page of the chunk.
type ColumnRange struct {
	Min interface{}
	Max interface{}
}

// Reader reads one parquet shard.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup. The row cursor is created lazily on first read.
type Reader struct {
	path   string
	file   *os.File
	pqFile *parquet.File
	rows   *parquet.Reader
}

// NewReader opens the shard at path and validates it as a parquet file.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "failed to stat file")
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "failed to open parquet file")
	}

	return &Reader{
		path:   path,
		file:   file,
		pqFile: pqFile,
	}, nil
}

// Path returns the path the reader was opened with.
func (r *Reader) Path() string { return r.path }

// NumRows returns the shard's row count from footer metadata without
// touching row data.
func (r *Reader) NumRows() int64 {
	var total int64
	for _, rg := range r.pqFile.RowGroups() {
		total += rg.NumRows()
	}
	return total
}

// Schema returns the shard's parquet schema.
func (r *Reader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// NumRowGroups returns the number of row groups in the shard.
func (r *Reader) NumRowGroups() int {
	return len(r.pqFile.RowGroups())
}

// GroupRows returns the row count of row group i.
func (r *Reader) GroupRows(i int) int64 {
	return r.pqFile.RowGroups()[i].NumRows()
}

// GroupStats returns best-effort per-column value ranges for row group i.
// Columns without usable statistics are absent from the result.
func (r *Reader) GroupStats(i int) map[string]ColumnRange {
	rg := r.pqFile.RowGroups()[i]
	chunks := rg.ColumnChunks()
	stats := make(map[string]ColumnRange)

	for _, field := range r.pqFile.Schema().Fields() {
		leaf, ok := r.pqFile.Schema().Lookup(field.Name())
		if !ok || leaf.ColumnIndex >= len(chunks) {
			continue
		}
		ci, err := chunks[leaf.ColumnIndex].ColumnIndex()
		if err != nil || ci == nil {
			continue
		}
		var lo, hi interface{}
		usable := true
		for page := 0; page < ci.NumPages(); page++ {
			if ci.NullPage(page) {
				continue
			}
			minv := toGoValue(ci.MinValue(page))
			maxv := toGoValue(ci.MaxValue(page))
			if minv == nil || maxv == nil {
				usable = false
				break
			}
			if lo == nil || lessValue(minv, lo) {
				lo = minv
			}
			if hi == nil || lessValue(hi, maxv) {
				hi = maxv
			}
		}
		if usable && lo != nil && hi != nil {
			stats[field.Name()] = ColumnRange{Min: lo, Max: hi}
		}
	}
	return stats
}

// ScanGroup streams the rows of row group i in order, invoking fn for each.
// Errors from fn abort the scan and are returned as-is.
func (r *Reader) ScanGroup(i int, fn func(Row) error) error {
	start := int64(0)
	for g := 0; g < i; g++ {
		start += r.pqFile.RowGroups()[g].NumRows()
	}
	n := r.pqFile.RowGroups()[i].NumRows()

	cursor := r.cursor()
	if err := cursor.SeekToRow(start); err != nil {
		return errors.Wrapf(err, "failed to seek to row %d", start)
	}
	for read := int64(0); read < n; read++ {
		row := make(Row)
		if err := cursor.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrap(err, "failed to read row")
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// ReadRowsAt materializes exactly the rows at the given relative indices.
// Indices must be ascending and within [0, NumRows()); the cursor only ever
// seeks forward.
func (r *Reader) ReadRowsAt(rels []int64) ([]Row, error) {
	cursor := r.cursor()
	out := make([]Row, 0, len(rels))
	for _, rel := range rels {
		if err := cursor.SeekToRow(rel); err != nil {
			return nil, errors.Wrapf(err, "failed to seek to row %d", rel)
		}
		row := make(Row)
		if err := cursor.Read(&row); err != nil {
			return nil, errors.Wrapf(err, "failed to read row %d", rel)
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *Reader) cursor() *parquet.Reader {
	if r.rows == nil {
		r.rows = parquet.NewReader(r.pqFile)
	}
	return r.rows
}

// Close closes the reader and releases associated resources. It is safe to
// call Close multiple times.
func (r *Reader) Close() error {
	if r.rows != nil {
		_ = r.rows.Close()
		r.rows = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// ListShards returns the paths of all parquet shards in dir, sorted by name.
// The sort order is the dataset's canonical shard order.
func ListShards(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid shard directory")
	}
	sort.Strings(matches)
	return matches, nil
}

// toGoValue converts a parquet statistics value into a comparable Go value:
// numerics become float64, byte arrays become string. Unsupported kinds map
// to nil.
func toGoValue(v parquet.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return nil
	}
}

// lessValue orders two values produced by toGoValue of the same column.
func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case bool:
		bv, ok := b.(bool)
		return ok && !av && bv
	default:
		return false
	}
}
