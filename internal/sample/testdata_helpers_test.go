package sample

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/schema"
)

// eventRow is the fixture shard schema used across the sampler tests.
type eventRow struct {
	GlobalEventID int64   `parquet:"GlobalEventID"`
	Day           string  `parquet:"Day"`
	Actor1Code    string  `parquet:"Actor1Code"`
	QuadClass     int64   `parquet:"QuadClass"`
	AvgTone       float64 `parquet:"AvgTone"`
}

func testColumns() schema.Columns {
	return schema.New([]string{"GlobalEventID", "Day", "Actor1Code", "QuadClass", "AvgTone"})
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writeShard writes rows as one parquet shard in dir.
func writeShard(t *testing.T, dir, name string, rows []eventRow) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create shard file: %v", err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[eventRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write shard rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close shard writer: %v", err)
	}
	return path
}

// seqRows builds n rows with sequential ids starting at offset.
func seqRows(n int, offset int64, day, actor string) []eventRow {
	rows := make([]eventRow, n)
	for i := range rows {
		rows[i] = eventRow{
			GlobalEventID: offset + int64(i),
			Day:           day,
			Actor1Code:    actor,
			QuadClass:     int64(i%4 + 1),
			AvgTone:       float64(i%21) - 10,
		}
	}
	return rows
}

// threeShardDir creates a folder of three shards with 60 rows total:
// a.parquet ids 0..29 day 20240101 USA, b.parquet ids 30..49 day 20240102
// FRA, c.parquet ids 50..59 day 20240102 USA.
func threeShardDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeShard(t, dir, "a.parquet", seqRows(30, 0, "20240101", "USA"))
	writeShard(t, dir, "b.parquet", seqRows(20, 30, "20240102", "FRA"))
	writeShard(t, dir, "c.parquet", seqRows(10, 50, "20240102", "USA"))
	return dir
}

// rowIDs extracts GlobalEventID from sampled rows.
func rowIDs(t *testing.T, rows []map[string]interface{}) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(rows))
	for i, row := range rows {
		id, ok := row["GlobalEventID"].(int64)
		if !ok {
			t.Fatalf("row %d: GlobalEventID has type %T", i, row["GlobalEventID"])
		}
		ids = append(ids, id)
	}
	return ids
}
