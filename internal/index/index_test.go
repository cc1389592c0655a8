package index

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

type eventRow struct {
	GlobalEventID int64  `parquet:"GlobalEventID"`
	Day           string `parquet:"Day"`
}

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// writeShard writes n rows as one parquet shard and returns its path.
func writeShard(t *testing.T, dir, name string, n int, idOffset int64) string {
	t.Helper()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create shard file: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows := make([]eventRow, n)
	for i := range rows {
		rows[i] = eventRow{GlobalEventID: idOffset + int64(i), Day: "20240101"}
	}

	writer := parquet.NewGenericWriter[eventRow](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write shard rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close shard writer: %v", err)
	}
	return path
}

// buildTestIndex creates shards with the given row counts, in path order,
// and builds an index over them.
func buildTestIndex(t *testing.T, counts []int) *Index {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(counts))
	offset := int64(0)
	for i, n := range counts {
		paths[i] = writeShard(t, dir, string(rune('a'+i))+".parquet", n, offset)
		offset += int64(n)
	}
	idx, err := Build(paths, testLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return idx
}

func TestBuildEmpty(t *testing.T) {
	if _, err := Build(nil, testLogger()); !errors.Is(err, ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestBuildOffsets(t *testing.T) {
	idx := buildTestIndex(t, []int{10, 20, 5})

	if idx.TotalRows() != 35 {
		t.Errorf("TotalRows = %d, want 35", idx.TotalRows())
	}

	shards := idx.Shards()
	var sum int64
	for i, s := range shards {
		if s.Stop-s.Start != s.RowCount {
			t.Errorf("shard %d: span %d..%d does not match count %d", i, s.Start, s.Stop, s.RowCount)
		}
		if i > 0 && shards[i-1].Stop != s.Start {
			t.Errorf("shard %d: start %d not contiguous with previous stop %d", i, s.Start, shards[i-1].Stop)
		}
		sum += s.RowCount
	}
	if sum != idx.TotalRows() {
		t.Errorf("row count sum %d != TotalRows %d", sum, idx.TotalRows())
	}
}

func TestLookupEveryRow(t *testing.T) {
	idx := buildTestIndex(t, []int{10, 20, 5})

	for g := int64(0); g < idx.TotalRows(); g++ {
		shard, rel := idx.Lookup(g)
		s := idx.Shards()[shard]
		if g < s.Start || g >= s.Stop {
			t.Fatalf("Lookup(%d) -> shard %d with span [%d, %d)", g, shard, s.Start, s.Stop)
		}
		if rel != g-s.Start {
			t.Fatalf("Lookup(%d) rel = %d, want %d", g, rel, g-s.Start)
		}
		if rel < 0 || rel >= s.RowCount {
			t.Fatalf("Lookup(%d) rel %d outside [0, %d)", g, rel, s.RowCount)
		}
	}
}

// An empty shard contributes no global span: with counts [10, 0, 5] the
// global index 10 belongs to the third shard at relative row 0.
func TestLookupSkipsEmptyShard(t *testing.T) {
	idx := buildTestIndex(t, []int{10, 0, 5})

	if idx.TotalRows() != 15 {
		t.Fatalf("TotalRows = %d, want 15", idx.TotalRows())
	}
	shard, rel := idx.Lookup(10)
	if shard != 2 || rel != 0 {
		t.Errorf("Lookup(10) = (%d, %d), want (2, 0)", shard, rel)
	}
	shard, rel = idx.Lookup(9)
	if shard != 0 || rel != 9 {
		t.Errorf("Lookup(9) = (%d, %d), want (0, 9)", shard, rel)
	}
	shard, rel = idx.Lookup(14)
	if shard != 2 || rel != 4 {
		t.Errorf("Lookup(14) = (%d, %d), want (2, 4)", shard, rel)
	}
}

func TestGroupByShard(t *testing.T) {
	idx := buildTestIndex(t, []int{10, 0, 5})

	selections := idx.GroupByShard([]int64{12, 3, 10, 0, 9})

	var flat []int64
	for _, sel := range selections {
		for i, rel := range sel.Rows {
			if rel < 0 || rel >= sel.Shard.RowCount {
				t.Errorf("shard %s: rel %d outside [0, %d)", sel.Shard.Path, rel, sel.Shard.RowCount)
			}
			if i > 0 && sel.Rows[i-1] >= rel {
				t.Errorf("shard %s: rel indices not strictly ascending: %v", sel.Shard.Path, sel.Rows)
			}
			flat = append(flat, sel.Shard.Start+rel)
		}
	}

	// concatenated in shard order, mapped back through offsets, the
	// result is the sorted input
	want := []int64{0, 3, 9, 10, 12}
	if len(flat) != len(want) {
		t.Fatalf("got %d indices back, want %d", len(flat), len(want))
	}
	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("index %d: got global %d, want %d", i, flat[i], want[i])
		}
	}
}

func TestGroupByShardSingleShard(t *testing.T) {
	idx := buildTestIndex(t, []int{10})

	selections := idx.GroupByShard([]int64{5, 1, 8})
	if len(selections) != 1 {
		t.Fatalf("got %d selections, want 1", len(selections))
	}
	want := []int64{1, 5, 8}
	for i, rel := range selections[0].Rows {
		if rel != want[i] {
			t.Errorf("rel %d = %d, want %d", i, rel, want[i])
		}
	}
}

func TestBuildSortsByPath(t *testing.T) {
	dir := t.TempDir()
	// create in reverse name order
	b := writeShard(t, dir, "b.parquet", 3, 100)
	a := writeShard(t, dir, "a.parquet", 7, 0)

	idx, err := Build([]string{b, a}, testLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	shards := idx.Shards()
	if filepath.Base(shards[0].Path) != "a.parquet" {
		t.Errorf("first shard is %s, want a.parquet", shards[0].Path)
	}
	if shards[0].RowCount != 7 || shards[1].RowCount != 3 {
		t.Errorf("row counts = %d, %d; want 7, 3", shards[0].RowCount, shards[1].RowCount)
	}
}
