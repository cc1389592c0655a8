// Package index maps global row indices over a folder of shards to
// (shard, relative row) pairs.
//
// The index is built from shard footer metadata only and is immutable once
// built: shards ordered by path name, each holding a contiguous global row
// span [Start, Stop) with Stop-Start == RowCount. It is rebuilt per sampling
// invocation; there are no incremental updates.
package index

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/reader"
)

// ErrEmptyDataset is returned when the shard list is empty.
var ErrEmptyDataset = errors.New("no shards found")

// Shard is one file of the dataset with its global row span.
type Shard struct {
	Path     string
	RowCount int64
	Start    int64
	Stop     int64
}

// Index is the ordered shard table with cumulative global offsets.
type Index struct {
	shards    []Shard
	totalRows int64
}

// Selection pairs a shard with the relative row indices requested from it,
// in ascending order. GroupByShard returns selections in shard order so
// downstream iteration is deterministic.
type Selection struct {
	Shard Shard
	Rows  []int64
}

// Build scans footer metadata of every shard path and accumulates the
// cumulative offset table. Paths are sorted by name first; row data is
// never materialized. Returns ErrEmptyDataset when paths is empty.
func Build(paths []string, log logrus.FieldLogger) (*Index, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyDataset
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	idx := &Index{shards: make([]Shard, 0, len(sorted))}
	for _, path := range sorted {
		r, err := reader.NewReader(path)
		if err != nil {
			return nil, errors.Wrapf(err, "index build: %s", path)
		}
		count := r.NumRows()
		if err := r.Close(); err != nil {
			return nil, errors.Wrapf(err, "index build: %s", path)
		}

		idx.shards = append(idx.shards, Shard{
			Path:     path,
			RowCount: count,
			Start:    idx.totalRows,
			Stop:     idx.totalRows + count,
		})
		idx.totalRows += count
	}

	log.WithFields(logrus.Fields{
		"shards": len(idx.shards),
		"rows":   idx.totalRows,
	}).Info("shard index built")

	return idx, nil
}

// TotalRows returns the summed row count of all shards.
func (idx *Index) TotalRows() int64 { return idx.totalRows }

// Shards returns the ordered shard table.
func (idx *Index) Shards() []Shard {
	out := make([]Shard, len(idx.shards))
	copy(out, idx.shards)
	return out
}

// Lookup resolves global row index g to its shard and relative row. The
// result is undefined for g outside [0, TotalRows()); callers validate.
// Empty shards occupy no global span and are never returned.
func (idx *Index) Lookup(g int64) (shard int, rel int64) {
	// greatest j with Start[j] <= g; ties (empty shards) resolve to the
	// last such shard, which is the one actually holding g
	j := sort.Search(len(idx.shards), func(i int) bool {
		return idx.shards[i].Start > g
	}) - 1
	for j < len(idx.shards)-1 && g >= idx.shards[j].Stop {
		j++
	}
	return j, g - idx.shards[j].Start
}

// GroupByShard sorts the global indices ascending and partitions them by
// shard with a single linear merge over the offset table, O(n+m) for n
// indices over m shards.
func (idx *Index) GroupByShard(globals []int64) []Selection {
	sorted := make([]int64, len(globals))
	copy(sorted, globals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []Selection
	j := 0
	for _, g := range sorted {
		for j < len(idx.shards)-1 && g >= idx.shards[j].Stop {
			j++
		}
		rel := g - idx.shards[j].Start
		if len(out) == 0 || out[len(out)-1].Shard.Path != idx.shards[j].Path {
			out = append(out, Selection{Shard: idx.shards[j]})
		}
		sel := &out[len(out)-1]
		sel.Rows = append(sel.Rows, rel)
	}
	return out
}
