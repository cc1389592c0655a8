package sample

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/index"
	"github.com/vegasq/parqsample/internal/reader"
)

// IndexedSampler draws uniform without-replacement samples across the whole
// dataset by resolving global row indices through a shard index. Only the
// shards actually holding selected rows are opened, and only the selected
// rows are materialized.
type IndexedSampler struct {
	idx *index.Index
	rng *RNG
	log logrus.FieldLogger
}

// NewIndexedSampler builds a fresh shard index over the parquet files in
// dir. Fails with index.ErrEmptyDataset when the folder holds no shards.
func NewIndexedSampler(dir string, seed int64, log logrus.FieldLogger) (*IndexedSampler, error) {
	shards, err := reader.ListShards(dir)
	if err != nil {
		return nil, err
	}
	idx, err := index.Build(shards, log)
	if err != nil {
		return nil, err
	}
	return &IndexedSampler{idx: idx, rng: NewRNG(seed), log: log}, nil
}

// Index exposes the underlying shard index.
func (s *IndexedSampler) Index() *index.Index { return s.idx }

// Sample draws n distinct rows uniformly across all shards. Fails with
// ErrInsufficientData when n exceeds the dataset's total row count. Output
// rows are in shard-then-row order, not randomized; callers needing random
// order shuffle downstream.
func (s *IndexedSampler) Sample(n int64) ([]reader.Row, error) {
	total := s.idx.TotalRows()
	if n > total {
		return nil, errors.Wrapf(ErrInsufficientData, "requested %d of %d rows", n, total)
	}
	if n <= 0 {
		return nil, nil
	}

	globals, err := s.rng.ChooseWithoutReplacement(total, n)
	if err != nil {
		return nil, err
	}
	selections := s.idx.GroupByShard(globals)

	s.log.WithFields(logrus.Fields{
		"rows":   n,
		"shards": len(selections),
	}).Info("indexed sampling")

	out := make([]reader.Row, 0, n)
	for _, sel := range selections {
		r, err := reader.NewReader(sel.Shard.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "indexed sample: %s", sel.Shard.Path)
		}
		rows, err := r.ReadRowsAt(sel.Rows)
		closeErr := r.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "indexed sample: %s", sel.Shard.Path)
		}
		if closeErr != nil {
			return nil, errors.Wrapf(closeErr, "indexed sample: %s", sel.Shard.Path)
		}
		out = append(out, rows...)
	}
	return out, nil
}
