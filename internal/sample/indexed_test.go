package sample

import (
	"errors"
	"testing"

	"github.com/vegasq/parqsample/internal/index"
)

func TestIndexedSampleTooLarge(t *testing.T) {
	dir := threeShardDir(t)
	s, err := NewIndexedSampler(dir, 42, testLogger())
	if err != nil {
		t.Fatalf("NewIndexedSampler failed: %v", err)
	}
	if _, err := s.Sample(61); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestIndexedSampleEmptyDir(t *testing.T) {
	if _, err := NewIndexedSampler(t.TempDir(), 42, testLogger()); !errors.Is(err, index.ErrEmptyDataset) {
		t.Errorf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestIndexedSampleWholeDataset(t *testing.T) {
	dir := threeShardDir(t)
	s, err := NewIndexedSampler(dir, 42, testLogger())
	if err != nil {
		t.Fatalf("NewIndexedSampler failed: %v", err)
	}

	rows, err := s.Sample(60)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(rows) != 60 {
		t.Fatalf("got %d rows, want 60", len(rows))
	}

	seen := make(map[int64]int)
	for _, id := range rowIDs(t, rows) {
		seen[id]++
	}
	for id := int64(0); id < 60; id++ {
		if seen[id] != 1 {
			t.Errorf("id %d sampled %d times, want exactly once", id, seen[id])
		}
	}
}

func TestIndexedSampleSubset(t *testing.T) {
	dir := threeShardDir(t)
	s, err := NewIndexedSampler(dir, 42, testLogger())
	if err != nil {
		t.Fatalf("NewIndexedSampler failed: %v", err)
	}

	rows, err := s.Sample(15)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(rows) != 15 {
		t.Fatalf("got %d rows, want 15", len(rows))
	}

	// ids are distinct and output arrives in shard-then-row order
	seen := make(map[int64]bool)
	prev := int64(-1)
	for _, id := range rowIDs(t, rows) {
		if seen[id] {
			t.Errorf("id %d sampled twice", id)
		}
		seen[id] = true
		if id <= prev {
			t.Errorf("output not in shard-then-row order: %d after %d", id, prev)
		}
		prev = id
	}
}

func TestIndexedSampleDeterministic(t *testing.T) {
	dir := threeShardDir(t)

	run := func() []int64 {
		s, err := NewIndexedSampler(dir, 123, testLogger())
		if err != nil {
			t.Fatalf("NewIndexedSampler failed: %v", err)
		}
		rows, err := s.Sample(20)
		if err != nil {
			t.Fatalf("Sample failed: %v", err)
		}
		return rowIDs(t, rows)
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs with equal seeds diverged at row %d: %d != %d", i, a[i], b[i])
		}
	}
}

func TestIndexedSampleZero(t *testing.T) {
	dir := threeShardDir(t)
	s, err := NewIndexedSampler(dir, 42, testLogger())
	if err != nil {
		t.Fatalf("NewIndexedSampler failed: %v", err)
	}
	rows, err := s.Sample(0)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Sample(0) returned %d rows", len(rows))
	}
}
