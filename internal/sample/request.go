package sample

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/reader"
	"github.com/vegasq/parqsample/internal/schema"
)

// Mode selects a sampling strategy.
type Mode string

const (
	ModeIndexed    Mode = "indexed"
	ModeFiltered   Mode = "filtered"
	ModeStratified Mode = "stratified"
	ModeDaily      Mode = "daily"
	ModeFilterOnly Mode = "filter-only"
)

// Request describes one sampling invocation.
type Request struct {
	Mode           Mode
	N              int64
	Seed           int64
	Columns        []string               // output projection; empty = full declared set
	FilterSpec     map[string]interface{} // filtered/stratified/filter-only modes
	PerDay         int64                  // daily mode
	StratifyColumn string                 // stratified mode
	NPerGroup      int64                  // stratified mode
	DayColumn      string                 // daily mode; default "Day"
}

// Run validates the request against the declared column set, executes the
// chosen strategy over the shards in dir and returns the sampled rows
// projected to the requested columns.
func Run(dir string, req Request, cols schema.Columns, log logrus.FieldLogger) ([]reader.Row, error) {
	projection := cols.Names()
	if len(req.Columns) > 0 {
		var err error
		projection, err = cols.Select(req.Columns)
		if err != nil {
			return nil, err
		}
	}

	var (
		rows []reader.Row
		err  error
	)
	switch req.Mode {
	case ModeIndexed:
		var s *IndexedSampler
		s, err = NewIndexedSampler(dir, req.Seed, log)
		if err == nil {
			rows, err = s.Sample(req.N)
		}
	case ModeFiltered:
		var s *FilteredSampler
		s, err = NewFilteredSampler(dir, req.FilterSpec, req.Seed, cols, log)
		if err == nil {
			rows, err = s.Sample(req.N)
		}
	case ModeStratified:
		var s *FilteredSampler
		s, err = NewFilteredSampler(dir, req.FilterSpec, req.Seed, cols, log)
		if err == nil {
			rows, err = s.SampleStratified(req.StratifyColumn, req.NPerGroup, cols)
		}
	case ModeFilterOnly:
		var s *FilteredSampler
		s, err = NewFilteredSampler(dir, req.FilterSpec, req.Seed, cols, log)
		if err == nil {
			rows, err = s.Filter()
		}
	case ModeDaily:
		s := NewDailyBoundedSampler(dir, req.DayColumn, req.Seed, log)
		rows, err = s.Sample(req.PerDay)
	default:
		return nil, errors.Errorf("unknown sampling mode %q", req.Mode)
	}
	if err != nil {
		return nil, err
	}

	return ProjectRows(rows, projection), nil
}

// ProjectRows restricts every row to the given columns. Columns absent from
// a row are carried as nulls so all output rows share one shape.
func ProjectRows(rows []reader.Row, columns []string) []reader.Row {
	out := make([]reader.Row, len(rows))
	for i, row := range rows {
		projected := make(reader.Row, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				projected[col] = v
			} else {
				projected[col] = nil
			}
		}
		out[i] = projected
	}
	return out
}
