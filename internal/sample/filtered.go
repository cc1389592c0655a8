package sample

import (
	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/filter"
	"github.com/vegasq/parqsample/internal/index"
	"github.com/vegasq/parqsample/internal/reader"
	"github.com/vegasq/parqsample/internal/schema"
)

// FilteredSampler streams rows matching a compiled filter out of a shard
// folder and feeds them to a reservoir, never holding more than one shard's
// decoded rows plus O(k) retained rows.
//
// The filter spec is compiled and validated up front; scans never start on
// a malformed request. During the scan, row groups whose column statistics
// rule out every leaf are skipped without decoding (predicate pushdown);
// rows of surviving groups are checked against the full expression before
// they count as seen.
type FilteredSampler struct {
	dir  string
	expr filter.Expr
	rng  *RNG
	log  logrus.FieldLogger
}

// NewFilteredSampler compiles spec against the declared column set and
// returns a sampler over the shards in dir. A nil or empty spec means no
// filter: every row passes.
func NewFilteredSampler(dir string, spec map[string]interface{}, seed int64, cols schema.Columns, log logrus.FieldLogger) (*FilteredSampler, error) {
	expr, err := filter.Compile(spec, cols)
	if err != nil {
		return nil, err
	}
	return &FilteredSampler{
		dir:  dir,
		expr: expr,
		rng:  NewRNG(seed),
		log:  log,
	}, nil
}

// Sample draws up to n rows uniformly from the filtered stream in a single
// pass. When the filtered population is smaller than n the whole population
// is returned. n <= 0 yields no rows.
func (s *FilteredSampler) Sample(n int64) ([]reader.Row, error) {
	if n <= 0 {
		return nil, nil
	}
	res := NewReservoir(n, s.rng)
	if err := s.scan(res.Offer); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"seen":     res.Seen(),
		"retained": len(res.Rows()),
	}).Info("filtered sampling done")
	return res.Rows(), nil
}

// SampleStratified draws up to nPerGroup rows per distinct value of column,
// each group sampled by its own reservoir. Rows with a null group value
// form their own bucket. Total output is at most groups x nPerGroup and
// may be smaller when groups are small.
func (s *FilteredSampler) SampleStratified(column string, nPerGroup int64, cols schema.Columns) ([]reader.Row, error) {
	if err := cols.Validate(column); err != nil {
		return nil, err
	}
	if nPerGroup <= 0 {
		return nil, nil
	}
	res := NewStratifiedReservoirs(column, nPerGroup, s.rng)
	if err := s.scan(res.Offer); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"groups": res.Groups(),
		"column": column,
	}).Info("stratified sampling done")
	return res.Rows(), nil
}

// Filter returns every row matching the filter, in scan order. Unlike the
// sampling entry points this materializes the whole filtered population;
// callers are expected to filter selectively.
func (s *FilteredSampler) Filter() ([]reader.Row, error) {
	var out []reader.Row
	if err := s.scan(func(row reader.Row) { out = append(out, row) }); err != nil {
		return nil, err
	}
	s.log.WithField("rows", len(out)).Info("filter extraction done")
	return out, nil
}

// scan walks all shards in path order and offers each row that passes the
// full filter, sequentially. A shard that fails to open or decode is
// logged and skipped; the sample proceeds with a reduced population.
func (s *FilteredSampler) scan(offer func(reader.Row)) error {
	shards, err := reader.ListShards(s.dir)
	if err != nil {
		return err
	}
	if len(shards) == 0 {
		return index.ErrEmptyDataset
	}

	for _, path := range shards {
		if err := s.scanShard(path, offer); err != nil {
			s.log.WithError(err).WithField("shard", path).Warn("skipping unreadable shard")
		}
	}
	return nil
}

func (s *FilteredSampler) scanShard(path string, offer func(reader.Row)) error {
	r, err := reader.NewReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	for g := 0; g < r.NumRowGroups(); g++ {
		if s.expr != nil && !s.expr.MaybeMatch(r.GroupStats(g)) {
			s.log.WithFields(logrus.Fields{
				"shard": path,
				"group": g,
				"rows":  r.GroupRows(g),
			}).Debug("row group pruned by filter statistics")
			continue
		}
		err := r.ScanGroup(g, func(row reader.Row) error {
			if s.expr != nil {
				ok, err := s.expr.Match(row)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			offer(row)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
