package sample

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/vegasq/parqsample/internal/index"
	"github.com/vegasq/parqsample/internal/reader"
)

// DefaultDayColumn is the day-like column daily sampling groups by.
const DefaultDayColumn = "Day"

// DailyBoundedSampler draws up to a fixed number of rows per day, per
// shard, without replacement.
//
// Known limitation: grouping happens inside each shard, not across the
// whole dataset. A day whose rows span multiple shards can contribute up to
// perDay rows from each of those shards, so per-day totals are a lower
// bound on a true global per-day cap, not equal to it.
type DailyBoundedSampler struct {
	dir       string
	dayColumn string
	rng       *RNG
	log       logrus.FieldLogger
}

// NewDailyBoundedSampler returns a sampler over the shards in dir grouping
// by dayColumn (DefaultDayColumn when empty).
func NewDailyBoundedSampler(dir string, dayColumn string, seed int64, log logrus.FieldLogger) *DailyBoundedSampler {
	if dayColumn == "" {
		dayColumn = DefaultDayColumn
	}
	return &DailyBoundedSampler{
		dir:       dir,
		dayColumn: dayColumn,
		rng:       NewRNG(seed),
		log:       log,
	}
}

// Sample draws min(perDay, groupSize) rows uniformly without replacement
// from every per-shard day group. Output is flattened in sorted day order;
// within a day, shard order. Shards that fail to decode are logged and
// skipped. perDay <= 0 yields no rows.
func (s *DailyBoundedSampler) Sample(perDay int64) ([]reader.Row, error) {
	if perDay <= 0 {
		return nil, nil
	}

	shards, err := reader.ListShards(s.dir)
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, index.ErrEmptyDataset
	}

	daily := make(map[string][]reader.Row)
	for _, path := range shards {
		if err := s.sampleShard(path, perDay, daily); err != nil {
			s.log.WithError(err).WithField("shard", path).Warn("skipping unreadable shard")
		}
	}

	days := make([]string, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Strings(days)

	var out []reader.Row
	for _, day := range days {
		out = append(out, daily[day]...)
	}

	s.log.WithFields(logrus.Fields{
		"days": len(days),
		"rows": len(out),
	}).Info("daily sampling done")
	return out, nil
}

// sampleShard loads one shard, groups its rows by day and draws from each
// group independently. Only this shard's rows are held in memory.
func (s *DailyBoundedSampler) sampleShard(path string, perDay int64, daily map[string][]reader.Row) error {
	r, err := reader.NewReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	groups := make(map[string][]reader.Row)
	var dayOrder []string
	for g := 0; g < r.NumRowGroups(); g++ {
		err := r.ScanGroup(g, func(row reader.Row) error {
			v, ok := row[s.dayColumn]
			if !ok || v == nil {
				return nil
			}
			day := fmt.Sprint(v)
			if _, seen := groups[day]; !seen {
				dayOrder = append(dayOrder, day)
			}
			groups[day] = append(groups[day], row)
			return nil
		})
		if err != nil {
			return err
		}
	}

	// deterministic draw order: RNG consumption must not depend on map
	// iteration order
	sort.Strings(dayOrder)
	for _, day := range dayOrder {
		rows := groups[day]
		size := perDay
		if int64(len(rows)) < size {
			size = int64(len(rows))
		}
		picks, err := s.rng.ChooseWithoutReplacement(int64(len(rows)), size)
		if err != nil {
			return err
		}
		sort.Slice(picks, func(i, j int) bool { return picks[i] < picks[j] })
		for _, p := range picks {
			daily[day] = append(daily[day], rows[p])
		}
	}
	return nil
}
