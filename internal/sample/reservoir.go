package sample

import (
	"fmt"
	"sort"

	"github.com/vegasq/parqsample/internal/reader"
)

// NullBucket is the group key used by stratified sampling for rows whose
// stratify column is missing or null.
const NullBucket = "\x00null"

// Reservoir is a single-pass uniform sampler over a stream of unknown
// length (Algorithm R). It holds at most k rows; after N >= k offered rows
// every row has been retained with probability exactly k/N. Offers must be
// strictly sequential: the seen counter and each replacement draw are one
// serialized decision.
type Reservoir struct {
	k    int64
	rng  *RNG
	rows []reader.Row
	seen int64
}

// NewReservoir returns an empty reservoir of capacity k drawing from rng.
func NewReservoir(k int64, rng *RNG) *Reservoir {
	return &Reservoir{k: k, rng: rng, rows: make([]reader.Row, 0, k)}
}

// Offer admits one stream row. The first k rows fill the buffer; each later
// row replaces a uniformly chosen slot with probability k/seen.
func (r *Reservoir) Offer(row reader.Row) {
	r.seen++
	if int64(len(r.rows)) < r.k {
		r.rows = append(r.rows, row)
		return
	}
	j := r.rng.IntBetween(0, r.seen-1)
	if j < r.k {
		r.rows[j] = row
	}
}

// Seen returns the number of rows offered so far.
func (r *Reservoir) Seen() int64 { return r.seen }

// Rows returns the retained rows. When fewer than k rows were seen this is
// the entire stream; otherwise it is already a uniform k-subset and needs
// no further reduction.
func (r *Reservoir) Rows() []reader.Row {
	return r.rows
}

// StratifiedReservoirs runs one independent Reservoir per group key. Groups
// are created lazily on first sighting; rows with a null or missing group
// value land in the null bucket rather than being dropped.
type StratifiedReservoirs struct {
	k          int64
	rng        *RNG
	column     string
	reservoirs map[string]*Reservoir
}

// NewStratifiedReservoirs returns a set of per-group reservoirs of equal
// capacity k, keyed by the value of column.
func NewStratifiedReservoirs(column string, k int64, rng *RNG) *StratifiedReservoirs {
	return &StratifiedReservoirs{
		k:          k,
		rng:        rng,
		column:     column,
		reservoirs: make(map[string]*Reservoir),
	}
}

// Offer routes the row to its group's reservoir.
func (s *StratifiedReservoirs) Offer(row reader.Row) {
	key := s.groupKey(row)
	res, ok := s.reservoirs[key]
	if !ok {
		res = NewReservoir(s.k, s.rng)
		s.reservoirs[key] = res
	}
	res.Offer(row)
}

// Groups returns the number of distinct group keys observed.
func (s *StratifiedReservoirs) Groups() int { return len(s.reservoirs) }

// Rows flattens all reservoirs in sorted group-key order, null bucket last,
// so equal seeds yield identical output ordering.
func (s *StratifiedReservoirs) Rows() []reader.Row {
	keys := make([]string, 0, len(s.reservoirs))
	hasNull := false
	for key := range s.reservoirs {
		if key == NullBucket {
			hasNull = true
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if hasNull {
		keys = append(keys, NullBucket)
	}

	var out []reader.Row
	for _, key := range keys {
		out = append(out, s.reservoirs[key].rows...)
	}
	return out
}

func (s *StratifiedReservoirs) groupKey(row reader.Row) string {
	v, ok := row[s.column]
	if !ok || v == nil {
		return NullBucket
	}
	return fmt.Sprint(v)
}
