package sample

import (
	"testing"

	"github.com/vegasq/parqsample/internal/reader"
)

func labelRow(label int) reader.Row {
	return reader.Row{"GlobalEventID": int64(label)}
}

func TestReservoirUnderfilled(t *testing.T) {
	res := NewReservoir(10, NewRNG(1))
	for i := 0; i < 4; i++ {
		res.Offer(labelRow(i))
	}
	if res.Seen() != 4 {
		t.Errorf("Seen = %d, want 4", res.Seen())
	}
	rows := res.Rows()
	if len(rows) != 4 {
		t.Fatalf("retained %d rows, want the whole stream of 4", len(rows))
	}
	for i, row := range rows {
		if row["GlobalEventID"].(int64) != int64(i) {
			t.Errorf("row %d reordered: %v", i, row["GlobalEventID"])
		}
	}
}

func TestReservoirCapacityInvariant(t *testing.T) {
	res := NewReservoir(5, NewRNG(1))
	for i := 0; i < 100; i++ {
		res.Offer(labelRow(i))
		wantLen := i + 1
		if wantLen > 5 {
			wantLen = 5
		}
		if len(res.Rows()) != wantLen {
			t.Fatalf("after %d offers: retained %d, want %d", i+1, len(res.Rows()), wantLen)
		}
	}
	if res.Seen() != 100 {
		t.Errorf("Seen = %d, want 100", res.Seen())
	}
}

func TestReservoirDeterministic(t *testing.T) {
	run := func() []int64 {
		res := NewReservoir(10, NewRNG(99))
		for i := 0; i < 500; i++ {
			res.Offer(labelRow(i))
		}
		var out []int64
		for _, row := range res.Rows() {
			out = append(out, row["GlobalEventID"].(int64))
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at slot %d: %d != %d", i, a[i], b[i])
		}
	}
}

// Every element of a length-N stream must be retained with probability
// k/N. Repeats the pass under independent seeds and checks empirical
// inclusion frequencies against the binomial expectation.
func TestReservoirUniformity(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}

	const (
		n      = 1000
		k      = 100
		trials = 2000
	)

	counts := make([]int, n)
	for trial := 0; trial < trials; trial++ {
		res := NewReservoir(k, NewRNG(int64(trial)))
		for i := 0; i < n; i++ {
			res.Offer(labelRow(i))
		}
		rows := res.Rows()
		if len(rows) != k {
			t.Fatalf("trial %d retained %d rows, want %d", trial, len(rows), k)
		}
		for _, row := range rows {
			counts[row["GlobalEventID"].(int64)]++
		}
	}

	// each label ~ Binomial(trials, k/n): mean 200, sd ~13.4; allow ~6 sd
	const lo, hi = 120, 280
	for label, c := range counts {
		if c < lo || c > hi {
			t.Errorf("label %d retained %d times, want within [%d, %d]", label, c, lo, hi)
		}
	}
}

func TestStratifiedLazyGroups(t *testing.T) {
	res := NewStratifiedReservoirs("Day", 3, NewRNG(5))
	if res.Groups() != 0 {
		t.Errorf("Groups = %d before any offer", res.Groups())
	}

	days := []string{"20240101", "20240102", "20240101", "20240103"}
	for i, day := range days {
		res.Offer(reader.Row{"GlobalEventID": int64(i), "Day": day})
	}
	if res.Groups() != 3 {
		t.Errorf("Groups = %d, want 3", res.Groups())
	}
}

func TestStratifiedSmallGroupsKeptWhole(t *testing.T) {
	res := NewStratifiedReservoirs("Day", 10, NewRNG(5))
	// group A has 3 rows, group B has 25
	for i := 0; i < 3; i++ {
		res.Offer(reader.Row{"GlobalEventID": int64(i), "Day": "A"})
	}
	for i := 0; i < 25; i++ {
		res.Offer(reader.Row{"GlobalEventID": int64(100 + i), "Day": "B"})
	}

	rows := res.Rows()
	var a, b int
	for _, row := range rows {
		if row["Day"] == "A" {
			a++
		} else {
			b++
		}
	}
	if a != 3 {
		t.Errorf("group A retained %d rows, want all 3", a)
	}
	if b != 10 {
		t.Errorf("group B retained %d rows, want capacity 10", b)
	}
}

func TestStratifiedNullBucket(t *testing.T) {
	res := NewStratifiedReservoirs("Day", 5, NewRNG(5))
	res.Offer(reader.Row{"GlobalEventID": int64(1), "Day": "A"})
	res.Offer(reader.Row{"GlobalEventID": int64(2), "Day": nil}) // null value
	res.Offer(reader.Row{"GlobalEventID": int64(3)})             // missing column

	if res.Groups() != 2 {
		t.Fatalf("Groups = %d, want 2 (one value group plus the null bucket)", res.Groups())
	}

	rows := res.Rows()
	if len(rows) != 3 {
		t.Fatalf("retained %d rows, want 3", len(rows))
	}
	// null bucket flattens last
	if rows[0]["Day"] != "A" {
		t.Errorf("first row should come from group A, got %v", rows[0])
	}
}

func TestStratifiedFlattenOrderDeterministic(t *testing.T) {
	build := func() []int64 {
		res := NewStratifiedReservoirs("Day", 2, NewRNG(11))
		for i := 0; i < 50; i++ {
			res.Offer(reader.Row{
				"GlobalEventID": int64(i),
				"Day":           []string{"C", "A", "B"}[i%3],
			})
		}
		var ids []int64
		for _, row := range res.Rows() {
			ids = append(ids, row["GlobalEventID"].(int64))
		}
		return ids
	}
	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("flatten order diverged at %d", i)
		}
	}
}
