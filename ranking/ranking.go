package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/mutscan/mutscan/stats"
)

// Record identifies one processed variant and its summary statistics.
// Records are immutable once appended to a Table.
type Record struct {
	// Label is the composite display label, "{aminoAcid}_{codon}".
	Label string
	// Codon is the 3-letter code extracted from the variant file name.
	Codon string
	// AminoAcid is the category the codon maps to.
	AminoAcid string
	// File is the shallow-layer variant file the record was derived from.
	File string

	Summary stats.Summary
}

// Impact is the ranking key: the mean absolute layer differential.
func (r Record) Impact() float64 {
	return r.Summary.MeanAbs
}

// Table is an ordered collection of Records, one per variant, keyed by
// label. Records are appended in variant discovery order and the table
// is sorted once, as a terminal step, by descending impact.
//
// Table is not safe for concurrent use; the scanner serializes appends.
type Table struct {
	records []Record
	labels  map[string]struct{}
	sorted  bool
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{labels: make(map[string]struct{})}
}

// Append adds a record in discovery order. Appending a duplicate label
// or appending after Sort is an error.
func (t *Table) Append(r Record) error {
	if t.sorted {
		return fmt.Errorf("ranking: append to sorted table (label %q)", r.Label)
	}
	if _, ok := t.labels[r.Label]; ok {
		return fmt.Errorf("ranking: duplicate label %q", r.Label)
	}
	t.labels[r.Label] = struct{}{}
	t.records = append(t.records, r)
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Sort orders the table by descending impact. The sort is stable:
// records with equal impact keep their discovery order. Records whose
// impact is NaN order after all numeric records.
func (t *Table) Sort() {
	sort.SliceStable(t.records, func(i, j int) bool {
		a, b := t.records[i].Impact(), t.records[j].Impact()
		if math.IsNaN(a) {
			return false
		}
		if math.IsNaN(b) {
			return true
		}
		return a > b
	})
	t.sorted = true
}

// Records returns a copy of the table contents in current order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// TopK returns a copy of the first k records of the sorted table.
// If the table holds fewer than k records, all of them are returned.
func (t *Table) TopK(k int) []Record {
	if k > len(t.records) {
		k = len(t.records)
	}
	if k < 0 {
		k = 0
	}
	out := make([]Record, k)
	copy(out, t.records[:k])
	return out
}
