package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptySeries is returned when a summary is requested over zero
// positions. Statistics over an empty series are undefined and must not
// silently come out as zero.
var ErrEmptySeries = errors.New("stats: empty series")

// Summary holds the seven statistics derived from one variant's
// layer-differential series. Range is always exactly Max − Min.
type Summary struct {
	Min     float64
	Max     float64
	Range   float64
	Mean    float64
	Median  float64
	Std     float64 // sample standard deviation, N−1 denominator
	MeanAbs float64
}

// Summarize computes the seven summary statistics of diff.
//
// The input is treated as read-only: order statistics work on a private
// copy, so all seven values describe the same snapshot. NaN entries
// (degenerate zero-norm positions upstream) propagate into every
// affected statistic rather than being dropped.
func Summarize(diff []float64) (Summary, error) {
	if len(diff) == 0 {
		return Summary{}, ErrEmptySeries
	}

	s := Summary{
		Min:  diff[0],
		Max:  diff[0],
		Mean: stat.Mean(diff, nil),
	}

	hasNaN := false
	var absSum float64
	for _, v := range diff {
		if math.IsNaN(v) {
			hasNaN = true
		}
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		absSum += math.Abs(v)
	}
	s.MeanAbs = absSum / float64(len(diff))

	if len(diff) > 1 {
		s.Std = stat.StdDev(diff, nil)
	} else if hasNaN {
		s.Std = math.NaN()
	}

	if hasNaN {
		// Order statistics are meaningless once a NaN is present.
		s.Min, s.Max, s.Median = math.NaN(), math.NaN(), math.NaN()
	} else {
		sorted := make([]float64, len(diff))
		copy(sorted, diff)
		sort.Float64s(sorted)

		n := len(sorted)
		if n%2 == 1 {
			s.Median = sorted[n/2]
		} else {
			s.Median = (sorted[n/2-1] + sorted[n/2]) / 2
		}
	}

	s.Range = s.Max - s.Min
	return s, nil
}
