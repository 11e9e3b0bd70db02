package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mutscan/mutscan"
)

var csvHeader = []string{
	"rank", "label", "codon", "aa", "file",
	"min_diff", "max_diff", "range_diff", "mean_diff", "median_diff", "std_diff", "abs_mean_diff",
}

// WriteCSV writes the fully sorted table, one row per variant record,
// identity fields first, then all seven statistics.
func WriteCSV(w io.Writer, res *mutscan.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}

	for i, rec := range res.Table.Records() {
		row := []string{
			strconv.Itoa(i + 1),
			rec.Label,
			rec.Codon,
			rec.AminoAcid,
			rec.File,
			formatFloat(rec.Summary.Min),
			formatFloat(rec.Summary.Max),
			formatFloat(rec.Summary.Range),
			formatFloat(rec.Summary.Mean),
			formatFloat(rec.Summary.Median),
			formatFloat(rec.Summary.Std),
			formatFloat(rec.Summary.MeanAbs),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("report: write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
