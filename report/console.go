package report

import (
	"context"

	"github.com/mutscan/mutscan"
)

// LogTopK emits the bounded top view of a result through the logger,
// one line per record, in rank order.
func LogTopK(ctx context.Context, log *mutscan.Logger, res *mutscan.Result) {
	for i, rec := range res.Top {
		log.InfoContext(ctx, "top variant",
			"rank", i+1,
			"label", rec.Label,
			"abs_mean_diff", rec.Summary.MeanAbs,
			"mean_diff", rec.Summary.Mean,
			"range_diff", rec.Summary.Range,
		)
	}
}
