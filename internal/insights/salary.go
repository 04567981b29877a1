package insights

import (
	"math"

	"github.com/billo-w/job-app-v2/internal/model"
)

// DeriveSalaryStat turns a raw salary histogram into a representative figure.
//
// Three outcomes, kept distinct so the presentation layer can render
// different messages:
//
//	nil histogram or zero buckets   → nil (no salary data at all)
//	buckets but zero total count    → stat with nil Average
//	otherwise                       → count-weighted mean of bucket midpoints
//
// The function is pure: the same histogram always yields the same result,
// and an absent average is never reported as zero.
func DeriveSalaryStat(h *model.SalaryHistogram) *model.SalaryStat {
	if h == nil || len(h.Buckets) == 0 {
		return nil
	}

	var weightedSum float64
	var totalCount int
	for _, b := range h.Buckets {
		midpoint := (b.Low + b.High) / 2
		weightedSum += midpoint * float64(b.Count)
		totalCount += b.Count
	}

	stat := &model.SalaryStat{Histogram: h}
	if totalCount <= 0 {
		return stat // distribution present but average not computable
	}

	avg := math.Round(weightedSum / float64(totalCount))
	stat.Average = &avg
	return stat
}
