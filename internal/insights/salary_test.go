package insights

import (
	"testing"

	"github.com/billo-w/job-app-v2/internal/model"
)

func histogram(buckets ...model.HistogramBucket) *model.SalaryHistogram {
	return &model.SalaryHistogram{Buckets: buckets}
}

func point(value float64, count int) model.HistogramBucket {
	return model.HistogramBucket{Label: "p", Low: value, High: value, Count: count}
}

func TestDeriveSalaryStatAbsent(t *testing.T) {
	tests := []struct {
		name string
		in   *model.SalaryHistogram
	}{
		{"nil histogram", nil},
		{"zero buckets", histogram()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveSalaryStat(tt.in); got != nil {
				t.Errorf("DeriveSalaryStat(%v) = %+v, want nil", tt.in, got)
			}
		})
	}
}

func TestDeriveSalaryStatNotComputable(t *testing.T) {
	// Distribution present but zero total count: the stat exists so the
	// presentation layer can say "data but no average", but Average stays
	// nil rather than becoming a misleading zero.
	h := histogram(point(40000, 0), point(50000, 0))

	got := DeriveSalaryStat(h)
	if got == nil {
		t.Fatal("DeriveSalaryStat returned nil, want stat with nil Average")
	}
	if got.Average != nil {
		t.Errorf("Average = %v, want nil", *got.Average)
	}
	if got.Histogram != h {
		t.Error("Histogram not retained on the stat")
	}
}

func TestDeriveSalaryStatWeightedMean(t *testing.T) {
	tests := []struct {
		name string
		in   *model.SalaryHistogram
		want float64
	}{
		{
			name: "equal weights",
			in:   histogram(point(60000, 50), point(70000, 50)),
			want: 65000,
		},
		{
			name: "skewed weights",
			in:   histogram(point(30000, 3), point(60000, 1)),
			want: 37500,
		},
		{
			name: "single bucket",
			in:   histogram(point(52000, 17)),
			want: 52000,
		},
		{
			name: "true range uses midpoint",
			in: histogram(
				model.HistogramBucket{Label: "60k-70k", Low: 60000, High: 70000, Count: 2},
			),
			want: 65000,
		},
		{
			name: "rounded to whole figure",
			in:   histogram(point(100, 1), point(101, 2)),
			want: 101,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSalaryStat(tt.in)
			if got == nil || got.Average == nil {
				t.Fatalf("DeriveSalaryStat returned %+v, want average %v", got, tt.want)
			}
			if *got.Average != tt.want {
				t.Errorf("Average = %v, want %v", *got.Average, tt.want)
			}
		})
	}
}

func TestDeriveSalaryStatDeterministic(t *testing.T) {
	h := histogram(point(45000, 12), point(55000, 30), point(65000, 8))

	first := DeriveSalaryStat(h)
	second := DeriveSalaryStat(h)
	if first == nil || second == nil || first.Average == nil || second.Average == nil {
		t.Fatal("expected computed averages on both runs")
	}
	if *first.Average != *second.Average {
		t.Errorf("averages differ across runs: %v vs %v", *first.Average, *second.Average)
	}
}
