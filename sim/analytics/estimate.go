package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// EnsembleMean averages frame-aligned series across replications. Series
// shorter than the longest one contribute only to the frames they cover.
func EnsembleMean(perReplication [][]float64) []float64 {
	frames := 0
	for _, r := range perReplication {
		if len(r) > frames {
			frames = len(r)
		}
	}
	out := make([]float64, frames)
	col := make([]float64, 0, len(perReplication))
	for f := 0; f < frames; f++ {
		col = col[:0]
		for _, r := range perReplication {
			if f < len(r) {
				col = append(col, r[f])
			}
		}
		out[f] = stat.Mean(col, nil)
	}
	return out
}

// Estimation is an overall point estimate with a two-sided t interval.
type Estimation struct {
	Mean    float64 `json:"mean"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
	Samples int     `json:"samples"`
}

// Estimate treats every frame of ensemble from cutoff on as one sample and
// returns its mean and 1-alpha confidence interval. With fewer than two
// samples the interval collapses onto the mean; with none everything is 0.
func Estimate(ensemble []float64, alpha float64, cutoff int) Estimation {
	if cutoff < 0 {
		cutoff = 0
	}
	if cutoff >= len(ensemble) {
		return Estimation{}
	}
	values := ensemble[cutoff:]
	n := len(values)
	mean := stat.Mean(values, nil)
	margin := 0.0
	if n > 1 {
		sd := stat.StdDev(values, nil)
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - alpha/2)
		margin = t * sd / math.Sqrt(float64(n))
	}
	return Estimation{Mean: mean, CILower: mean - margin, CIUpper: mean + margin, Samples: n}
}
