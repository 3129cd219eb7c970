package metric

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Interval is a bootstrap confidence interval of a statistic
type Interval struct {
	Lower  float64
	Upper  float64
	StdDev float64
	Mean   float64
}

func (i Interval) String() string {
	return fmt.Sprintf("%.2f ~ %.2f (mean %.2f, sd %.2f)", i.Lower, i.Upper, i.Mean, i.StdDev)
}

// Bootstrap estimates the confidence interval of measure over values by
// resampling with replacement.
//   - samples: number of resampled sets
//   - confidence: e.g. 0.95 for a 95% interval
func Bootstrap(values []float64, measure func([]float64) float64, samples int, confidence float64) Interval {
	if len(values) == 0 || samples <= 0 {
		return Interval{}
	}

	estimates := make([]float64, samples)
	resample := make([]float64, len(values))
	for i := range estimates {
		for j := range resample {
			resample[j] = lo.Sample(values)
		}
		estimates[i] = measure(resample)
	}
	sort.Float64s(estimates)

	tail := (1 - confidence) / 2
	mean, stdDev := stat.MeanStdDev(estimates, nil)

	return Interval{
		Lower:  stat.Quantile(tail, stat.LinInterp, estimates, nil),
		Upper:  stat.Quantile(1-tail, stat.LinInterp, estimates, nil),
		StdDev: stdDev,
		Mean:   mean,
	}
}
