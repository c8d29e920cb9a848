// Package profiling describes the shape of a numeric column: summary
// statistics, skew and IQR outliers.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Profile is the distribution summary of one column.
type Profile struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	Outliers int     `json:"outliers"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
}

// Analyze profiles data. Empty input is an error.
func Analyze(data []float64) (Profile, error) {
	p := Profile{Count: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return p, err
	}
	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return p, err
	}
	minV, err := stats.Min(data)
	if err != nil {
		return p, err
	}
	maxV, err := stats.Max(data)
	if err != nil {
		return p, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return p, err
	}
	q25 := percentile(data, 25, minV)
	q75 := percentile(data, 75, maxV)

	p.Mean, p.StdDev = mean, stdDev
	p.Min, p.Max, p.Median = minV, maxV, median
	p.Q25, p.Q75 = q25, q75
	p.Skewness = skewness(data, mean, stdDev)
	p.Kurtosis = kurtosis(data, mean, stdDev)
	p.Outliers = countOutliers(data, q25, q75)
	p.IsNormal, p.NormalP = normality(p.Count, p.Skewness, p.Kurtosis)
	return p, nil
}

// percentile falls back to bound on samples too small for the nearest-rank
// method.
func percentile(data []float64, pct, bound float64) float64 {
	v, err := stats.Percentile(data, pct)
	if err != nil {
		return bound
	}
	return v
}

// skewness is the adjusted Fisher-Pearson coefficient.
func skewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d
	}
	return sum / n * math.Sqrt(n*(n-1)) / (n - 2)
}

// kurtosis returns total (not excess) sample kurtosis: the bias-corrected
// G2 = ((n+1)g2 + 6)(n-1) / ((n-2)(n-3)) plus 3.
func kurtosis(data []float64, mean, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 {
		return 0
	}
	n := float64(len(data))
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / stdDev
		sum += d * d * d * d
	}
	g2 := sum/n - 3
	return ((n+1)*g2+6)*(n-1)/((n-2)*(n-3)) + 3
}

// normality approximates a moment-based normality test with a chi-squared
// tail on two degrees of freedom.
func normality(n int, skew, kurt float64) (bool, float64) {
	if n < 3 {
		return false, 1.0
	}
	stat := math.Abs(skew) + math.Abs(kurt-3)/2
	p := 1 - distuv.ChiSquared{K: 2}.CDF(stat*stat)
	return p > 0.05, p
}

func countOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lo, hi := q25-1.5*iqr, q75+1.5*iqr
	count := 0
	for _, x := range data {
		if x < lo || x > hi {
			count++
		}
	}
	return count
}
