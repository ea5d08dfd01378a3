package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean returns the arithmetic mean, 0 on empty input
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// StdDev returns the sample (n-1) standard deviation, 0 when n < 2
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.StdDev(x, nil)
}

// PopStdDev returns the population (n) standard deviation, 0 on empty input
func PopStdDev(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(x, nil)
	return std
}

// Quantile returns the q-quantile using linear interpolation between closest
// ranks: h = (n-1)q, x[floor(h)] + (h-floor(h))(x[floor(h)+1]-x[floor(h)]).
// The input is not modified. Returns 0 on empty input.
func Quantile(x []float64, q float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[n-1]
	}
	h := float64(n-1) * q
	lo := int(math.Floor(h))
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Median is Quantile(x, 0.5)
func Median(x []float64) float64 {
	return Quantile(x, 0.5)
}

// centralMoments returns the population second, third and fourth central moments
func centralMoments(x []float64) (m2, m3, m4 float64) {
	mean := Mean(x)
	for _, v := range x {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	n := float64(len(x))
	return m2 / n, m3 / n, m4 / n
}

// Skewness is the biased (population) sample skewness m3/m2^1.5.
// Returns 0 for fewer than 3 points or zero variance.
func Skewness(x []float64) float64 {
	if len(x) < 3 {
		return 0
	}
	m2, m3, _ := centralMoments(x)
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// ExcessKurtosis is the biased (population) excess kurtosis m4/m2² - 3.
// Returns 0 for fewer than 3 points or zero variance.
func ExcessKurtosis(x []float64) float64 {
	if len(x) < 3 {
		return 0
	}
	m2, _, m4 := centralMoments(x)
	if m2 == 0 {
		return 0
	}
	return m4/(m2*m2) - 3
}

// JarqueBera returns the JB statistic and its asymptotic χ²(2) p-value.
// Fewer than 3 points yields (0, 1).
func JarqueBera(x []float64) (statistic, pValue float64) {
	if len(x) < 3 {
		return 0, 1
	}
	s := Skewness(x)
	k := ExcessKurtosis(x)
	statistic = float64(len(x)) / 6 * (s*s + k*k/4)
	pValue = distuv.ChiSquared{K: 2}.Survival(statistic)
	return statistic, pValue
}

// NormalQuantile is the inverse standard normal CDF
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// Correlation is Pearson's r over equal-length slices, 0 when undefined
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// Covariance is the sample covariance over equal-length slices
func Covariance(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Variance is the sample variance
func Variance(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil)
}

// Slope fits y = a + b·i over i = 0..n-1 and returns b. Fewer than 2 points yields 0.
func Slope(y []float64) float64 {
	if len(y) < 2 {
		return 0
	}
	xs := make([]float64, len(y))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, y, nil, false)
	return beta
}

// CoefficientOfVariation is population std / mean, unbounded when the mean is 0
func CoefficientOfVariation(x []float64) Ratio {
	mean := Mean(x)
	if mean == 0 {
		return Unbounded()
	}
	return Finite(PopStdDev(x) / mean)
}
