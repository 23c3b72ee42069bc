package index

import (
	"fmt"
	"math"
)

// Metric selects the distance function an index scores candidates with.
// Both metrics are distances: smaller means closer, so result ordering is
// uniform regardless of which one is configured.
type Metric uint8

const (
	// MetricL2 is squared Euclidean distance.
	MetricL2 Metric = iota

	// MetricCosine is cosine distance, 1 - cos(a, b).
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricL2:
		return "l2"
	case MetricCosine:
		return "cosine"
	default:
		return fmt.Sprintf("metric(%d)", uint8(m))
	}
}

// ParseMetric maps a configuration string to a Metric. The empty string
// selects MetricL2.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "l2":
		return MetricL2, nil
	case "cosine":
		return MetricCosine, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

// Distance computes the metric between two vectors of equal length. The
// caller guarantees equal lengths; indexes check dimensionality once per
// operation, not per pair.
func (m Metric) Distance(a, b []float32) float64 {
	if m == MetricCosine {
		return cosineDistance(a, b)
	}
	return l2Squared(a, b)
}

func l2Squared(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// cosineDistance treats a zero vector as maximally distant from everything,
// including another zero vector.
func cosineDistance(a, b []float32) float64 {
	var dot, ma, mb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		ma += float64(a[i]) * float64(a[i])
		mb += float64(b[i]) * float64(b[i])
	}
	if ma == 0 || mb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(ma)*math.Sqrt(mb))
}
