// Package series reduces ordered series to a bounded number of display points.
package series

// MaxChartPoints is the default upper bound on points handed to a chart.
const MaxChartPoints = 30

// Downsample returns at most limit elements of s, taking every stride-th element
// starting at index 0 where stride = ceil(len(s)/limit). Order is preserved and
// no element is synthesized; the tail is not forced into the result. A series
// already within bound, or limit <= 0, is returned as an unchanged copy.
func Downsample[T any](s []T, limit int) []T {
	if limit <= 0 || len(s) <= limit {
		out := make([]T, len(s))
		copy(out, s)
		return out
	}
	stride := (len(s) + limit - 1) / limit
	out := make([]T, 0, (len(s)+stride-1)/stride)
	for i := 0; i < len(s); i += stride {
		out = append(out, s[i])
	}
	return out
}

// Stride reports the stride Downsample would use for a series of length n.
func Stride(n, limit int) int {
	if limit <= 0 || n <= limit {
		return 1
	}
	return (n + limit - 1) / limit
}
