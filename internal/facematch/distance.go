// Package facematch decides whether a submitted face descriptor belongs to a
// worker by comparing it against the worker's enrolled reference descriptor.
// Descriptors are fixed-length vectors produced by an external extraction step;
// this package only computes distances and threshold decisions.
package facematch

import (
	"errors"
	"math"
)

// ErrShapeMismatch is returned when the two descriptors are not proper
// non-empty vectors of the same length.
var ErrShapeMismatch = errors.New("descriptor shape mismatch")

// Distance computes the Euclidean (L2) distance between two descriptors.
func Distance(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, ErrShapeMismatch
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// IsMatch reports whether a distance is within the accept threshold.
// The boundary case distance == threshold counts as a match.
func IsMatch(distance, threshold float64) bool {
	return distance <= threshold
}
