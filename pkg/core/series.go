package core

import (
	"math"

	"golang.org/x/exp/constraints"
)

var nanValue = math.NaN()

// Series is a time series of ordered values
type Series[T constraints.Ordered] []T

// Values returns the underlying slice of values
func (s Series[T]) Values() []T {
	return s
}

// CrossedAbove reports whether s moved from strictly below ref at index-1 to
// strictly above ref at index. Index 0 never crosses.
func (s Series[T]) CrossedAbove(ref Series[T], index int) bool {
	if index <= 0 || index >= len(s) || index >= len(ref) {
		return false
	}
	return s[index-1] < ref[index-1] && s[index] > ref[index]
}

// CrossedBelow reports whether s moved from strictly above ref at index-1 to
// strictly below ref at index. Index 0 never crosses.
func (s Series[T]) CrossedBelow(ref Series[T], index int) bool {
	if index <= 0 || index >= len(s) || index >= len(ref) {
		return false
	}
	return s[index-1] > ref[index-1] && s[index] < ref[index]
}

// Constant returns a series of the given length filled with value
func Constant[T constraints.Ordered](value T, length int) Series[T] {
	s := make(Series[T], length)
	for i := range s {
		s[i] = value
	}
	return s
}

// IsMissing reports whether v is a missing observation (NaN)
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// IsValidPrice reports whether v can be traded at
func IsValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
