// Package vector computes dot products over integer and real slices.
//
// A nil slice is an absent vector and is rejected. A non-nil empty slice is a
// valid zero-length vector whose dot product with another empty slice is 0.
package vector

// Integer is the set of integer element types accepted by DotProduct.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Real is the set of floating-point element types accepted by DotProduct.
type Real interface {
	~float32 | ~float64
}

// Number is an integer or real element type.
type Number interface {
	Integer | Real
}

// DotProduct returns sum(a[i] * b[i]) accumulated left to right. The result
// has the element type of the inputs. Integer overflow wraps.
func DotProduct[T Number](a, b []T) (T, error) {
	if err := checkPair(opDot, len(a), len(b), a == nil, b == nil); err != nil {
		return 0, err
	}
	return dot(a, b), nil
}

// DotProductInt is DotProduct specialized to int.
func DotProductInt(a, b []int) (int, error) {
	return DotProduct(a, b)
}

// DotProductReal is DotProduct specialized to float64.
func DotProductReal(a, b []float64) (float64, error) {
	return DotProduct(a, b)
}

// dot assumes len(a) == len(b).
func dot[T Number](a, b []T) T {
	var sum T
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
