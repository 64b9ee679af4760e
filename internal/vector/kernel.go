package vector

import (
	"fmt"
	"strings"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Kernel selects the float64 summation backend used after validation.
type Kernel string

const (
	// KernelScalar sums left to right with the generic loop.
	KernelScalar Kernel = "scalar"
	// KernelVecmath dispatches to algo-vecmath (AVX2/NEON when available).
	KernelVecmath Kernel = "vecmath"
	// KernelGonum uses gonum's floats.Dot.
	KernelGonum Kernel = "gonum"
)

// Kernels lists every supported kernel in a stable order.
func Kernels() []Kernel {
	return []Kernel{KernelScalar, KernelVecmath, KernelGonum}
}

// ParseKernel normalizes a kernel name. Empty selects KernelScalar.
func ParseKernel(s string) (Kernel, error) {
	switch k := Kernel(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KernelScalar, nil
	case KernelScalar, KernelVecmath, KernelGonum:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kernel %q (want scalar|vecmath|gonum)", s)
	}
}

// DotProduct validates a and b like DotProductReal and sums with k.
// SIMD kernels may differ from KernelScalar in the last bits of the result.
func (k Kernel) DotProduct(a, b []float64) (float64, error) {
	if err := checkPair(opDot, len(a), len(b), a == nil, b == nil); err != nil {
		return 0, err
	}
	if len(a) == 0 {
		return 0, nil
	}

	switch k {
	case KernelVecmath:
		return vecmath.DotProduct(a, b), nil
	case KernelGonum:
		return floats.Dot(a, b), nil
	default:
		return dot(a, b), nil
	}
}

// mul writes a[i]*b[i] into dst. All three must have the same length.
func (k Kernel) mul(dst, a, b []float64) {
	if len(dst) == 0 {
		return
	}

	switch k {
	case KernelVecmath:
		vecmath.MulBlock(dst, a, b)
	case KernelGonum:
		floats.MulTo(dst, a, b)
	default:
		for i := range dst {
			dst[i] = a[i] * b[i]
		}
	}
}
