package vector

import (
	"fmt"
	"strings"
)

// Breakdown is a worked dot product: the inputs, every elementwise product and
// the final sum.
type Breakdown[T Number] struct {
	A        []T
	B        []T
	Products []T
	Result   T
}

// Explain computes the dot product of a and b and keeps the intermediate
// products. It fails under the same conditions as DotProduct.
func Explain[T Number](a, b []T) (Breakdown[T], error) {
	if err := checkPair(opDot, len(a), len(b), a == nil, b == nil); err != nil {
		return Breakdown[T]{}, err
	}

	products := make([]T, len(a))
	var sum T
	for i := range a {
		products[i] = a[i] * b[i]
		sum += products[i]
	}

	return Breakdown[T]{A: a, B: b, Products: products, Result: sum}, nil
}

// Explain is the float64 form of Explain using k for both the products and
// the sum, so Result matches k.DotProduct exactly.
func (k Kernel) Explain(a, b []float64) (Breakdown[float64], error) {
	if err := checkPair(opDot, len(a), len(b), a == nil, b == nil); err != nil {
		return Breakdown[float64]{}, err
	}

	products := make([]float64, len(a))
	k.mul(products, a, b)

	result, err := k.DotProduct(a, b)
	if err != nil {
		return Breakdown[float64]{}, err
	}

	return Breakdown[float64]{A: a, B: b, Products: products, Result: result}, nil
}

// Dimension is the shared length of both inputs.
func (b Breakdown[T]) Dimension() int { return len(b.A) }

// Steps renders the calculation as four human-readable lines.
func (b Breakdown[T]) Steps() []string {
	pairs := make([]string, len(b.A))
	for i := range b.A {
		pairs[i] = fmt.Sprintf("%v × %v", b.A[i], b.B[i])
	}
	terms := make([]string, len(b.Products))
	for i, p := range b.Products {
		terms[i] = fmt.Sprint(p)
	}

	joinedPairs := strings.Join(pairs, " + ")
	joinedTerms := strings.Join(terms, " + ")
	if len(terms) == 0 {
		joinedPairs, joinedTerms = "0", "0"
	}

	return []string{
		"Formula: A · B = Σ(Ai × Bi)",
		"Multiply corresponding components: " + joinedPairs,
		"Calculate products: " + joinedTerms,
		fmt.Sprintf("Sum the products: %s = %v", joinedTerms, b.Result),
	}
}
