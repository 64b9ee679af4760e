package vector

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse reads a comma-separated list of reals such as "1.5, 2" or "[1.5, 2]".
// A blank string is an absent vector and yields nil; "[]" yields an empty,
// non-nil vector.
func Parse(s string) ([]float64, error) {
	return parseList(s, func(tok string) (float64, bool) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	})
}

// ParseInt is Parse for integer vectors.
func ParseInt(s string) ([]int, error) {
	return parseList(s, func(tok string) (int, bool) {
		v, err := strconv.Atoi(tok)
		return v, err == nil
	})
}

func parseList[T Number](s string, conv func(string) (T, bool)) ([]T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			return []T{}, nil
		}
	}

	fields := strings.Split(s, ",")
	out := make([]T, 0, len(fields))
	for i, f := range fields {
		tok := strings.TrimSpace(f)
		v, ok := conv(tok)
		if !ok {
			return nil, &ArgumentError{
				Op:     "parse",
				Reason: fmt.Sprintf("invalid number %q at index %d", tok, i),
			}
		}
		out = append(out, v)
	}
	return out, nil
}
