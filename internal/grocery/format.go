package grocery

import (
	"math"
	"strconv"
	"strings"
)

// FormatQuantity renders whole numbers without a fraction and everything
// else rounded to two decimals with trailing zeros removed.
func FormatQuantity(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s := strconv.FormatFloat(n, 'f', 2, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
