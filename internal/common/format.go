// internal/common/format.go
package common

import (
	"math"
	"strconv"
)

// FormatProb renders a probability with fixed six-decimal precision.
func FormatProb(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FormatValue renders a statistic, using "NA" for NaN (masked entries).
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
