// Package sizefmt renders byte counts for people.
package sizefmt

import (
	"math"
	"strconv"
)

var units = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize uses binary units and at most two decimals: 1536 is "1.5 KB".
// Negative input is not supported.
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	const k = 1024
	i := 0
	divisor := int64(1)
	for i < len(units)-1 && bytes >= divisor*k {
		divisor *= k
		i++
	}

	value := math.Round(float64(bytes)/float64(divisor)*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + units[i]
}
