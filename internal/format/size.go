package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Size formats bytes with base-1024 units: two decimals below 10, one
// below 100, none above
func Size(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}

	negative := bytes < 0
	if negative {
		bytes = -bytes
	}

	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	var result string
	switch {
	case unit == 0:
		result = fmt.Sprintf("%d B", bytes)
	case size >= 100:
		result = fmt.Sprintf("%.0f %s", size, units[unit])
	case size >= 10:
		result = fmt.Sprintf("%.1f %s", size, units[unit])
	default:
		result = fmt.Sprintf("%.2f %s", size, units[unit])
	}

	if negative {
		return "-" + result
	}
	return result
}

// ParseSize parses "1024", "100B", "1.5 GB" or "2kb" into bytes
func ParseSize(s string) (int64, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))

	multiplier := int64(1)
	for i := len(units) - 1; i >= 1; i-- {
		if strings.HasSuffix(s, units[i]) {
			multiplier = int64(1) << (10 * i)
			s = strings.TrimSuffix(s, units[i])
			break
		}
	}
	if multiplier == 1 {
		s = strings.TrimSuffix(s, "B")
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, false
	}
	return int64(n * float64(multiplier)), true
}
