package rules

import "strconv"

// trimFloat formats a float with three decimal places for reasoning strings.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
