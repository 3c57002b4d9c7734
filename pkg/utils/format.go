package utils

import "fmt"

// FormatHours renders a duration in hours with one decimal
func FormatHours(h float64) string {
	return fmt.Sprintf("%.1f h", h)
}
