// Package util holds small formatting helpers shared by command-line
// reporting code.
package util

import (
	"fmt"
	"math"
)

// FormatValueFactor renders value with an SI unit prefix scaled to its
// magnitude (m/u/n/p), falling back to scientific notation below 1p.
// Grounded on the teacher's pkg/util/formatter.go, trimmed to the one
// helper cmd/example still has a use for: the frequency/magnitude/phase
// formatters it shipped alongside served AC analysis reporting, which goes
// with the complex-analysis code it printed.
func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}
