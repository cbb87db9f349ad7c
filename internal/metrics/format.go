package metrics

import (
	"fmt"
	"strings"
	"time"
)

// XAxisLabel formats a tick timestamp: clock time for short ranges,
// date for 7d/30d.
func XAxisLabel(r Range, t time.Time) string {
	if r.Long() {
		return t.Format("Jan 2")
	}
	return t.Format("15:04")
}

// TooltipLabel formats the full timestamp shown when a point is
// inspected: seconds for short ranges, minute precision for long ones.
func TooltipLabel(r Range, t time.Time) string {
	if r.Long() {
		return t.Format("Jan 2 15:04")
	}
	return t.Format("Jan 2 15:04:05")
}

// FormatValue renders a metric sample for the Y axis: percent metrics
// with a % suffix, byte metrics auto-scaled, everything else with two
// decimals.
func FormatValue(metric string, v float64) string {
	switch {
	case strings.HasSuffix(metric, "_percent"):
		return fmt.Sprintf("%.1f%%", v)
	case isByteMetric(metric):
		return FormatBytes(v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func isByteMetric(metric string) bool {
	return strings.HasSuffix(metric, "_bytes") || strings.Contains(metric, "bytes_")
}

// FormatBytes auto-scales a byte count: whole bytes below 1k, one
// decimal above.
func FormatBytes(v float64) string {
	const k = 1024.0
	switch {
	case v >= k*k*k:
		return fmt.Sprintf("%.1f GB", v/(k*k*k))
	case v >= k*k:
		return fmt.Sprintf("%.1f MB", v/(k*k))
	case v >= k:
		return fmt.Sprintf("%.1f KB", v/k)
	default:
		return fmt.Sprintf("%.0f B", v)
	}
}
