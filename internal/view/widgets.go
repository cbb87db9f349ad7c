package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// StatusBadge renders a status token as a colored dot plus label.
func StatusBadge(t Theme, status string) string {
	c := t.Tone(models.ToneForStatus(status))
	return lipgloss.NewStyle().Foreground(c).Render("● " + status)
}

// LiveBadge renders the auto-refresh indicator. The dim form is the
// off beat of the blink; callers hide the badge entirely when
// auto-refresh is disabled.
func LiveBadge(t Theme, on bool) string {
	if !on {
		return lipgloss.NewStyle().Foreground(t.Muted).Render("○ LIVE")
	}
	return lipgloss.NewStyle().Foreground(t.Tone(models.ToneGreen)).Bold(true).Render("● LIVE")
}

// SeverityDot renders an incident severity marker.
func SeverityDot(t Theme, sev models.Severity) string {
	c := t.Tone(models.ToneForSeverity(sev))
	return lipgloss.NewStyle().Foreground(c).Render("●")
}

// DataRow renders a muted label and a value, with the label padded to
// a fixed width so stacked rows align.
func DataRow(t Theme, label, value string, labelWidth int) string {
	l := lipgloss.NewStyle().Foreground(t.Muted).Width(labelWidth).Render(label)
	v := lipgloss.NewStyle().Foreground(t.Text).Render(value)
	return l + " " + v
}

// gaugeTone picks the bar color by utilization.
func gaugeTone(pct float64) models.Tone {
	switch {
	case pct >= 90:
		return models.ToneRed
	case pct >= 75:
		return models.ToneYellow
	default:
		return models.ToneGreen
	}
}

// Gauge renders a 0-100% utilization bar with a numeric suffix. The
// fill turns yellow at 75% and red at 90%.
func Gauge(t Theme, pct float64, width int) string {
	if width < 4 {
		width = 4
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}

	bar := lipgloss.NewStyle().Foreground(t.Tone(gaugeTone(pct))).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(t.Muted).Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %5.1f%%", bar, pct)
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a series as a single line of block runes, newest
// on the right. Values are normalized to the series min/max; a flat
// series renders mid-height. Series longer than width keep the newest
// points.
func Sparkline(points []models.MetricPoint, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}

	min, max := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}

	var b strings.Builder
	for _, p := range points {
		idx := (len(sparkRunes) - 1) / 2
		if max > min {
			idx = int((p.Value - min) / (max - min) * float64(len(sparkRunes)-1))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// SeriesSummary renders the axis caption under a sparkline: the window
// edges in the range's label format plus the latest value.
func SeriesSummary(t Theme, metric string, points []models.MetricPoint, r metrics.Range) string {
	if len(points) == 0 {
		return lipgloss.NewStyle().Foreground(t.Muted).Render("no data in range")
	}
	first := metrics.XAxisLabel(r, points[0].RecordedAt)
	last := metrics.XAxisLabel(r, points[len(points)-1].RecordedAt)
	latest := metrics.FormatValue(metric, points[len(points)-1].Value)
	return lipgloss.NewStyle().Foreground(t.Muted).
		Render(fmt.Sprintf("%s … %s   latest %s", first, last, latest))
}

// feedbackTone maps an error kind to a strip color. Plain
// informational feedback has no kind and renders green.
func feedbackTone(kind client.Kind) models.Tone {
	switch kind {
	case "":
		return models.ToneGreen
	case client.KindPartial:
		return models.ToneYellow
	case client.KindValidation, client.KindClient:
		return models.ToneOrange
	default:
		return models.ToneRed
	}
}

// FeedbackStrip renders a transient action message; empty input
// renders nothing.
func FeedbackStrip(t Theme, text string, kind client.Kind) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(t.Tone(feedbackTone(kind))).Render(text)
}

// Pane wraps content in the standard bordered box with a themed title.
func Pane(t Theme, title, content string, width int) string {
	titleBar := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(title)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(width).
		Render(titleBar + "\n" + content)
}
