package models

// Tone is the semantic color class of a status or severity token. The
// same table backs every view so status coloring stays stable across
// the console.
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
	ToneRed    Tone = "red"
	ToneGray   Tone = "gray"
	ToneOrange Tone = "orange"
	ToneBlue   Tone = "blue"
	ToneBright Tone = "bright_red"
)

// ToneForStatus classifies a raw status token from any entity.
func ToneForStatus(status string) Tone {
	switch status {
	case "online", "up", "running", "resolved":
		return ToneGreen
	case "degraded", "investigating", "restarting":
		return ToneYellow
	case "offline", "down", "active", "exited", "stopped":
		return ToneRed
	default:
		return ToneGray
	}
}

// ToneForSeverity classifies an incident severity.
func ToneForSeverity(s Severity) Tone {
	switch s {
	case SeverityCritical:
		return ToneBright
	case SeverityHigh:
		return ToneOrange
	case SeverityMedium:
		return ToneYellow
	case SeverityLow:
		return ToneBlue
	default:
		return ToneGray
	}
}
