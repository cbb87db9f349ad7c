package models

import "time"

// SourceType identifies what kind of entity a metric was recorded for.
type SourceType string

const (
	SourceHost      SourceType = "host"
	SourceContainer SourceType = "container"
	SourceService   SourceType = "service"
)

// MetricPoint is one recorded sample of a named metric.
type MetricPoint struct {
	SourceType SourceType `json:"source_type,omitempty"`
	SourceID   int64      `json:"source_id,omitempty"`
	MetricName string     `json:"metric_name,omitempty"`
	Value      float64    `json:"value"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// MetricLatest is the newest sample per (source, metric_name).
type MetricLatest struct {
	SourceType SourceType `json:"source_type"`
	SourceID   int64      `json:"source_id"`
	MetricName string     `json:"metric_name"`
	Value      float64    `json:"value"`
	RecordedAt time.Time  `json:"recorded_at"`
}

// GaugeMetrics are the metrics rendered as 0-100% progress bars.
var GaugeMetrics = map[string]bool{
	"cpu_percent":  true,
	"ram_percent":  true,
	"disk_percent": true,
}
