package models

import "time"

// ServiceStatus is the result of the most recent service check.
type ServiceStatus string

const (
	ServiceUp       ServiceStatus = "up"
	ServiceDown     ServiceStatus = "down"
	ServiceDegraded ServiceStatus = "degraded"
	ServiceUnknown  ServiceStatus = "unknown"
)

// Service is a monitored HTTP endpoint, optionally tied to a host.
type Service struct {
	ID                   int64         `json:"id"`
	HostID               *int64        `json:"host_id,omitempty"`
	Name                 string        `json:"name" validate:"required"`
	URL                  string        `json:"url" validate:"required,url"`
	ServiceType          string        `json:"service_type,omitempty"`
	Status               ServiceStatus `json:"status"`
	LastCheckAt          *time.Time    `json:"last_check_at,omitempty"`
	LastResponseTimeMs   *int64        `json:"last_response_time_ms,omitempty"`
	IsMonitored          bool          `json:"is_monitored"`
	CheckIntervalSeconds int           `json:"check_interval_seconds,omitempty"`
	ExpectedStatus       int           `json:"expected_status,omitempty"`
}
