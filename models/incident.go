package models

import (
	"fmt"
	"time"
)

// Severity ranks the impact of an incident.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// IncidentStatus tracks the lifecycle of an incident.
// Transitions go active -> investigating -> resolved.
type IncidentStatus string

const (
	IncidentActive        IncidentStatus = "active"
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentResolved      IncidentStatus = "resolved"
)

// Incident is an operational event in the infrastructure timeline.
// ResolvedAt is set by the server iff Status is resolved; clients never
// stamp it on their own.
type Incident struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description,omitempty"`
	Severity    Severity       `json:"severity" validate:"required,oneof=critical high medium low"`
	Status      IncidentStatus `json:"status" validate:"required,oneof=active investigating resolved"`
	StartedAt   time.Time      `json:"started_at" validate:"required"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
	Resolution  string         `json:"resolution,omitempty"`
}

// CheckConsistency verifies the resolved_at invariants: the timestamp is
// present iff the incident is resolved, and never precedes started_at.
func (i Incident) CheckConsistency() error {
	if i.Status == IncidentResolved && i.ResolvedAt == nil {
		return fmt.Errorf("incident %d: resolved without resolved_at", i.ID)
	}
	if i.Status != IncidentResolved && i.ResolvedAt != nil {
		return fmt.Errorf("incident %d: resolved_at set while status is %s", i.ID, i.Status)
	}
	if i.ResolvedAt != nil && i.ResolvedAt.Before(i.StartedAt) {
		return fmt.Errorf("incident %d: resolved_at precedes started_at", i.ID)
	}
	return nil
}
