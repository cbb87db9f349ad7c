package models

// StatusCounts tallies entities by total and per-status breakdown.
type StatusCounts struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// IncidentSummary is the incident slice of the dashboard summary.
type IncidentSummary struct {
	Active int        `json:"active"`
	Recent []Incident `json:"recent"`
}

// DashboardSummary is the top-level infrastructure snapshot composed by
// the backend for the landing view.
type DashboardSummary struct {
	Hosts      StatusCounts    `json:"hosts"`
	Containers StatusCounts    `json:"containers"`
	Services   StatusCounts    `json:"services"`
	Incidents  IncidentSummary `json:"incidents"`
}
