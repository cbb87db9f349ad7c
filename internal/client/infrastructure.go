package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DragonRuins/life-hub-sub001/models"
)

// Dashboard fetches the composed infrastructure summary.
func (c *Client) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var out models.DashboardSummary
	if err := c.get(ctx, "/api/infrastructure/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Hosts lists all registered hosts.
func (c *Client) Hosts(ctx context.Context) ([]models.Host, error) {
	var out []models.Host
	if err := c.get(ctx, "/api/infrastructure/hosts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Host fetches one host in detail form, with containers and services.
func (c *Client) Host(ctx context.Context, id int64) (*models.Host, error) {
	var out models.Host
	if err := c.get(ctx, fmt.Sprintf("/api/infrastructure/hosts/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HostCreateResponse is the create-host response. DockerSetup is present
// when the submitted form carried Docker setup fields.
type HostCreateResponse struct {
	Host        models.Host               `json:"host"`
	DockerSetup *models.DockerSetupResult `json:"docker_setup,omitempty"`
}

// HostCreateRequest is the create-host payload. DockerSetup, when set,
// asks the backend to configure the Docker integration in the same
// flow.
type HostCreateRequest struct {
	models.Host
	DockerSetup *models.DockerSetupRequest `json:"docker_setup,omitempty"`
}

// CreateHost registers a new host, optionally running Docker setup.
func (c *Client) CreateHost(ctx context.Context, req HostCreateRequest) (*HostCreateResponse, error) {
	var out HostCreateResponse
	if err := c.send(ctx, http.MethodPost, "/api/infrastructure/hosts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateHost patches host fields.
func (c *Client) UpdateHost(ctx context.Context, id int64, patch map[string]any) (*models.Host, error) {
	var out models.Host
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/infrastructure/hosts/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteHost removes a host and everything recorded under it.
func (c *Client) DeleteHost(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/infrastructure/hosts/%d", id), nil, nil)
}

// DetectHardware runs a hardware scan and replaces the host's hardware
// record with the result.
func (c *Client) DetectHardware(ctx context.Context, id int64) (*models.Hardware, error) {
	var out models.Hardware
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/infrastructure/hosts/%d/detect-hardware", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupDocker configures the backend's access to the host's Docker
// daemon and reports connection plus initial sync outcome.
func (c *Client) SetupDocker(ctx context.Context, id int64, req models.DockerSetupRequest) (*models.DockerSetupResult, error) {
	var out models.DockerSetupResult
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/infrastructure/hosts/%d/setup-docker", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Containers lists containers across all hosts.
func (c *Client) Containers(ctx context.Context) ([]models.Container, error) {
	var out []models.Container
	if err := c.get(ctx, "/api/infrastructure/containers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncContainers triggers a backend container sync for one host.
func (c *Client) SyncContainers(ctx context.Context, hostID int64) (*models.SyncResult, error) {
	var out models.SyncResult
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/infrastructure/containers/sync/%d", hostID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Services lists all monitored services.
func (c *Client) Services(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	if err := c.get(ctx, "/api/infrastructure/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateService registers a monitored service.
func (c *Client) CreateService(ctx context.Context, svc models.Service) (*models.Service, error) {
	var out models.Service
	if err := c.send(ctx, http.MethodPost, "/api/infrastructure/services", svc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateService patches service fields.
func (c *Client) UpdateService(ctx context.Context, id int64, patch map[string]any) (*models.Service, error) {
	var out models.Service
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/infrastructure/services/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteService removes a monitored service.
func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/infrastructure/services/%d", id), nil, nil)
}

// CheckService triggers an immediate service check.
func (c *Client) CheckService(ctx context.Context, id int64) (*models.Service, error) {
	var out models.Service
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/infrastructure/services/%d/check", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NetworkDevices lists network equipment.
func (c *Client) NetworkDevices(ctx context.Context) ([]models.NetworkDevice, error) {
	var out []models.NetworkDevice
	if err := c.get(ctx, "/api/infrastructure/network", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNetworkDevice registers a network device.
func (c *Client) CreateNetworkDevice(ctx context.Context, dev models.NetworkDevice) (*models.NetworkDevice, error) {
	var out models.NetworkDevice
	if err := c.send(ctx, http.MethodPost, "/api/infrastructure/network", dev, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNetworkDevice patches network device fields.
func (c *Client) UpdateNetworkDevice(ctx context.Context, id int64, patch map[string]any) (*models.NetworkDevice, error) {
	var out models.NetworkDevice
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/infrastructure/network/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNetworkDevice removes a network device.
func (c *Client) DeleteNetworkDevice(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/infrastructure/network/%d", id), nil, nil)
}

// Incidents lists incidents, optionally filtered by status.
func (c *Client) Incidents(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	var out []models.Incident
	if err := c.get(ctx, "/api/infrastructure/incidents", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIncident logs a new incident.
func (c *Client) CreateIncident(ctx context.Context, inc models.Incident) (*models.Incident, error) {
	var out models.Incident
	if err := c.send(ctx, http.MethodPost, "/api/infrastructure/incidents", inc, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateIncident patches incident fields. Resolving an incident sends
// only the status; the server stamps resolved_at.
func (c *Client) UpdateIncident(ctx context.Context, id int64, patch map[string]any) (*models.Incident, error) {
	var out models.Incident
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/infrastructure/incidents/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteIncident removes an incident from the timeline.
func (c *Client) DeleteIncident(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/infrastructure/incidents/%d", id), nil, nil)
}

// MetricsLatest fetches the newest sample per metric for one source.
func (c *Client) MetricsLatest(ctx context.Context, sourceType models.SourceType, sourceID int64) ([]models.MetricLatest, error) {
	query := url.Values{}
	query.Set("source_type", string(sourceType))
	query.Set("source_id", strconv.FormatInt(sourceID, 10))
	var out []models.MetricLatest
	if err := c.get(ctx, "/api/infrastructure/metrics/latest", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MetricsQuery fetches a time series for one (source, metric) in a
// window. The backend delivers points newest-first.
func (c *Client) MetricsQuery(ctx context.Context, sourceType models.SourceType, sourceID int64, metric string, from, to time.Time, resolution string) ([]models.MetricPoint, error) {
	query := url.Values{}
	query.Set("source_type", string(sourceType))
	query.Set("source_id", strconv.FormatInt(sourceID, 10))
	query.Set("metric_name", metric)
	query.Set("from", from.UTC().Format(time.RFC3339))
	query.Set("to", to.UTC().Format(time.RFC3339))
	if resolution != "" {
		query.Set("resolution", resolution)
	}
	var out []models.MetricPoint
	if err := c.get(ctx, "/api/infrastructure/metrics/query", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}
