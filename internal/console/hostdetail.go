package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// Tab identifies a host-detail tab.
type Tab string

const (
	TabOverview   Tab = "overview"
	TabContainers Tab = "containers"
	TabServices   Tab = "services"
	TabMetrics    Tab = "metrics"
)

const (
	syncFeedbackSuccessTTL  = 4 * time.Second
	syncFeedbackFailureTTL  = 5 * time.Second
	setupFeedbackTTL        = 6 * time.Second
	serviceAddedFeedbackTTL = 5 * time.Second
)

// HostDetailAPI is the backend slice the host-detail controller
// consumes.
type HostDetailAPI interface {
	Host(ctx context.Context, id int64) (*models.Host, error)
	DetectHardware(ctx context.Context, id int64) (*models.Hardware, error)
	SetupDocker(ctx context.Context, id int64, req models.DockerSetupRequest) (*models.DockerSetupResult, error)
	SyncContainers(ctx context.Context, hostID int64) (*models.SyncResult, error)
	CreateService(ctx context.Context, svc models.Service) (*models.Service, error)
	CheckService(ctx context.Context, id int64) (*models.Service, error)
}

// HostDetailState is the tabbed host view snapshot.
type HostDetailState struct {
	Host    *models.Host
	Tab     Tab
	Loading bool
	Err     string

	// SetupBusy guards the inline Docker setup form: submissions are
	// serialized and the form is disabled while one is in flight.
	SetupBusy bool

	// Metrics tab state. MetricsResult is only valid for the current
	// (SelectedMetric, Range) pair; stale fetches are discarded.
	SelectedMetric string
	Range          metrics.Range
	MetricsResult  metrics.Result
	MetricsLoading bool

	Feedback Feedback
}

// HostDetail drives the tabbed host view: overview with hardware
// detection and inline Docker setup, container sync, service creation
// bound to the host, and the metrics tab over the query engine.
type HostDetail struct {
	api    HostDetailAPI
	engine *metrics.Engine
	hostID int64

	mu         sync.Mutex
	state      HostDetailState
	gen        uint64 // host reloads
	metricsGen uint64 // metrics fetches; bumped on param change and tab exit

	feedback feedbackCell
}

// NewHostDetail creates the controller for one host.
func NewHostDetail(api HostDetailAPI, engine *metrics.Engine, hostID int64) *HostDetail {
	return &HostDetail{
		api:    api,
		engine: engine,
		hostID: hostID,
		state: HostDetailState{
			Tab:            TabOverview,
			Loading:        true,
			SelectedMetric: "cpu_percent",
			Range:          metrics.Range24h,
		},
	}
}

// Snapshot returns a copy of the current state.
func (h *HostDetail) Snapshot() HostDetailState {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.state
	s.Feedback = h.feedback.get()
	return s
}

// Load fetches the host in detail form. A newer reload supersedes an
// older one.
func (h *HostDetail) Load(ctx context.Context) {
	h.mu.Lock()
	h.gen++
	gen := h.gen
	h.mu.Unlock()

	host, err := h.api.Host(ctx, h.hostID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return
	}
	h.state.Loading = false
	if err != nil {
		h.state.Err = err.Error()
		return
	}
	h.state.Err = ""
	h.state.Host = host
}

// SetTab switches the active tab. Activating the metrics tab is the
// precondition for fetching; leaving it invalidates any in-flight
// fetch.
func (h *HostDetail) SetTab(ctx context.Context, tab Tab) {
	h.mu.Lock()
	if h.state.Tab == tab {
		h.mu.Unlock()
		return
	}
	h.state.Tab = tab
	if tab != TabMetrics {
		h.metricsGen++
	}
	h.mu.Unlock()

	if tab == TabMetrics {
		h.fetchMetrics(ctx)
	}
}

// SetMetric selects the charted metric and refetches.
func (h *HostDetail) SetMetric(ctx context.Context, metric string) {
	h.mu.Lock()
	h.state.SelectedMetric = metric
	h.mu.Unlock()
	h.fetchMetrics(ctx)
}

// SetRange selects the chart window and refetches.
func (h *HostDetail) SetRange(ctx context.Context, r metrics.Range) {
	h.mu.Lock()
	h.state.Range = r
	h.mu.Unlock()
	h.fetchMetrics(ctx)
}

// fetchMetrics drives the query engine. A result arriving after the
// user changed parameters or left the tab is discarded via the
// generation token.
func (h *HostDetail) fetchMetrics(ctx context.Context) {
	h.mu.Lock()
	if h.state.Tab != TabMetrics {
		h.mu.Unlock()
		return
	}
	h.metricsGen++
	gen := h.metricsGen
	q := metrics.Query{
		SourceType: models.SourceHost,
		SourceID:   h.hostID,
		MetricName: h.state.SelectedMetric,
		Range:      h.state.Range,
	}
	h.state.MetricsLoading = true
	h.mu.Unlock()

	res, err := h.engine.Fetch(ctx, q)

	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.metricsGen {
		return
	}
	h.state.MetricsLoading = false
	if err != nil {
		// The engine already normalized failure to empty data; the chart
		// shows its no-data placeholder.
		h.state.MetricsResult = metrics.Result{}
		return
	}
	h.state.MetricsResult = res
}

// DetectHardware runs a hardware scan and refreshes the host. The
// server stores the scan result, so the reload picks it up.
func (h *HostDetail) DetectHardware(ctx context.Context) {
	if _, err := h.api.DetectHardware(ctx, h.hostID); err != nil {
		h.feedback.set(err.Error(), client.ErrorKind(err), setupFeedbackTTL)
		return
	}
	h.feedback.set("Hardware detected", "", syncFeedbackSuccessTTL)
	h.Load(ctx)
}

// SetupDocker runs the inline setup state machine:
//
//	idle -submit-> busy
//	busy -connection_ok & sync-> report success with container count
//	busy -connection_ok, no sync-> report plain success
//	busy -connection_ok=false or transport error-> report failure
//
// and always returns to idle. The host is refreshed after a successful
// connection.
func (h *HostDetail) SetupDocker(ctx context.Context, req models.DockerSetupRequest) {
	h.mu.Lock()
	if h.state.SetupBusy {
		h.mu.Unlock()
		return
	}
	h.state.SetupBusy = true
	h.mu.Unlock()

	res, err := h.api.SetupDocker(ctx, h.hostID, req)

	h.mu.Lock()
	h.state.SetupBusy = false
	h.mu.Unlock()

	switch {
	case err != nil:
		h.feedback.set(fmt.Sprintf("Docker setup failed: %v", err), client.ErrorKind(err), setupFeedbackTTL)
	case !res.ConnectionOK:
		msg := res.Error
		if msg == "" {
			msg = "connection failed"
		}
		h.feedback.set("Docker setup failed: "+msg, client.KindClient, setupFeedbackTTL)
	case res.SyncResult != nil:
		h.feedback.set(fmt.Sprintf("Docker connected, %d containers found", res.SyncResult.ContainersFound), "", setupFeedbackTTL)
		h.Load(ctx)
	default:
		h.feedback.set("Docker connected", "", setupFeedbackTTL)
		h.Load(ctx)
	}
}

// SetupBusy reports whether a setup submission is in flight.
func (h *HostDetail) SetupBusy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.SetupBusy
}

// SyncContainers performs a backend sync and reports the number of
// containers discovered. The view reloads on success; the message
// auto-clears after 4s on success and 5s on failure.
func (h *HostDetail) SyncContainers(ctx context.Context) {
	res, err := h.api.SyncContainers(ctx, h.hostID)
	if err != nil {
		h.feedback.set(fmt.Sprintf("Sync failed: %v", err), client.ErrorKind(err), syncFeedbackFailureTTL)
		return
	}
	h.feedback.set(fmt.Sprintf("Sync complete: %d containers", res.ContainersFound), "", syncFeedbackSuccessTTL)
	h.Load(ctx)
}

// AddService submits the inline service form with host_id bound to the
// current host.
func (h *HostDetail) AddService(ctx context.Context, svc models.Service) {
	id := h.hostID
	svc.HostID = &id

	if _, err := h.api.CreateService(ctx, svc); err != nil {
		h.feedback.set(err.Error(), client.ErrorKind(err), serviceAddedFeedbackTTL)
		return
	}
	h.feedback.set(fmt.Sprintf("Service %q added", svc.Name), "", syncFeedbackSuccessTTL)
	h.Load(ctx)
}

// CheckService triggers an immediate check of one of the host's
// services and refreshes the host on success.
func (h *HostDetail) CheckService(ctx context.Context, id int64) {
	if _, err := h.api.CheckService(ctx, id); err != nil {
		h.feedback.set(err.Error(), client.ErrorKind(err), serviceAddedFeedbackTTL)
		return
	}
	h.Load(ctx)
}
