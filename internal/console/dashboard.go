package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/poll"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// dashboardRefreshInterval is the LIVE mode poll period.
const dashboardRefreshInterval = 30 * time.Second

// hostCreateFeedbackTTL is how long host-creation feedback stays up.
const hostCreateFeedbackTTL = 8 * time.Second

// DashboardAPI is the backend slice the dashboard controller consumes.
type DashboardAPI interface {
	Dashboard(ctx context.Context) (*models.DashboardSummary, error)
	Hosts(ctx context.Context) ([]models.Host, error)
	Containers(ctx context.Context) ([]models.Container, error)
	Services(ctx context.Context) ([]models.Service, error)
	CreateHost(ctx context.Context, req client.HostCreateRequest) (*client.HostCreateResponse, error)
	DeleteHost(ctx context.Context, id int64) error
}

// DashboardState is the composed landing-view snapshot.
type DashboardState struct {
	Summary    *models.DashboardSummary
	Hosts      []models.Host
	Containers []models.Container
	Services   []models.Service

	// Loading is true until all four initial requests settle.
	Loading bool

	// Err is the top-level error strip; a failing part does not prevent
	// the other parts from rendering.
	Err string

	// AutoRefresh mirrors the LIVE toggle. Status dots pulse iff it is
	// on.
	AutoRefresh bool

	LastUpdated time.Time
	Feedback    Feedback
}

// Dashboard composes host/container/service/incident snapshots into a
// single view with an optional 30s LIVE auto-refresh.
type Dashboard struct {
	api     DashboardAPI
	gate    *poll.Gate
	refresh time.Duration

	mu     sync.Mutex
	gen    uint64
	state  DashboardState
	poller *poll.Poller

	feedback feedbackCell
}

// NewDashboard creates the controller. gate may be nil for headless
// use.
func NewDashboard(api DashboardAPI, gate *poll.Gate) *Dashboard {
	return &Dashboard{
		api:     api,
		gate:    gate,
		refresh: dashboardRefreshInterval,
		state:   DashboardState{Loading: true},
	}
}

// SetRefreshInterval overrides the LIVE poll period. Must be called
// before SetAutoRefresh; non-positive values are ignored.
func (d *Dashboard) SetRefreshInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	d.mu.Lock()
	d.refresh = interval
	d.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	s.Feedback = d.feedback.get()
	return s
}

// Load issues the four dashboard requests independently. The loading
// indicator is cleared only when all four settle; any single failure
// surfaces as a top-level error without blanking the parts that
// succeeded. A newer Load supersedes an older one still in flight.
func (d *Dashboard) Load(ctx context.Context) {
	d.load(ctx, false)
}

func (d *Dashboard) load(ctx context.Context, background bool) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	var (
		summary    *models.DashboardSummary
		hosts      []models.Host
		containers []models.Container
		services   []models.Service
		errs       []error
		errMu      sync.Mutex
	)
	record := func(err error) {
		if err == nil {
			return
		}
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		s, err := d.api.Dashboard(ctx)
		record(err)
		summary = s
	}()
	go func() {
		defer wg.Done()
		h, err := d.api.Hosts(ctx)
		record(err)
		hosts = h
	}()
	go func() {
		defer wg.Done()
		c, err := d.api.Containers(ctx)
		record(err)
		containers = c
	}()
	go func() {
		defer wg.Done()
		s, err := d.api.Services(ctx)
		record(err)
		services = s
	}()
	wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		// A newer reload has superseded this one.
		return
	}
	d.state.Loading = false
	d.state.LastUpdated = time.Now()
	if summary != nil {
		d.state.Summary = summary
	}
	if hosts != nil {
		d.state.Hosts = hosts
	}
	if containers != nil {
		d.state.Containers = containers
	}
	if services != nil {
		d.state.Services = services
	}
	if len(errs) > 0 {
		if background {
			// Background refresh failures stay silent; the next tick
			// retries.
			return
		}
		d.state.Err = errs[0].Error()
	} else {
		d.state.Err = ""
	}
}

// SetAutoRefresh toggles LIVE mode. Enabling wires a 30-second poller
// that pauses while the console is hidden; disabling cancels it.
func (d *Dashboard) SetAutoRefresh(on bool) {
	d.mu.Lock()
	if d.state.AutoRefresh == on {
		d.mu.Unlock()
		return
	}
	d.state.AutoRefresh = on
	if on {
		d.poller = poll.Start(d.refresh, d.gate, func(ctx context.Context) {
			d.load(client.Background(ctx), true)
		})
	} else if d.poller != nil {
		p := d.poller
		d.poller = nil
		defer p.Stop()
	}
	d.mu.Unlock()
}

// Live reports whether the LIVE indicator is visible.
func (d *Dashboard) Live() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.AutoRefresh
}

// Close stops any running poller.
func (d *Dashboard) Close() {
	d.SetAutoRefresh(false)
}

// CreateHost submits the host-creation form. When the form carried
// Docker setup fields the response reports one of three outcomes:
// success with containers, success without sync data, or failure. The
// feedback strip auto-clears after 8 seconds and the dashboard reloads
// on success.
func (d *Dashboard) CreateHost(ctx context.Context, req client.HostCreateRequest) {
	resp, err := d.api.CreateHost(ctx, req)
	if err != nil {
		d.feedback.set(err.Error(), client.ErrorKind(err), hostCreateFeedbackTTL)
		return
	}

	switch {
	case resp.DockerSetup == nil:
		d.feedback.set(fmt.Sprintf("Host %q created", resp.Host.Name), "", hostCreateFeedbackTTL)
	case resp.DockerSetup.ConnectionOK && resp.DockerSetup.SyncResult != nil:
		d.feedback.set(
			fmt.Sprintf("Host %q created, Docker connected, %d containers found",
				resp.Host.Name, resp.DockerSetup.SyncResult.ContainersFound),
			"", hostCreateFeedbackTTL)
	case resp.DockerSetup.ConnectionOK:
		d.feedback.set(fmt.Sprintf("Host %q created, Docker connected", resp.Host.Name), "", hostCreateFeedbackTTL)
	default:
		// The host is still saved; only the Docker integration failed.
		msg := resp.DockerSetup.Error
		if msg == "" {
			msg = "connection failed"
		}
		d.feedback.set(fmt.Sprintf("Host %q created, Docker setup failed: %s", resp.Host.Name, msg),
			client.KindClient, hostCreateFeedbackTTL)
	}

	d.Load(ctx)
}

// DeleteHost removes a host after the TUI has confirmed the action.
func (d *Dashboard) DeleteHost(ctx context.Context, id int64) {
	if err := d.api.DeleteHost(ctx, id); err != nil {
		d.feedback.set(err.Error(), client.ErrorKind(err), hostCreateFeedbackTTL)
		return
	}
	d.Load(ctx)
}
