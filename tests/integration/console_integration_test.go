package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonRuins/life-hub-sub001/internal/apitest"
	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/console"
	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/internal/stream"
	"github.com/DragonRuins/life-hub-sub001/models"
)

func newBackend(t *testing.T) (*apitest.Server, *client.Client) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL())
	require.NoError(t, err)
	return srv, c
}

// TestHostLifecycle walks a host through creation, hardware detection,
// docker setup, container sync, and deletion over the wire.
func TestHostLifecycle(t *testing.T) {
	srv, c := newBackend(t)
	ctx := context.Background()
	srv.SetupDockerResult = models.DockerSetupResult{
		ConnectionOK: true,
		SyncResult:   &models.SyncResult{ContainersFound: 3},
	}

	resp, err := c.CreateHost(ctx, client.HostCreateRequest{
		Host:        models.Host{Name: "atlas", HostType: models.HostTypeServer, IP: "10.0.0.5"},
		DockerSetup: &models.DockerSetupRequest{ConnectionType: "socket", SocketPath: "/var/run/docker.sock"},
	})
	require.NoError(t, err)
	// The server assigns the id and nests the host under "host"; a
	// zero id here means the response shape drifted.
	require.NotZero(t, resp.Host.ID)
	assert.Equal(t, "atlas", resp.Host.Name)
	require.NotNil(t, resp.DockerSetup)
	assert.True(t, resp.DockerSetup.ConnectionOK)
	assert.Equal(t, 3, resp.DockerSetup.SyncResult.ContainersFound)

	hw, err := c.DetectHardware(ctx, resp.Host.ID)
	require.NoError(t, err)
	assert.NotZero(t, hw.CPUCores)

	host, err := c.Host(ctx, resp.Host.ID)
	require.NoError(t, err)
	require.NotNil(t, host.Hardware)

	srv.AddContainer(models.Container{ID: 100, HostID: resp.Host.ID, Name: "grafana", Image: "grafana/grafana"})
	sync, err := c.SyncContainers(ctx, resp.Host.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sync.ContainersFound)

	require.NoError(t, c.DeleteHost(ctx, resp.Host.ID))
	_, err = c.Host(ctx, resp.Host.ID)
	assert.Equal(t, client.KindClient, client.ErrorKind(err))
}

// TestIncidentResolveStampsTimestamp verifies the server, not the
// client, owns resolved_at.
func TestIncidentResolveStampsTimestamp(t *testing.T) {
	srv, c := newBackend(t)
	ctx := context.Background()
	seeded := srv.AddIncident(models.Incident{
		Title:     "switch rebooting",
		Severity:  models.SeverityMedium,
		Status:    models.IncidentActive,
		StartedAt: time.Now().UTC().Add(-time.Hour),
	})

	inc := console.NewIncidents(c)
	inc.Resolve(ctx, seeded.ID)

	stored, ok := srv.Incident(seeded.ID)
	require.True(t, ok)
	assert.Equal(t, models.IncidentResolved, stored.Status)
	require.NotNil(t, stored.ResolvedAt)
	assert.NoError(t, stored.CheckConsistency())

	// Resolving again is a no-op; the timestamp does not move.
	first := *stored.ResolvedAt
	inc.Resolve(ctx, seeded.ID)
	stored, _ = srv.Incident(seeded.ID)
	assert.Equal(t, first, *stored.ResolvedAt)
}

// TestSmartHomeRoundTrip drives import, bulk edits, control, and the
// live stream against the fake backend.
func TestSmartHomeRoundTrip(t *testing.T) {
	srv, c := newBackend(t)
	ctx := context.Background()

	room := srv.AddRoom(models.Room{Name: "Office"})
	srv.Discovered = map[string][]models.DiscoveredEntity{
		"light": {{EntityID: "light.desk", FriendlyName: "Desk Lamp", Domain: "light", State: "off"}},
		"lock":  {{EntityID: "lock.front", FriendlyName: "Front Door", Domain: "lock", State: "locked"}},
	}

	sh := console.NewSmartHome(c, nil)
	sh.Import(ctx, models.BulkImportRequest{EntityIDs: []string{"light.desk", "lock.front"}})
	require.Equal(t, 2, sh.Snapshot().Dashboard.TotalDevices)

	// Re-importing the same entities registers nothing new.
	sh.Import(ctx, models.BulkImportRequest{EntityIDs: []string{"light.desk", "lock.front"}})
	st := sh.Snapshot()
	assert.Equal(t, 2, st.Dashboard.TotalDevices)
	assert.Equal(t, "0 devices imported, 2 already registered", st.Feedback.Text)

	// Auto-assigned categories follow the domain table.
	var lamp, lock models.Device
	for _, d := range st.Dashboard.Unassigned {
		switch d.EntityID {
		case "light.desk":
			lamp = d
		case "lock.front":
			lock = d
		}
	}
	assert.Equal(t, models.CategoryLighting, lamp.Category)
	assert.Equal(t, models.CategorySecurity, lock.Category)

	// Move both into the office.
	sh.SetEditMode(true)
	sh.ToggleSelect(lamp.ID)
	sh.ToggleSelect(lock.ID)
	sh.BulkMoveToRoom(ctx, &room.ID)
	st = sh.Snapshot()
	require.Len(t, st.Dashboard.Rooms, 1)
	assert.Len(t, st.Dashboard.Rooms[0].Devices, 2)
	assert.Empty(t, st.Dashboard.Unassigned)
	sh.SetEditMode(false)

	// Controls: lamp toggles, locked lock unlocks.
	sh.Control(ctx, lamp)
	sh.Control(ctx, lock)
	assert.Equal(t, []string{"light.desk:toggle", "lock.front:unlock"}, srv.ControlLog)

	// A live state change patches the snapshot without a reload.
	done := make(chan struct{})
	sub := stream.Subscribe(ctx, c.StreamURL(), func(ev stream.Event) {
		sh.HandleEvent(ev)
		if ev.EntityID == "light.desk" {
			select {
			case <-done:
			default:
				close(done)
			}
		}
	}, nil, stream.Options{Headers: c.StreamHeaders()})
	defer sub.Close()

	time.Sleep(50 * time.Millisecond) // let the subscriber connect
	srv.PushStateChanged("light.desk", "on", models.Attributes{"brightness": []byte(`120`)})
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stream event")
	}

	st = sh.Snapshot()
	assert.Equal(t, 2, st.Dashboard.TotalDevices)
	for _, d := range st.Dashboard.Rooms[0].Devices {
		if d.EntityID == "light.desk" {
			assert.Equal(t, "on", d.LastState)
		}
	}
}

// TestMetricsEngineOverWire checks window computation and ordering
// against the backend's newest-first responses.
func TestMetricsEngineOverWire(t *testing.T) {
	srv, c := newBackend(t)
	ctx := context.Background()
	host := srv.AddHost(models.Host{Name: "atlas", HostType: models.HostTypeServer})

	base := time.Now().UTC().Truncate(time.Minute)
	for i := 0; i < 5; i++ {
		srv.AddMetricPoint(models.MetricPoint{
			SourceType: models.SourceHost,
			SourceID:   host.ID,
			MetricName: "cpu_percent",
			Value:      float64(10 * i),
			RecordedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}

	engine := metrics.New(c)
	res, err := engine.Fetch(ctx, metrics.Query{
		SourceType: models.SourceHost,
		SourceID:   host.ID,
		MetricName: "cpu_percent",
		Range:      metrics.Range24h,
	})
	require.NoError(t, err)
	require.Len(t, res.Series, 5)
	for i := 1; i < len(res.Series); i++ {
		assert.True(t, res.Series[i].RecordedAt.After(res.Series[i-1].RecordedAt),
			"series must be oldest-first")
	}
	assert.Contains(t, res.LatestByName, "cpu_percent")
}

// TestErrorKindsOverWire checks the taxonomy against real responses.
func TestErrorKindsOverWire(t *testing.T) {
	srv, c := newBackend(t)
	ctx := context.Background()

	_, err := c.Host(ctx, 9999)
	assert.Equal(t, client.KindClient, client.ErrorKind(err))

	_, err = c.CreateService(ctx, models.Service{})
	assert.Equal(t, client.KindValidation, client.ErrorKind(err))

	srv.FailNext = 503
	_, err = c.Hosts(ctx)
	assert.Equal(t, client.KindServer, client.ErrorKind(err))
}
