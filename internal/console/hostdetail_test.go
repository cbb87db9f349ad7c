package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/models"
)

type fakeHostDetailAPI struct {
	mu        sync.Mutex
	hostLoads int

	hostFn           func(ctx context.Context, id int64) (*models.Host, error)
	detectFn         func(ctx context.Context, id int64) (*models.Hardware, error)
	setupFn          func(ctx context.Context, id int64, req models.DockerSetupRequest) (*models.DockerSetupResult, error)
	syncFn           func(ctx context.Context, hostID int64) (*models.SyncResult, error)
	createServiceFn  func(ctx context.Context, svc models.Service) (*models.Service, error)
	checkServiceFn   func(ctx context.Context, id int64) (*models.Service, error)
	metricsLatestFn  func(ctx context.Context, st models.SourceType, id int64) ([]models.MetricLatest, error)
	metricsQueryFn   func(ctx context.Context, st models.SourceType, id int64, metric string, from, to time.Time, res string) ([]models.MetricPoint, error)
	metricsQueryCall chan string
}

func (f *fakeHostDetailAPI) Host(ctx context.Context, id int64) (*models.Host, error) {
	f.mu.Lock()
	f.hostLoads++
	f.mu.Unlock()
	if f.hostFn != nil {
		return f.hostFn(ctx, id)
	}
	return &models.Host{ID: id, Name: "atlas"}, nil
}

func (f *fakeHostDetailAPI) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hostLoads
}

func (f *fakeHostDetailAPI) DetectHardware(ctx context.Context, id int64) (*models.Hardware, error) {
	return f.detectFn(ctx, id)
}

func (f *fakeHostDetailAPI) SetupDocker(ctx context.Context, id int64, req models.DockerSetupRequest) (*models.DockerSetupResult, error) {
	return f.setupFn(ctx, id, req)
}

func (f *fakeHostDetailAPI) SyncContainers(ctx context.Context, hostID int64) (*models.SyncResult, error) {
	return f.syncFn(ctx, hostID)
}

func (f *fakeHostDetailAPI) CreateService(ctx context.Context, svc models.Service) (*models.Service, error) {
	return f.createServiceFn(ctx, svc)
}

func (f *fakeHostDetailAPI) CheckService(ctx context.Context, id int64) (*models.Service, error) {
	return f.checkServiceFn(ctx, id)
}

func (f *fakeHostDetailAPI) MetricsLatest(ctx context.Context, st models.SourceType, id int64) ([]models.MetricLatest, error) {
	if f.metricsLatestFn != nil {
		return f.metricsLatestFn(ctx, st, id)
	}
	return []models.MetricLatest{{MetricName: "cpu_percent", Value: 41.5}}, nil
}

func (f *fakeHostDetailAPI) MetricsQuery(ctx context.Context, st models.SourceType, id int64, metric string, from, to time.Time, res string) ([]models.MetricPoint, error) {
	if f.metricsQueryCall != nil {
		f.metricsQueryCall <- metric
	}
	if f.metricsQueryFn != nil {
		return f.metricsQueryFn(ctx, st, id, metric, from, to, res)
	}
	return []models.MetricPoint{{MetricName: metric, Value: 40}}, nil
}

func newHostDetailForTest(api *fakeHostDetailAPI) *HostDetail {
	return NewHostDetail(api, metrics.New(api), 1)
}

func TestHostDetailLoad(t *testing.T) {
	h := newHostDetailForTest(&fakeHostDetailAPI{})
	h.Load(context.Background())

	st := h.Snapshot()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Host)
	assert.Equal(t, "atlas", st.Host.Name)
	assert.Equal(t, TabOverview, st.Tab)
	assert.Equal(t, "cpu_percent", st.SelectedMetric)
	assert.Equal(t, metrics.Range24h, st.Range)
}

func TestHostDetailMetricsTabFetches(t *testing.T) {
	api := &fakeHostDetailAPI{}
	h := newHostDetailForTest(api)
	h.Load(context.Background())

	h.SetTab(context.Background(), TabMetrics)

	st := h.Snapshot()
	assert.Equal(t, TabMetrics, st.Tab)
	assert.False(t, st.MetricsLoading)
	assert.False(t, st.MetricsResult.Empty())
}

func TestHostDetailStaleMetricsFetchDiscarded(t *testing.T) {
	block := make(chan struct{})
	api := &fakeHostDetailAPI{
		metricsQueryCall: make(chan string, 1),
		metricsQueryFn: func(_ context.Context, _ models.SourceType, _ int64, metric string, _, _ time.Time, _ string) ([]models.MetricPoint, error) {
			<-block
			return []models.MetricPoint{{MetricName: metric, Value: 99}}, nil
		},
	}
	h := newHostDetailForTest(api)
	h.Load(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.SetTab(context.Background(), TabMetrics)
	}()
	<-api.metricsQueryCall

	// Leaving the tab invalidates the in-flight fetch.
	h.SetTab(context.Background(), TabOverview)
	close(block)
	wg.Wait()

	st := h.Snapshot()
	assert.Equal(t, TabOverview, st.Tab)
	assert.True(t, st.MetricsResult.Empty(), "result for an abandoned tab must be discarded")
}

func TestHostDetailSetupDockerOutcomes(t *testing.T) {
	tests := []struct {
		name string
		res  *models.DockerSetupResult
		err  error
		want string
	}{
		{
			name: "transport failure",
			err:  errors.New("dial tcp: refused"),
			want: "Docker setup failed: dial tcp: refused",
		},
		{
			name: "connection rejected",
			res:  &models.DockerSetupResult{Error: "permission denied on socket"},
			want: "Docker setup failed: permission denied on socket",
		},
		{
			name: "rejected without detail",
			res:  &models.DockerSetupResult{},
			want: "Docker setup failed: connection failed",
		},
		{
			name: "connected with sync",
			res: &models.DockerSetupResult{
				ConnectionOK: true,
				SyncResult:   &models.SyncResult{ContainersFound: 8},
			},
			want: "Docker connected, 8 containers found",
		},
		{
			name: "connected without sync",
			res:  &models.DockerSetupResult{ConnectionOK: true},
			want: "Docker connected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeHostDetailAPI{
				setupFn: func(context.Context, int64, models.DockerSetupRequest) (*models.DockerSetupResult, error) {
					return tt.res, tt.err
				},
			}
			h := newHostDetailForTest(api)
			h.SetupDocker(context.Background(), models.DockerSetupRequest{ConnectionType: "socket"})

			assert.Equal(t, tt.want, h.Snapshot().Feedback.Text)
			assert.False(t, h.SetupBusy(), "controller must return to idle")
		})
	}
}

func TestHostDetailSetupDockerSerialized(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	api := &fakeHostDetailAPI{
		setupFn: func(context.Context, int64, models.DockerSetupRequest) (*models.DockerSetupResult, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			close(started)
			<-block
			return &models.DockerSetupResult{ConnectionOK: true}, nil
		},
	}
	h := newHostDetailForTest(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.SetupDocker(context.Background(), models.DockerSetupRequest{})
	}()
	<-started
	assert.True(t, h.SetupBusy())

	// A second submission while busy is dropped entirely.
	h.SetupDocker(context.Background(), models.DockerSetupRequest{})
	close(block)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestHostDetailSyncContainersFeedback(t *testing.T) {
	api := &fakeHostDetailAPI{
		syncFn: func(_ context.Context, hostID int64) (*models.SyncResult, error) {
			assert.Equal(t, int64(1), hostID)
			return &models.SyncResult{ContainersFound: 5}, nil
		},
	}
	h := newHostDetailForTest(api)
	h.SyncContainers(context.Background())
	assert.Equal(t, "Sync complete: 5 containers", h.Snapshot().Feedback.Text)

	api.syncFn = func(context.Context, int64) (*models.SyncResult, error) {
		return nil, errors.New("host unreachable")
	}
	h.SyncContainers(context.Background())
	assert.Equal(t, "Sync failed: host unreachable", h.Snapshot().Feedback.Text)
}

func TestHostDetailAddServiceBindsHost(t *testing.T) {
	var got models.Service
	api := &fakeHostDetailAPI{
		createServiceFn: func(_ context.Context, svc models.Service) (*models.Service, error) {
			got = svc
			return &svc, nil
		},
	}
	h := newHostDetailForTest(api)
	h.AddService(context.Background(), models.Service{Name: "grafana", URL: "http://atlas:3000"})

	require.NotNil(t, got.HostID)
	assert.Equal(t, int64(1), *got.HostID)
	assert.Equal(t, `Service "grafana" added`, h.Snapshot().Feedback.Text)
}

func TestHostDetailDetectHardware(t *testing.T) {
	// The fake stores the scan result like the server does, so only
	// the reload after detection can surface it.
	var stored *models.Hardware
	api := &fakeHostDetailAPI{}
	api.detectFn = func(context.Context, int64) (*models.Hardware, error) {
		stored = &models.Hardware{CPU: "Ryzen 7 5800X", RAMGB: 64}
		return stored, nil
	}
	api.hostFn = func(_ context.Context, id int64) (*models.Host, error) {
		return &models.Host{ID: id, Name: "atlas", Hardware: stored}, nil
	}
	h := newHostDetailForTest(api)
	h.Load(context.Background())
	before := api.loadCount()

	h.DetectHardware(context.Background())

	st := h.Snapshot()
	require.NotNil(t, st.Host.Hardware)
	assert.Equal(t, float64(64), st.Host.Hardware.RAMGB)
	assert.Equal(t, before+1, api.loadCount())
}
