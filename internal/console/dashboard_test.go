package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/models"
)

type fakeDashboardAPI struct {
	mu sync.Mutex

	dashboardFn  func(ctx context.Context) (*models.DashboardSummary, error)
	hostsFn      func(ctx context.Context) ([]models.Host, error)
	containersFn func(ctx context.Context) ([]models.Container, error)
	servicesFn   func(ctx context.Context) ([]models.Service, error)
	createHostFn func(ctx context.Context, req client.HostCreateRequest) (*client.HostCreateResponse, error)
	deleteHostFn func(ctx context.Context, id int64) error

	loads int
}

func (f *fakeDashboardAPI) countLoad() {
	f.mu.Lock()
	f.loads++
	f.mu.Unlock()
}

func (f *fakeDashboardAPI) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func (f *fakeDashboardAPI) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	f.countLoad()
	if f.dashboardFn != nil {
		return f.dashboardFn(ctx)
	}
	return &models.DashboardSummary{}, nil
}

func (f *fakeDashboardAPI) Hosts(ctx context.Context) ([]models.Host, error) {
	if f.hostsFn != nil {
		return f.hostsFn(ctx)
	}
	return nil, nil
}

func (f *fakeDashboardAPI) Containers(ctx context.Context) ([]models.Container, error) {
	if f.containersFn != nil {
		return f.containersFn(ctx)
	}
	return nil, nil
}

func (f *fakeDashboardAPI) Services(ctx context.Context) ([]models.Service, error) {
	if f.servicesFn != nil {
		return f.servicesFn(ctx)
	}
	return nil, nil
}

func (f *fakeDashboardAPI) CreateHost(ctx context.Context, req client.HostCreateRequest) (*client.HostCreateResponse, error) {
	return f.createHostFn(ctx, req)
}

func (f *fakeDashboardAPI) DeleteHost(ctx context.Context, id int64) error {
	if f.deleteHostFn != nil {
		return f.deleteHostFn(ctx, id)
	}
	return nil
}

func TestDashboardLoadComposesAllParts(t *testing.T) {
	api := &fakeDashboardAPI{
		dashboardFn: func(context.Context) (*models.DashboardSummary, error) {
			return &models.DashboardSummary{
				Hosts: models.StatusCounts{Total: 2, ByStatus: map[string]int{"online": 2}},
			}, nil
		},
		hostsFn: func(context.Context) ([]models.Host, error) {
			return []models.Host{{ID: 1, Name: "atlas"}, {ID: 2, Name: "borei"}}, nil
		},
		containersFn: func(context.Context) ([]models.Container, error) {
			return []models.Container{{ID: 31, Name: "grafana"}}, nil
		},
		servicesFn: func(context.Context) ([]models.Service, error) {
			return []models.Service{{ID: 9, Name: "dns"}}, nil
		},
	}
	d := NewDashboard(api, nil)
	require.True(t, d.Snapshot().Loading)

	d.Load(context.Background())

	st := d.Snapshot()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	require.NotNil(t, st.Summary)
	assert.Equal(t, 2, st.Summary.Hosts.Total)
	assert.Len(t, st.Hosts, 2)
	assert.Len(t, st.Containers, 1)
	assert.Len(t, st.Services, 1)
	assert.False(t, st.LastUpdated.IsZero())
}

func TestDashboardLoadPartialFailureKeepsOtherParts(t *testing.T) {
	api := &fakeDashboardAPI{
		hostsFn: func(context.Context) ([]models.Host, error) {
			return nil, errors.New("hosts unavailable")
		},
		servicesFn: func(context.Context) ([]models.Service, error) {
			return []models.Service{{ID: 1, Name: "dns"}}, nil
		},
	}
	d := NewDashboard(api, nil)
	d.Load(context.Background())

	st := d.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, "hosts unavailable", st.Err)
	assert.Empty(t, st.Hosts)
	assert.Len(t, st.Services, 1, "failing part must not blank the others")
}

func TestDashboardNewerLoadSupersedesOlder(t *testing.T) {
	block := make(chan struct{})
	first := true
	var mu sync.Mutex
	api := &fakeDashboardAPI{}
	api.dashboardFn = func(context.Context) (*models.DashboardSummary, error) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()
		if isFirst {
			<-block
			return &models.DashboardSummary{Hosts: models.StatusCounts{Total: 1}}, nil
		}
		return &models.DashboardSummary{Hosts: models.StatusCounts{Total: 7}}, nil
	}

	d := NewDashboard(api, nil)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.Load(context.Background())
	}()
	for api.loadCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	d.Load(context.Background())
	close(block)
	wg.Wait()

	st := d.Snapshot()
	require.NotNil(t, st.Summary)
	assert.Equal(t, 7, st.Summary.Hosts.Total, "stale result must be discarded")
}

func TestDashboardCreateHostFeedback(t *testing.T) {
	ok := true
	tests := []struct {
		name string
		resp *client.HostCreateResponse
		err  error
		want string
		kind client.Kind
	}{
		{
			name: "plain host",
			resp: &client.HostCreateResponse{Host: models.Host{Name: "atlas"}},
			want: `Host "atlas" created`,
		},
		{
			name: "docker with sync",
			resp: &client.HostCreateResponse{
				Host: models.Host{Name: "atlas"},
				DockerSetup: &models.DockerSetupResult{
					ConnectionOK: ok,
					SyncResult:   &models.SyncResult{ContainersFound: 12},
				},
			},
			want: `Host "atlas" created, Docker connected, 12 containers found`,
		},
		{
			name: "docker without sync",
			resp: &client.HostCreateResponse{
				Host:        models.Host{Name: "atlas"},
				DockerSetup: &models.DockerSetupResult{ConnectionOK: ok},
			},
			want: `Host "atlas" created, Docker connected`,
		},
		{
			name: "docker failed",
			resp: &client.HostCreateResponse{
				Host:        models.Host{Name: "atlas"},
				DockerSetup: &models.DockerSetupResult{Error: "dial tcp: refused"},
			},
			want: `Host "atlas" created, Docker setup failed: dial tcp: refused`,
			kind: client.KindClient,
		},
		{
			name: "request failed",
			err:  errors.New("name already taken"),
			want: "name already taken",
			kind: client.KindTransport,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeDashboardAPI{
				createHostFn: func(context.Context, client.HostCreateRequest) (*client.HostCreateResponse, error) {
					return tt.resp, tt.err
				},
			}
			d := NewDashboard(api, nil)
			d.CreateHost(context.Background(), client.HostCreateRequest{})

			fb := d.Snapshot().Feedback
			assert.Equal(t, tt.want, fb.Text)
			assert.Equal(t, tt.kind, fb.Kind)
		})
	}
}

func TestDashboardDeleteHostReloads(t *testing.T) {
	api := &fakeDashboardAPI{}
	d := NewDashboard(api, nil)
	d.Load(context.Background())
	before := api.loadCount()

	d.DeleteHost(context.Background(), 4)
	assert.Equal(t, before+1, api.loadCount())
}

func TestDashboardLiveToggle(t *testing.T) {
	d := NewDashboard(&fakeDashboardAPI{}, nil)
	assert.False(t, d.Live())

	d.SetAutoRefresh(true)
	assert.True(t, d.Live())
	d.SetAutoRefresh(true) // idempotent

	d.Close()
	assert.False(t, d.Live())
	d.Close()
}
