package console

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/stream"
	"github.com/DragonRuins/life-hub-sub001/models"
)

type fakeSmartHomeAPI struct {
	mu         sync.Mutex
	dashboard  models.SmartHomeDashboard
	rooms      []models.Room
	dashLoads  int
	controlled []string

	bulkUpdateFn func(ctx context.Context, req models.BulkUpdateRequest) (*models.BulkResult, error)
	bulkDeleteFn func(ctx context.Context, ids []int64) (*models.BulkResult, error)
	importFn     func(ctx context.Context, req models.BulkImportRequest) (*models.BulkImportResult, error)
	discoverFn   func(ctx context.Context) (map[string][]models.DiscoveredEntity, error)
	favoriteErr  error
}

func (f *fakeSmartHomeAPI) SmartHomeDashboard(ctx context.Context) (*models.SmartHomeDashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashLoads++
	d := f.dashboard
	return &d, nil
}

func (f *fakeSmartHomeAPI) Rooms(ctx context.Context) ([]models.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms, nil
}

func (f *fakeSmartHomeAPI) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dashLoads
}

func (f *fakeSmartHomeAPI) Discover(ctx context.Context) (map[string][]models.DiscoveredEntity, error) {
	return f.discoverFn(ctx)
}

func (f *fakeSmartHomeAPI) BulkImport(ctx context.Context, req models.BulkImportRequest) (*models.BulkImportResult, error) {
	return f.importFn(ctx, req)
}

func (f *fakeSmartHomeAPI) BulkUpdate(ctx context.Context, req models.BulkUpdateRequest) (*models.BulkResult, error) {
	return f.bulkUpdateFn(ctx, req)
}

func (f *fakeSmartHomeAPI) BulkDelete(ctx context.Context, ids []int64) (*models.BulkResult, error) {
	return f.bulkDeleteFn(ctx, ids)
}

func (f *fakeSmartHomeAPI) ControlDevice(ctx context.Context, id int64, action string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controlled = append(f.controlled, action)
	return nil
}

func (f *fakeSmartHomeAPI) FavoriteDevice(ctx context.Context, id int64) error {
	return f.favoriteErr
}

func (f *fakeSmartHomeAPI) StreamURL() string { return "http://backend/stream" }

func (f *fakeSmartHomeAPI) StreamHeaders() http.Header { return nil }

func roomPtr(id int64) *int64 { return &id }

func testDashboard() models.SmartHomeDashboard {
	return models.SmartHomeDashboard{
		Rooms: []models.RoomGroup{
			{
				ID:   1,
				Name: "Living Room",
				Devices: []models.Device{
					{ID: 10, RoomID: roomPtr(1), EntityID: "light.sofa", Domain: "light",
						Category: models.CategoryLighting, LastState: "off", IsVisible: true},
					{ID: 11, RoomID: roomPtr(1), EntityID: "sensor.living_temp", Domain: "sensor",
						Category: models.CategorySensor, LastState: "21.0", IsVisible: true},
				},
			},
		},
		Unassigned: []models.Device{
			{ID: 20, EntityID: "light.sofa", Domain: "light",
				Category: models.CategoryLighting, LastState: "off", IsVisible: true},
			{ID: 21, EntityID: "lock.front_door", Domain: "lock",
				Category: models.CategorySecurity, LastState: "locked", IsVisible: true},
		},
		TotalDevices: 4,
	}
}

func TestSmartHomeLoad(t *testing.T) {
	api := &fakeSmartHomeAPI{
		dashboard: testDashboard(),
		rooms:     []models.Room{{ID: 1, Name: "Living Room"}},
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	st := s.Snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, 4, st.Dashboard.TotalDevices)
	assert.Len(t, st.RoomList, 1)
	assert.False(t, st.ShowEmptyState())
}

func TestSmartHomeEmptyStateIgnoresRooms(t *testing.T) {
	api := &fakeSmartHomeAPI{
		dashboard: models.SmartHomeDashboard{
			Rooms: []models.RoomGroup{{ID: 1, Name: "Living Room"}},
		},
		rooms: []models.Room{{ID: 1, Name: "Living Room"}},
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	assert.True(t, s.Snapshot().ShowEmptyState(), "rooms without devices still show the discovery prompt")
}

func TestSmartHomeHandleEventPatchesEveryMatch(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	s.HandleEvent(stream.Event{
		Type:     stream.EventStateChanged,
		EntityID: "light.sofa",
		State:    "on",
		Attributes: models.Attributes{
			"brightness": []byte(`196`),
		},
	})

	st := s.Snapshot()
	// Both devices sharing the entity id are patched, in place.
	assert.Equal(t, "on", st.Dashboard.Rooms[0].Devices[0].LastState)
	assert.Equal(t, "on", st.Dashboard.Unassigned[0].LastState)
	v, ok := st.Dashboard.Unassigned[0].LastAttributes.Float("brightness")
	require.True(t, ok)
	assert.Equal(t, float64(196), v)

	// Everything else is untouched: ids, rooms, visibility, order, count.
	assert.Equal(t, "21.0", st.Dashboard.Rooms[0].Devices[1].LastState)
	assert.Equal(t, int64(10), st.Dashboard.Rooms[0].Devices[0].ID)
	assert.Equal(t, int64(1), *st.Dashboard.Rooms[0].Devices[0].RoomID)
	assert.True(t, st.Dashboard.Unassigned[0].IsVisible)
	assert.Equal(t, 4, st.Dashboard.TotalDevices)
}

func TestSmartHomeHandleEventIgnoresIrrelevant(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	s.HandleEvent(stream.Event{Type: "sync_completed"})
	s.HandleEvent(stream.Event{Type: stream.EventStateChanged, State: "on"})
	s.HandleEvent(stream.Event{Type: stream.EventStateChanged, EntityID: "light.unknown", State: "on"})

	st := s.Snapshot()
	assert.Equal(t, "off", st.Dashboard.Rooms[0].Devices[0].LastState)
}

func TestSmartHomeSelectionLifecycle(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	// Selection is inert outside edit mode.
	s.ToggleSelect(10)
	assert.Empty(t, s.Snapshot().Selected)

	s.SetEditMode(true)
	s.ToggleSelect(20)
	s.ToggleSelect(10)
	s.ToggleSelect(21)
	s.ToggleSelect(21) // deselect

	st := s.Snapshot()
	assert.Equal(t, []int64{10, 20}, st.SelectedIDs(), "stable dashboard order, rooms before unassigned")

	s.SetEditMode(false)
	assert.Empty(t, s.Snapshot().Selected)
}

func TestSmartHomeBulkUpdatePartialFailure(t *testing.T) {
	var gotReq models.BulkUpdateRequest
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	api.bulkUpdateFn = func(_ context.Context, req models.BulkUpdateRequest) (*models.BulkResult, error) {
		gotReq = req
		return &models.BulkResult{Updated: 1, Failed: 1}, nil
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())
	s.SetEditMode(true)
	s.ToggleSelect(10)
	s.ToggleSelect(20)
	before := api.loadCount()

	s.BulkSetCategory(context.Background(), models.CategoryMedia)

	assert.Equal(t, []int64{10, 20}, gotReq.IDs)
	require.NotNil(t, gotReq.Updates.Category)
	assert.Equal(t, models.CategoryMedia, *gotReq.Updates.Category)

	st := s.Snapshot()
	assert.Equal(t, "1 devices updated, 1 failed", st.Feedback.Text)
	assert.Equal(t, client.KindPartial, st.Feedback.Kind)
	assert.Empty(t, st.Selected, "selection clears even on partial failure")
	assert.True(t, st.EditMode, "edit mode survives the operation")
	assert.Greater(t, api.loadCount(), before, "partial failure still reloads")
}

func TestSmartHomeBulkMoveToUnassigned(t *testing.T) {
	var gotReq models.BulkUpdateRequest
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	api.bulkUpdateFn = func(_ context.Context, req models.BulkUpdateRequest) (*models.BulkResult, error) {
		gotReq = req
		return &models.BulkResult{Updated: 1}, nil
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())
	s.SetEditMode(true)
	s.ToggleSelect(10)

	s.BulkMoveToRoom(context.Background(), nil)

	assert.Nil(t, gotReq.Updates.RoomID)
	assert.True(t, gotReq.Updates.MoveRoom, "a move to Unassigned must put an explicit null on the wire")
	assert.Equal(t, "1 devices updated", s.Snapshot().Feedback.Text)
}

func TestSmartHomeBulkSkipsEmptySelection(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	api.bulkUpdateFn = func(context.Context, models.BulkUpdateRequest) (*models.BulkResult, error) {
		t.Fatal("bulk update must not fire with nothing selected")
		return nil, nil
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())
	s.SetEditMode(true)

	visible := true
	s.BulkSetVisibility(context.Background(), visible)
}

func TestSmartHomeBulkDelete(t *testing.T) {
	var gotIDs []int64
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	api.bulkDeleteFn = func(_ context.Context, ids []int64) (*models.BulkResult, error) {
		gotIDs = ids
		return &models.BulkResult{Updated: 2}, nil
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())
	s.SetEditMode(true)
	s.ToggleSelect(10)
	s.ToggleSelect(21)

	s.BulkDelete(context.Background())

	assert.Equal(t, []int64{10, 21}, gotIDs)
	assert.Equal(t, "2 devices deleted", s.Snapshot().Feedback.Text)
}

func TestSmartHomeControl(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	st := s.Snapshot()
	s.Control(context.Background(), st.Dashboard.Rooms[0].Devices[1]) // sensor, not toggleable
	s.Control(context.Background(), st.Dashboard.Rooms[0].Devices[0]) // light, off
	s.Control(context.Background(), st.Dashboard.Unassigned[1])       // lock, locked

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []string{"toggle", "unlock"}, api.controlled)
}

func TestSmartHomeImportFeedback(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard()}
	api.importFn = func(_ context.Context, req models.BulkImportRequest) (*models.BulkImportResult, error) {
		assert.Equal(t, []string{"light.kitchen", "light.sofa"}, req.EntityIDs)
		return &models.BulkImportResult{RegisteredCount: 1, SkippedCount: 1}, nil
	}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())

	s.Import(context.Background(), models.BulkImportRequest{EntityIDs: []string{"light.kitchen", "light.sofa"}})

	assert.Equal(t, "1 devices imported, 1 already registered", s.Snapshot().Feedback.Text)
}

func TestSmartHomeFavoriteError(t *testing.T) {
	api := &fakeSmartHomeAPI{dashboard: testDashboard(), favoriteErr: errors.New("not found (404)")}
	s := NewSmartHome(api, nil)
	s.Load(context.Background())
	before := api.loadCount()

	s.Favorite(context.Background(), 10)

	assert.Equal(t, "not found (404)", s.Snapshot().Feedback.Text)
	assert.Equal(t, before, api.loadCount(), "failed favorite must not reload")
}
