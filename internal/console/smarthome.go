package console

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/poll"
	"github.com/DragonRuins/life-hub-sub001/internal/stream"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// smartHomeRefreshInterval is the fallback poll period covering missed
// SSE events.
const smartHomeRefreshInterval = 60 * time.Second

const bulkFeedbackTTL = 6 * time.Second

// SmartHomeAPI is the backend slice the smart-home controller consumes.
type SmartHomeAPI interface {
	SmartHomeDashboard(ctx context.Context) (*models.SmartHomeDashboard, error)
	Rooms(ctx context.Context) ([]models.Room, error)
	Discover(ctx context.Context) (map[string][]models.DiscoveredEntity, error)
	BulkImport(ctx context.Context, req models.BulkImportRequest) (*models.BulkImportResult, error)
	BulkUpdate(ctx context.Context, req models.BulkUpdateRequest) (*models.BulkResult, error)
	BulkDelete(ctx context.Context, ids []int64) (*models.BulkResult, error)
	ControlDevice(ctx context.Context, id int64, action string) error
	FavoriteDevice(ctx context.Context, id int64) error
	StreamURL() string
	StreamHeaders() http.Header
}

// SmartHomeState is the room->device grid snapshot plus client-only UI
// state (collapse set, edit mode, selection).
type SmartHomeState struct {
	Dashboard models.SmartHomeDashboard
	RoomList  []models.Room
	Loading   bool
	Err       string

	// EditMode gates the bulk action bar. Entering and exiting both
	// clear the selection.
	EditMode bool

	// Selected holds device ids picked in edit mode.
	Selected map[int64]bool

	// Collapsed is the client-only set of folded rooms; toggling never
	// touches the server.
	Collapsed map[int64]bool

	Feedback Feedback
}

// ShowEmptyState reports whether the view shows the discovery prompt
// instead of the room list. Rooms alone do not count: a snapshot with
// zero devices is empty even when rooms exist.
func (s SmartHomeState) ShowEmptyState() bool {
	return !s.Loading && s.Dashboard.TotalDevices == 0
}

// SelectedIDs returns the selection in stable order of appearance in
// the dashboard snapshot.
func (s SmartHomeState) SelectedIDs() []int64 {
	var ids []int64
	appendSel := func(devices []models.Device) {
		for _, d := range devices {
			if s.Selected[d.ID] {
				ids = append(ids, d.ID)
			}
		}
	}
	for _, room := range s.Dashboard.Rooms {
		appendSel(room.Devices)
	}
	appendSel(s.Dashboard.Unassigned)
	return ids
}

// SmartHome owns the room->device tree with SSE state patching, a 60s
// fallback poll, edit mode with bulk mutations, and the discovery
// import flow.
type SmartHome struct {
	api     SmartHomeAPI
	gate    *poll.Gate
	refresh time.Duration

	mu    sync.Mutex
	gen   uint64
	state SmartHomeState

	poller *poll.Poller
	sub    *stream.Subscription

	feedback feedbackCell
}

// NewSmartHome creates the controller. gate may be nil for headless
// use.
func NewSmartHome(api SmartHomeAPI, gate *poll.Gate) *SmartHome {
	return &SmartHome{
		api:     api,
		gate:    gate,
		refresh: smartHomeRefreshInterval,
		state: SmartHomeState{
			Loading:   true,
			Selected:  map[int64]bool{},
			Collapsed: map[int64]bool{},
		},
	}
}

// Snapshot returns a copy of the current state. Maps are copied so the
// caller can iterate without holding the controller lock.
func (s *SmartHome) Snapshot() SmartHomeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Selected = make(map[int64]bool, len(s.state.Selected))
	for k, v := range s.state.Selected {
		st.Selected[k] = v
	}
	st.Collapsed = make(map[int64]bool, len(s.state.Collapsed))
	for k, v := range s.state.Collapsed {
		st.Collapsed[k] = v
	}
	st.Feedback = s.feedback.get()
	return st
}

// SetRefreshInterval overrides the fallback poll period. Must be
// called before Start; non-positive values are ignored.
func (s *SmartHome) SetRefreshInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	s.mu.Lock()
	s.refresh = interval
	s.mu.Unlock()
}

// Load fetches the dashboard and room list in parallel. A newer reload
// supersedes an older one; an SSE event arriving while a poll is in
// flight simply patches whichever snapshot is current afterwards.
func (s *SmartHome) Load(ctx context.Context) {
	s.load(ctx, false)
}

func (s *SmartHome) load(ctx context.Context, background bool) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	var (
		dash  *models.SmartHomeDashboard
		rooms []models.Room
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dash, err = s.api.SmartHomeDashboard(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rooms, err = s.api.Rooms(gctx)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state.Loading = false
	if err != nil {
		if !background {
			s.state.Err = err.Error()
		}
		return
	}
	s.state.Err = ""
	s.state.Dashboard = *dash
	s.state.RoomList = rooms
}

// Start loads the snapshot, opens the SSE subscription, and wires the
// fallback poller. The subscription stays open while the console is
// hidden; only the poller pauses.
func (s *SmartHome) Start(ctx context.Context) {
	s.Load(ctx)

	s.sub = stream.Subscribe(ctx, s.api.StreamURL(), s.HandleEvent, nil, stream.Options{
		Headers: s.api.StreamHeaders(),
	})
	s.poller = poll.Start(s.refresh, s.gate, func(ctx context.Context) {
		s.load(client.Background(ctx), true)
	})
}

// Stop tears down the subscription and poller.
func (s *SmartHome) Stop() {
	if s.poller != nil {
		s.poller.Stop()
	}
	if s.sub != nil {
		s.sub.Close()
	}
}

// HandleEvent applies one stream event to the cached snapshot. For
// state_changed, every device whose entity_id matches, across per-room
// lists and the unassigned list, gets its last_state and
// last_attributes replaced. Nothing is reordered or regrouped; ids,
// rooms, and visibility are untouched. Duplicates and unknown event
// types are tolerated.
func (s *SmartHome) HandleEvent(ev stream.Event) {
	if ev.Type != stream.EventStateChanged || ev.EntityID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	patch := func(devices []models.Device) {
		for i := range devices {
			if devices[i].EntityID == ev.EntityID {
				devices[i].LastState = ev.State
				devices[i].LastAttributes = ev.Attributes
			}
		}
	}
	for i := range s.state.Dashboard.Rooms {
		patch(s.state.Dashboard.Rooms[i].Devices)
	}
	patch(s.state.Dashboard.Unassigned)
}

// ToggleRoom folds or unfolds a room. Client-only state.
func (s *SmartHome) ToggleRoom(roomID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Collapsed[roomID] {
		delete(s.state.Collapsed, roomID)
	} else {
		s.state.Collapsed[roomID] = true
	}
}

// SetEditMode enters or leaves edit mode. Both directions clear the
// selection.
func (s *SmartHome) SetEditMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EditMode = on
	s.state.Selected = map[int64]bool{}
}

// ToggleSelect flips a device in the edit-mode selection.
func (s *SmartHome) ToggleSelect(deviceID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.EditMode {
		return
	}
	if s.state.Selected[deviceID] {
		delete(s.state.Selected, deviceID)
	} else {
		s.state.Selected[deviceID] = true
	}
}

// BulkSetCategory applies one category to the selection.
func (s *SmartHome) BulkSetCategory(ctx context.Context, cat models.DeviceCategory) {
	s.bulkUpdate(ctx, models.DeviceUpdates{Category: &cat})
}

// BulkMoveToRoom moves the selection to a room; nil means Unassigned.
func (s *SmartHome) BulkMoveToRoom(ctx context.Context, roomID *int64) {
	// An explicit null room_id must go over the wire, so the pointer is
	// always set.
	s.bulkUpdate(ctx, models.DeviceUpdates{RoomID: roomID, MoveRoom: true})
}

// BulkSetVisibility shows or hides the selection.
func (s *SmartHome) BulkSetVisibility(ctx context.Context, visible bool) {
	s.bulkUpdate(ctx, models.DeviceUpdates{IsVisible: &visible})
}

// bulkUpdate submits one request for the whole selection. The server
// reports {updated, failed}; failed > 0 surfaces as a non-fatal
// warning. The dashboard reloads and the selection clears after any
// bulk request completes, even partial failure. Edit mode stays on.
func (s *SmartHome) bulkUpdate(ctx context.Context, updates models.DeviceUpdates) {
	ids := s.Snapshot().SelectedIDs()
	if len(ids) == 0 {
		return
	}

	res, err := s.api.BulkUpdate(ctx, models.BulkUpdateRequest{IDs: ids, Updates: updates})
	s.finishBulk(ctx, res, err, "updated")
}

// BulkDelete removes the selection. The TUI confirms first, quoting the
// count.
func (s *SmartHome) BulkDelete(ctx context.Context) {
	ids := s.Snapshot().SelectedIDs()
	if len(ids) == 0 {
		return
	}

	res, err := s.api.BulkDelete(ctx, ids)
	s.finishBulk(ctx, res, err, "deleted")
}

func (s *SmartHome) finishBulk(ctx context.Context, res *models.BulkResult, err error, verb string) {
	if err != nil {
		s.feedback.set(err.Error(), client.ErrorKind(err), bulkFeedbackTTL)
	} else if res.Failed > 0 {
		s.feedback.set(fmt.Sprintf("%d devices %s, %d failed", res.Updated, verb, res.Failed),
			client.KindPartial, bulkFeedbackTTL)
	} else {
		s.feedback.set(fmt.Sprintf("%d devices %s", res.Updated, verb), "", bulkFeedbackTTL)
	}

	// Reload and clear selection regardless of outcome.
	s.Load(ctx)
	s.mu.Lock()
	s.state.Selected = map[int64]bool{}
	s.mu.Unlock()
}

// Control sends the control action for a tap outside edit mode. State
// is never updated optimistically: the next SSE event or the fallback
// poll is the source of truth.
func (s *SmartHome) Control(ctx context.Context, dev models.Device) {
	if !dev.Toggleable() {
		return
	}
	if err := s.api.ControlDevice(ctx, dev.ID, dev.ControlAction()); err != nil {
		s.feedback.set(err.Error(), client.ErrorKind(err), bulkFeedbackTTL)
	}
}

// Favorite flips a device's favorite flag and refreshes the dashboard.
func (s *SmartHome) Favorite(ctx context.Context, deviceID int64) {
	if err := s.api.FavoriteDevice(ctx, deviceID); err != nil {
		s.feedback.set(err.Error(), client.ErrorKind(err), bulkFeedbackTTL)
		return
	}
	s.Load(ctx)
}

// LoadDiscovery fetches integration entities grouped by domain for the
// import modal.
func (s *SmartHome) LoadDiscovery(ctx context.Context) (map[string][]models.DiscoveredEntity, error) {
	return s.api.Discover(ctx)
}

// Import registers the selected unregistered entities in one request.
// Duplicate entity ids are skipped server-side, so re-importing is
// harmless.
func (s *SmartHome) Import(ctx context.Context, req models.BulkImportRequest) {
	res, err := s.api.BulkImport(ctx, req)
	if err != nil {
		s.feedback.set(err.Error(), client.ErrorKind(err), bulkFeedbackTTL)
		return
	}
	if res.SkippedCount > 0 {
		s.feedback.set(fmt.Sprintf("%d devices imported, %d already registered",
			res.RegisteredCount, res.SkippedCount), "", bulkFeedbackTTL)
	} else {
		s.feedback.set(fmt.Sprintf("%d devices imported", res.RegisteredCount), "", bulkFeedbackTTL)
	}
	s.Load(ctx)
}
