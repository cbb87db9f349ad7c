package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/DragonRuins/life-hub-sub001/models"
)

func (s *Server) smartHomeDashboard(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dash := models.SmartHomeDashboard{Rooms: []models.RoomGroup{}, Unassigned: []models.Device{}}
	for _, r := range s.rooms {
		dash.Rooms = append(dash.Rooms, models.RoomGroup{ID: r.ID, Name: r.Name, Icon: r.Icon, Devices: []models.Device{}})
	}
	for _, d := range s.devices {
		dash.TotalDevices++
		placed := false
		if d.RoomID != nil {
			for i := range dash.Rooms {
				if dash.Rooms[i].ID == *d.RoomID {
					dash.Rooms[i].Devices = append(dash.Rooms[i].Devices, d)
					placed = true
					break
				}
			}
		}
		if !placed {
			dash.Unassigned = append(dash.Unassigned, d)
		}
	}
	return c.JSON(http.StatusOK, dash)
}

func (s *Server) listRooms(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.rooms)
}

func (s *Server) discover(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Flag entities that already have a registered device.
	registered := map[string]bool{}
	for _, d := range s.devices {
		registered[d.EntityID] = true
	}
	out := map[string][]models.DiscoveredEntity{}
	for domain, ents := range s.Discovered {
		for _, e := range ents {
			e.IsRegistered = registered[e.EntityID]
			out[domain] = append(out[domain], e)
		}
	}
	return c.JSON(http.StatusOK, out)
}

// bulkImport registers the requested entities, skipping entity ids that
// already have a device. Category defaults by domain unless the request
// carries an explicit one.
func (s *Server) bulkImport(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var req models.BulkImportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.EntityIDs) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "entity_ids is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	registered := map[string]bool{}
	for _, d := range s.devices {
		registered[d.EntityID] = true
	}

	res := models.BulkImportResult{}
	for _, entityID := range req.EntityIDs {
		if registered[entityID] {
			res.SkippedCount++
			continue
		}
		ent, ok := s.findDiscovered(entityID)
		if !ok {
			res.SkippedCount++
			continue
		}
		cat := req.Category
		if cat == "" {
			cat = models.CategoryForDomain(ent.Domain)
		}
		s.devices = append(s.devices, models.Device{
			ID:           s.id(),
			RoomID:       req.RoomID,
			EntityID:     ent.EntityID,
			FriendlyName: ent.FriendlyName,
			Domain:       ent.Domain,
			Category:     cat,
			LastState:    ent.State,
			IsVisible:    true,
		})
		registered[entityID] = true
		res.RegisteredCount++
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) findDiscovered(entityID string) (models.DiscoveredEntity, bool) {
	for _, ents := range s.Discovered {
		for _, e := range ents {
			if e.EntityID == entityID {
				return e, true
			}
		}
	}
	return models.DiscoveredEntity{}, false
}

// bulkUpdate applies the diff per device; unknown ids count as failed
// and do not abort the rest.
func (s *Server) bulkUpdate(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var req models.BulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.BulkResult{}
	for _, id := range req.IDs {
		found := false
		for i := range s.devices {
			if s.devices[i].ID != id {
				continue
			}
			found = true
			if req.Updates.Category != nil {
				s.devices[i].Category = *req.Updates.Category
			}
			if req.Updates.MoveRoom {
				s.devices[i].RoomID = req.Updates.RoomID
			}
			if req.Updates.IsVisible != nil {
				s.devices[i].IsVisible = *req.Updates.IsVisible
			}
			break
		}
		if found {
			res.Updated++
		} else {
			res.Failed++
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) bulkDelete(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.BulkResult{}
	for _, id := range req.IDs {
		found := false
		for i := range s.devices {
			if s.devices[i].ID == id {
				s.devices = append(s.devices[:i], s.devices[i+1:]...)
				found = true
				break
			}
		}
		if found {
			res.Updated++
		} else {
			res.Failed++
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) controlDevice(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.ID == id {
			s.ControlLog = append(s.ControlLog, fmt.Sprintf("%s:%s", d.EntityID, req.Action))
			return c.NoContent(http.StatusAccepted)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "device not found")
}

func (s *Server) favoriteDevice(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.devices {
		if s.devices[i].ID == id {
			s.devices[i].IsFavorited = !s.devices[i].IsFavorited
			return c.JSON(http.StatusOK, s.devices[i])
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "device not found")
}

// PushStateChanged broadcasts a state_changed event for an entity.
func (s *Server) PushStateChanged(entityID, state string, attributes models.Attributes) {
	payload, _ := json.Marshal(map[string]any{
		"type":       "state_changed",
		"entity_id":  entityID,
		"state":      state,
		"attributes": attributes,
	})
	s.stream.broadcast(string(payload))
}

// streamEvents serves the SSE endpoint. Each subscriber gets every
// broadcast from subscription time until the client disconnects or the
// server closes.
func (s *Server) streamEvents(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	sub := s.stream.subscribe()
	defer s.stream.unsubscribe(sub)

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case msg, ok := <-sub:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			w.Flush()
		}
	}
}

// streamHub fans broadcast payloads out to SSE subscribers.
type streamHub struct {
	mu     sync.Mutex
	subs   map[chan string]struct{}
	closed bool
}

func newStreamHub() *streamHub {
	return &streamHub{subs: map[chan string]struct{}{}}
}

func (h *streamHub) subscribe() chan string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan string, 16)
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

func (h *streamHub) unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
	}
}

func (h *streamHub) broadcast(payload string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}

func (h *streamHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		close(ch)
		delete(h.subs, ch)
	}
}
