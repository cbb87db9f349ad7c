// Package apitest runs an in-memory life-dashboard backend for tests.
// It serves the infrastructure API surface over echo with fixture data,
// mirrors the production error payload shape, and exposes hooks for
// scripting failures and pushing stream events.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/DragonRuins/life-hub-sub001/models"
)

// Server is a scriptable fake backend.
type Server struct {
	echo *echo.Echo
	http *httptest.Server

	mu      sync.Mutex
	nextID  int64
	hosts   []models.Host
	conts   []models.Container
	svcs    []models.Service
	network []models.NetworkDevice
	incs    []models.Incident
	rooms   []models.Room
	devices []models.Device
	metrics []models.MetricPoint

	// Discovered is served verbatim by /smarthome/discover.
	Discovered map[string][]models.DiscoveredEntity

	// SetupDockerResult is returned by /hosts/:id/setup-docker.
	SetupDockerResult models.DockerSetupResult

	// FailNext, when set, makes the next request fail with the given
	// status and then resets.
	FailNext int

	// ControlLog records device control actions in arrival order.
	ControlLog []string

	stream *streamHub
}

// New starts the fake backend with empty fixtures.
func New() *Server {
	s := &Server{
		nextID:     1,
		Discovered: map[string][]models.DiscoveredEntity{},
		stream:     newStreamHub(),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = s.errorHandler

	s.echo = e
	s.routes()
	s.http = httptest.NewServer(e)
	return s
}

// URL is the backend base URL.
func (s *Server) URL() string { return s.http.URL }

// Close shuts the backend down.
func (s *Server) Close() {
	s.stream.close()
	s.http.Close()
}

// id hands out fixture ids.
func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// AddHost seeds a host and returns it with an assigned id.
func (s *Server) AddHost(h models.Host) models.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.id()
	s.hosts = append(s.hosts, h)
	return h
}

// AddContainer seeds a container.
func (s *Server) AddContainer(c models.Container) models.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conts = append(s.conts, c)
	return c
}

// AddService seeds a service and returns it with an assigned id.
func (s *Server) AddService(svc models.Service) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.ID = s.id()
	s.svcs = append(s.svcs, svc)
	return svc
}

// AddIncident seeds an incident and returns it with an assigned id.
func (s *Server) AddIncident(inc models.Incident) models.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	inc.ID = s.id()
	s.incs = append(s.incs, inc)
	return inc
}

// AddRoom seeds a room and returns it with an assigned id.
func (s *Server) AddRoom(r models.Room) models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.rooms = append(s.rooms, r)
	return r
}

// AddDevice seeds a device and returns it with an assigned id.
func (s *Server) AddDevice(d models.Device) models.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.devices = append(s.devices, d)
	return d
}

// AddMetricPoint seeds one metric sample.
func (s *Server) AddMetricPoint(p models.MetricPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, p)
}

// Device returns a seeded device by id for assertions.
func (s *Server) Device(id int64) (models.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.ID == id {
			return d, true
		}
	}
	return models.Device{}, false
}

// Incident returns a seeded incident by id for assertions.
func (s *Server) Incident(id int64) (models.Incident, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inc := range s.incs {
		if inc.ID == id {
			return inc, true
		}
	}
	return models.Incident{}, false
}

// PushEvent broadcasts a raw SSE payload to all stream subscribers.
func (s *Server) PushEvent(payload string) {
	s.stream.broadcast(payload)
}

// errorBody matches the production error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	body := errorBody{Code: "internal_error", Message: err.Error()}
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			body.Message = msg
		}
		switch code {
		case http.StatusNotFound:
			body.Code = "not_found"
		case http.StatusUnprocessableEntity:
			body.Code = "validation_failed"
		case http.StatusConflict:
			body.Code = "conflict"
		default:
			body.Code = "request_failed"
		}
	}
	if !c.Response().Committed {
		_ = c.JSON(code, body)
	}
}

// failNext consumes the scripted failure, if any.
func (s *Server) failNext(c echo.Context) error {
	s.mu.Lock()
	status := s.FailNext
	s.FailNext = 0
	s.mu.Unlock()
	if status != 0 {
		return echo.NewHTTPError(status, "scripted failure")
	}
	return nil
}

func now() time.Time { return time.Now().UTC().Truncate(time.Second) }
