package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DragonRuins/life-hub-sub001/models"
)

func (s *Server) routes() {
	g := s.echo.Group("/api/infrastructure")

	g.GET("/dashboard", s.getDashboard)

	g.GET("/hosts", s.listHosts)
	g.POST("/hosts", s.createHost)
	g.GET("/hosts/:id", s.getHost)
	g.PATCH("/hosts/:id", s.updateHost)
	g.DELETE("/hosts/:id", s.deleteHost)
	g.POST("/hosts/:id/detect-hardware", s.detectHardware)
	g.POST("/hosts/:id/setup-docker", s.setupDocker)

	g.GET("/containers", s.listContainers)
	g.POST("/containers/sync/:hostID", s.syncContainers)

	g.GET("/services", s.listServices)
	g.POST("/services", s.createService)
	g.PATCH("/services/:id", s.updateService)
	g.DELETE("/services/:id", s.deleteService)
	g.POST("/services/:id/check", s.checkService)

	g.GET("/network", s.listNetwork)
	g.POST("/network", s.createNetwork)
	g.PATCH("/network/:id", s.updateNetwork)
	g.DELETE("/network/:id", s.deleteNetwork)

	g.GET("/incidents", s.listIncidents)
	g.POST("/incidents", s.createIncident)
	g.PATCH("/incidents/:id", s.updateIncident)
	g.DELETE("/incidents/:id", s.deleteIncident)

	g.GET("/metrics/latest", s.metricsLatest)
	g.GET("/metrics/query", s.metricsQuery)

	sh := g.Group("/smarthome")
	sh.GET("/dashboard", s.smartHomeDashboard)
	sh.GET("/rooms", s.listRooms)
	sh.GET("/discover", s.discover)
	sh.POST("/devices/bulk-import", s.bulkImport)
	sh.PATCH("/devices/bulk-update", s.bulkUpdate)
	sh.DELETE("/devices/bulk-delete", s.bulkDelete)
	sh.POST("/devices/:id/control", s.controlDevice)
	sh.POST("/devices/:id/favorite", s.favoriteDevice)
	sh.GET("/stream", s.streamEvents)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (s *Server) getDashboard(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	count := func(n int, statuses func(i int) string) models.StatusCounts {
		sc := models.StatusCounts{Total: n, ByStatus: map[string]int{}}
		for i := 0; i < n; i++ {
			sc.ByStatus[statuses(i)]++
		}
		return sc
	}
	sum := models.DashboardSummary{
		Hosts:      count(len(s.hosts), func(i int) string { return string(s.hosts[i].Status) }),
		Containers: count(len(s.conts), func(i int) string { return string(s.conts[i].Status) }),
		Services:   count(len(s.svcs), func(i int) string { return string(s.svcs[i].Status) }),
	}
	for _, inc := range s.incs {
		if inc.Status != models.IncidentResolved {
			sum.Incidents.Active++
		}
		sum.Incidents.Recent = append(sum.Incidents.Recent, inc)
	}
	return c.JSON(http.StatusOK, sum)
}

func (s *Server) listHosts(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.hosts)
}

func (s *Server) getHost(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.hosts {
		if h.ID == id {
			return c.JSON(http.StatusOK, h)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "host not found")
}

// hostCreateRequest mirrors the production creation payload: a host
// plus optional inline Docker setup.
type hostCreateRequest struct {
	models.Host
	DockerSetup *models.DockerSetupRequest `json:"docker_setup,omitempty"`
}

// hostCreateResponse nests the stored host under "host", matching the
// shape client.HostCreateResponse decodes.
type hostCreateResponse struct {
	Host        models.Host               `json:"host"`
	DockerSetup *models.DockerSetupResult `json:"docker_setup,omitempty"`
}

func (s *Server) createHost(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var req hostCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}

	s.mu.Lock()
	req.Host.ID = s.id()
	s.hosts = append(s.hosts, req.Host)
	resp := hostCreateResponse{Host: req.Host}
	if req.DockerSetup != nil {
		result := s.SetupDockerResult
		resp.DockerSetup = &result
	}
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) updateHost(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.hosts {
		if s.hosts[i].ID != id {
			continue
		}
		if name, ok := patch["name"].(string); ok {
			s.hosts[i].Name = name
		}
		if status, ok := patch["status"].(string); ok {
			s.hosts[i].Status = models.HostStatus(status)
		}
		if loc, ok := patch["location"].(string); ok {
			s.hosts[i].Location = loc
		}
		return c.JSON(http.StatusOK, s.hosts[i])
	}
	return echo.NewHTTPError(http.StatusNotFound, "host not found")
}

func (s *Server) deleteHost(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.hosts {
		if s.hosts[i].ID == id {
			s.hosts = append(s.hosts[:i], s.hosts[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "host not found")
}

func (s *Server) detectHardware(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	hw := models.Hardware{CPU: "test-cpu", CPUCores: 8, CPUThreads: 16, RAMGB: 32, DiskGB: 512}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.hosts {
		if s.hosts[i].ID == id {
			s.hosts[i].Hardware = &hw
			return c.JSON(http.StatusOK, hw)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "host not found")
}

func (s *Server) setupDocker(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	if _, err := pathID(c, "id"); err != nil {
		return err
	}
	var req models.DockerSetupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	result := s.SetupDockerResult
	s.mu.Unlock()
	return c.JSON(http.StatusOK, result)
}

func (s *Server) listContainers(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.conts)
}

func (s *Server) syncContainers(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	hostID, err := pathID(c, "hostID")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := models.SyncResult{}
	for _, ct := range s.conts {
		if ct.HostID == hostID {
			res.ContainersFound++
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) listServices(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.svcs)
}

func (s *Server) createService(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var svc models.Service
	if err := c.Bind(&svc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if svc.Name == "" || svc.URL == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name and url are required")
	}
	s.mu.Lock()
	svc.ID = s.id()
	s.svcs = append(s.svcs, svc)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, svc)
}

func (s *Server) updateService(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.svcs {
		if s.svcs[i].ID != id {
			continue
		}
		if name, ok := patch["name"].(string); ok {
			s.svcs[i].Name = name
		}
		if monitored, ok := patch["is_monitored"].(bool); ok {
			s.svcs[i].IsMonitored = monitored
		}
		return c.JSON(http.StatusOK, s.svcs[i])
	}
	return echo.NewHTTPError(http.StatusNotFound, "service not found")
}

func (s *Server) deleteService(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.svcs {
		if s.svcs[i].ID == id {
			s.svcs = append(s.svcs[:i], s.svcs[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "service not found")
}

func (s *Server) checkService(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.svcs {
		if s.svcs[i].ID != id {
			continue
		}
		s.svcs[i].Status = models.ServiceUp
		rt := int64(12)
		s.svcs[i].LastResponseTimeMs = &rt
		ts := now()
		s.svcs[i].LastCheckAt = &ts
		return c.JSON(http.StatusOK, s.svcs[i])
	}
	return echo.NewHTTPError(http.StatusNotFound, "service not found")
}

func (s *Server) listNetwork(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, s.network)
}

func (s *Server) createNetwork(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var dev models.NetworkDevice
	if err := c.Bind(&dev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	dev.ID = s.id()
	s.network = append(s.network, dev)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, dev)
}

func (s *Server) updateNetwork(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.network {
		if s.network[i].ID != id {
			continue
		}
		if name, ok := patch["name"].(string); ok {
			s.network[i].Name = name
		}
		return c.JSON(http.StatusOK, s.network[i])
	}
	return echo.NewHTTPError(http.StatusNotFound, "network device not found")
}

func (s *Server) deleteNetwork(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.network {
		if s.network[i].ID == id {
			s.network = append(s.network[:i], s.network[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "network device not found")
}

func (s *Server) listIncidents(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	status := c.QueryParam("status")
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Incident{}
	for _, inc := range s.incs {
		if status == "" || string(inc.Status) == status {
			out = append(out, inc)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createIncident(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	var inc models.Incident
	if err := c.Bind(&inc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if inc.Title == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "title is required")
	}
	s.mu.Lock()
	inc.ID = s.id()
	s.incs = append(s.incs, inc)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, inc)
}

// updateIncident stamps resolved_at on a transition to resolved;
// resolving an already-resolved incident is a no-op.
func (s *Server) updateIncident(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incs {
		if s.incs[i].ID != id {
			continue
		}
		if status, ok := patch["status"].(string); ok {
			next := models.IncidentStatus(status)
			if next == models.IncidentResolved && s.incs[i].Status != models.IncidentResolved {
				ts := now()
				s.incs[i].ResolvedAt = &ts
			}
			s.incs[i].Status = next
		}
		if title, ok := patch["title"].(string); ok {
			s.incs[i].Title = title
		}
		return c.JSON(http.StatusOK, s.incs[i])
	}
	return echo.NewHTTPError(http.StatusNotFound, "incident not found")
}

func (s *Server) deleteIncident(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.incs {
		if s.incs[i].ID == id {
			s.incs = append(s.incs[:i], s.incs[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "incident not found")
}

func (s *Server) metricsLatest(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	sourceType := c.QueryParam("source_type")
	sourceID, _ := strconv.ParseInt(c.QueryParam("source_id"), 10, 64)

	s.mu.Lock()
	defer s.mu.Unlock()
	latest := map[string]models.MetricPoint{}
	for _, p := range s.metrics {
		if string(p.SourceType) != sourceType || p.SourceID != sourceID {
			continue
		}
		if cur, ok := latest[p.MetricName]; !ok || p.RecordedAt.After(cur.RecordedAt) {
			latest[p.MetricName] = p
		}
	}
	out := []models.MetricLatest{}
	for _, p := range latest {
		out = append(out, models.MetricLatest{
			SourceType: p.SourceType,
			SourceID:   p.SourceID,
			MetricName: p.MetricName,
			Value:      p.Value,
			RecordedAt: p.RecordedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetricName < out[j].MetricName })
	return c.JSON(http.StatusOK, out)
}

// metricsQuery returns matching points newest-first, the order the
// production backend uses.
func (s *Server) metricsQuery(c echo.Context) error {
	if err := s.failNext(c); err != nil {
		return err
	}
	sourceType := c.QueryParam("source_type")
	sourceID, _ := strconv.ParseInt(c.QueryParam("source_id"), 10, 64)
	metric := c.QueryParam("metric_name")
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MetricPoint{}
	for _, p := range s.metrics {
		if string(p.SourceType) != sourceType || p.SourceID != sourceID || p.MetricName != metric {
			continue
		}
		if p.RecordedAt.Before(from) || p.RecordedAt.After(to) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return c.JSON(http.StatusOK, out)
}
