package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/console"
	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// hostTabs is the tab cycle order.
var hostTabs = []console.Tab{
	console.TabOverview,
	console.TabContainers,
	console.TabServices,
	console.TabMetrics,
}

// defaultMetrics is the metric cycle before the first samples arrive.
var defaultMetrics = []string{"cpu_percent", "ram_percent", "disk_percent"}

func (m app) updateHostDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		return m.closeHost()
	}
	d := m.detail
	st := d.Snapshot()

	switch msg.String() {
	case "esc":
		return m.closeHost()

	case "tab":
		return m, do(func(ctx context.Context) { d.SetTab(ctx, nextTab(st.Tab, 1)) })
	case "shift+tab":
		return m, do(func(ctx context.Context) { d.SetTab(ctx, nextTab(st.Tab, -1)) })
	case "o":
		return m, do(func(ctx context.Context) { d.SetTab(ctx, console.TabOverview) })
	case "c":
		return m, do(func(ctx context.Context) { d.SetTab(ctx, console.TabContainers) })
	case "s":
		return m, do(func(ctx context.Context) { d.SetTab(ctx, console.TabServices) })
	case "m":
		return m, do(func(ctx context.Context) { d.SetTab(ctx, console.TabMetrics) })

	case "h":
		return m, do(d.DetectHardware)

	case "y":
		return m, do(d.SyncContainers)

	case "d":
		if !d.SetupBusy() {
			m.form = newDockerSetupForm(d)
		}
		return m, nil

	case "a":
		m.form = newServiceForm(d)
		return m, nil
	}

	switch st.Tab {
	case console.TabServices:
		return m.updateHostServices(msg, st)
	case console.TabMetrics:
		return m.updateHostMetrics(msg, st)
	}
	return m, nil
}

func (m app) updateHostServices(msg tea.KeyMsg, st console.HostDetailState) (tea.Model, tea.Cmd) {
	var svcs []models.Service
	if st.Host != nil {
		svcs = st.Host.Services
	}
	d := m.detail

	switch msg.String() {
	case "up", "k":
		m.svcCur = clampCursor(m.svcCur-1, len(svcs))
	case "down", "j":
		m.svcCur = clampCursor(m.svcCur+1, len(svcs))
	case "enter":
		if len(svcs) > 0 {
			id := svcs[clampCursor(m.svcCur, len(svcs))].ID
			return m, do(func(ctx context.Context) { d.CheckService(ctx, id) })
		}
	}
	return m, nil
}

func (m app) updateHostMetrics(msg tea.KeyMsg, st console.HostDetailState) (tea.Model, tea.Cmd) {
	d := m.detail

	switch msg.String() {
	case "up", "k":
		metric := cycleMetric(st, -1)
		return m, do(func(ctx context.Context) { d.SetMetric(ctx, metric) })
	case "down", "j":
		metric := cycleMetric(st, 1)
		return m, do(func(ctx context.Context) { d.SetMetric(ctx, metric) })
	case "left", "[":
		r := cycleRange(st.Range, -1)
		return m, do(func(ctx context.Context) { d.SetRange(ctx, r) })
	case "right", "]":
		r := cycleRange(st.Range, 1)
		return m, do(func(ctx context.Context) { d.SetRange(ctx, r) })
	}
	return m, nil
}

func nextTab(cur console.Tab, step int) console.Tab {
	for i, t := range hostTabs {
		if t == cur {
			return hostTabs[(i+step+len(hostTabs))%len(hostTabs)]
		}
	}
	return console.TabOverview
}

// cycleMetric walks the metrics known for the host, falling back to the
// default set before the first fetch lands.
func cycleMetric(st console.HostDetailState, step int) string {
	names := defaultMetrics
	if len(st.MetricsResult.LatestByName) > 0 {
		names = make([]string, 0, len(st.MetricsResult.LatestByName))
		for name := range st.MetricsResult.LatestByName {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	for i, name := range names {
		if name == st.SelectedMetric {
			return names[(i+step+len(names))%len(names)]
		}
	}
	return names[0]
}

func cycleRange(cur metrics.Range, step int) metrics.Range {
	for i, r := range metrics.Ranges {
		if r == cur {
			return metrics.Ranges[(i+step+len(metrics.Ranges))%len(metrics.Ranges)]
		}
	}
	return metrics.Range24h
}

func newDockerSetupForm(d *console.HostDetail) *form {
	return newForm("Docker setup", []string{"Endpoint"}, func(v []string) tea.Cmd {
		req := models.DockerSetupRequest{CollectStats: true}
		if strings.HasPrefix(v[0], "tcp://") || strings.HasPrefix(v[0], "http") {
			req.ConnectionType = "tcp"
			req.TCPURL = v[0]
		} else {
			req.ConnectionType = "socket"
			req.SocketPath = v[0]
		}
		return do(func(ctx context.Context) { d.SetupDocker(ctx, req) })
	})
}

func newServiceForm(d *console.HostDetail) *form {
	return newForm("New service", []string{"Name", "URL", "Type"}, func(v []string) tea.Cmd {
		svc := models.Service{Name: v[0], URL: v[1], ServiceType: v[2], IsMonitored: true}
		return do(func(ctx context.Context) { d.AddService(ctx, svc) })
	})
}

func (m app) viewHostDetail() (string, string) {
	if m.detail == nil {
		return "", ""
	}
	st := m.detail.Snapshot()
	t := m.theme
	width := contentWidth(m.width)

	if st.Loading {
		return view.Pane(t, "Host", "Loading...", width), hostDetailHelp
	}
	if st.Host == nil {
		msg := st.Err
		if msg == "" {
			msg = "host not found"
		}
		return view.Pane(t, "Host", lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).Render(msg), width), hostDetailHelp
	}

	var sections []string
	sections = append(sections, hostTabBar(t, st.Tab))
	if st.Err != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).Render(st.Err))
	}

	switch st.Tab {
	case console.TabOverview:
		sections = append(sections, view.Pane(t, st.Host.Name, hostOverview(t, st), width))
	case console.TabContainers:
		sections = append(sections, view.Pane(t, "Containers", containerTable(t, st.Host.Containers), width))
	case console.TabServices:
		sections = append(sections, view.Pane(t, "Services", serviceTable(t, st.Host.Services, m.svcCur), width))
	case console.TabMetrics:
		sections = append(sections, view.Pane(t, "Metrics", metricsView(t, st, width-6), width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...), hostDetailHelp
}

const hostDetailHelp = "tab switch · h hardware · d docker · y sync · a service · esc back"

func hostTabBar(t view.Theme, active console.Tab) string {
	var parts []string
	for _, tab := range hostTabs {
		st := lipgloss.NewStyle().Foreground(t.Muted)
		if tab == active {
			st = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
		}
		parts = append(parts, st.Render(string(tab)))
	}
	return strings.Join(parts, "  ")
}

func hostOverview(t view.Theme, st console.HostDetailState) string {
	h := st.Host
	lines := []string{
		view.DataRow(t, "Status", view.StatusBadge(t, string(h.Status)), 10),
		view.DataRow(t, "Type", string(h.HostType), 10),
		view.DataRow(t, "IP", orDash(h.IP), 10),
		view.DataRow(t, "OS", orDash(strings.TrimSpace(h.OSName+" "+h.OSVersion)), 10),
		view.DataRow(t, "Location", orDash(h.Location), 10),
	}
	if hw := h.Hardware; hw != nil {
		lines = append(lines,
			view.DataRow(t, "CPU", fmt.Sprintf("%s (%d cores / %d threads)", hw.CPU, hw.CPUCores, hw.CPUThreads), 10),
			view.DataRow(t, "RAM", fmt.Sprintf("%.0f GB", hw.RAMGB), 10),
			view.DataRow(t, "Disk", fmt.Sprintf("%.0f GB", hw.DiskGB), 10),
		)
		if hw.GPU != "" {
			lines = append(lines, view.DataRow(t, "GPU", hw.GPU, 10))
		}
	} else {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("No hardware record. Press h to detect."))
	}
	if st.SetupBusy {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("Docker setup in progress..."))
	}
	return strings.Join(lines, "\n")
}

func containerTable(t view.Theme, containers []models.Container) string {
	if len(containers) == 0 {
		return lipgloss.NewStyle().Foreground(t.Muted).Render("No containers. Press y to sync from Docker.")
	}
	var b strings.Builder
	for _, c := range containers {
		b.WriteString(fmt.Sprintf("%s %-24s %-32s %s\n",
			view.StatusBadge(t, string(c.Status)), c.Name, c.Image, portColumn(c)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// portColumn renders the parsed port bindings ("8080->80/tcp"); raw
// specs nat cannot parse are dropped by PortMappings, so nothing
// half-parsed leaks into the table.
func portColumn(c models.Container) string {
	var parts []string
	for _, pm := range c.PortMappings() {
		host := pm.HostPort
		if pm.HostIP != "" {
			host = pm.HostIP + ":" + pm.HostPort
		}
		if host == "" {
			parts = append(parts, fmt.Sprintf("%s/%s", pm.ContainerPort, pm.Protocol))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s->%s/%s", host, pm.ContainerPort, pm.Protocol))
	}
	return strings.Join(parts, " ")
}

func metricsView(t view.Theme, st console.HostDetailState, width int) string {
	var lines []string

	header := fmt.Sprintf("%s over %s", st.SelectedMetric, st.Range)
	lines = append(lines, lipgloss.NewStyle().Foreground(t.Accent).Render(header))

	for _, name := range defaultMetrics {
		if v, ok := metrics.GaugeValue(st.MetricsResult, name); ok {
			lines = append(lines, view.DataRow(t, name, view.Gauge(t, v, 30), 16))
		}
	}

	switch {
	case st.MetricsLoading:
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("Loading series..."))
	case len(st.MetricsResult.Series) == 0:
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("No samples in range."))
	default:
		if width < 10 {
			width = 10
		}
		lines = append(lines,
			view.Sparkline(st.MetricsResult.Series, width),
			view.SeriesSummary(t, st.SelectedMetric, st.MetricsResult.Series, st.Range),
		)
	}

	lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("↑/↓ metric · ←/→ range"))
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
