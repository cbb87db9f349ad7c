package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/console"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
	"github.com/DragonRuins/life-hub-sub001/models"
)

func (m app) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.dash.Snapshot()

	switch msg.String() {
	case "up", "k":
		m.dashCur = clampCursor(m.dashCur-1, len(st.Hosts))
		return m, nil
	case "down", "j":
		m.dashCur = clampCursor(m.dashCur+1, len(st.Hosts))
		return m, nil

	case "enter":
		if len(st.Hosts) == 0 {
			return m, nil
		}
		return m.openHost(st.Hosts[clampCursor(m.dashCur, len(st.Hosts))].ID)

	case "l":
		live := !m.dash.Live()
		m.dash.SetAutoRefresh(live)
		return m, nil

	case "n":
		m.form = newHostForm(m.dash)
		return m, nil

	case "x":
		if len(st.Hosts) == 0 {
			return m, nil
		}
		host := st.Hosts[clampCursor(m.dashCur, len(st.Hosts))]
		m.confirm = &confirmModal{
			prompt: fmt.Sprintf("Delete host %q and everything recorded for it?", host.Name),
			action: do(func(ctx context.Context) { m.dash.DeleteHost(ctx, host.ID) }),
		}
		return m, nil
	}
	return m, nil
}

// newHostForm builds the host registration form. A non-empty Docker
// endpoint turns the submission into a create-with-setup request.
func newHostForm(dash *console.Dashboard) *form {
	labels := []string{"Name", "Type", "IP", "Location", "Docker endpoint"}
	return newForm("New host", labels, func(v []string) tea.Cmd {
		req := client.HostCreateRequest{
			Host: models.Host{
				Name:     v[0],
				HostType: models.HostType(v[1]),
				IP:       v[2],
				Location: v[3],
			},
		}
		if req.Host.HostType == "" {
			req.Host.HostType = models.HostTypeServer
		}
		if endpoint := v[4]; endpoint != "" {
			setup := &models.DockerSetupRequest{CollectStats: true}
			if strings.HasPrefix(endpoint, "tcp://") || strings.HasPrefix(endpoint, "http") {
				setup.ConnectionType = "tcp"
				setup.TCPURL = endpoint
			} else {
				setup.ConnectionType = "socket"
				setup.SocketPath = endpoint
			}
			req.DockerSetup = setup
		}
		return do(func(ctx context.Context) { dash.CreateHost(ctx, req) })
	})
}

func (m app) viewDashboard() (string, string) {
	st := m.dash.Snapshot()
	t := m.theme
	width := contentWidth(m.width)

	if st.Loading {
		return view.Pane(t, "Infrastructure", "Loading...", width), dashboardHelp
	}

	var sections []string

	if st.Err != "" {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).Render(st.Err))
	}

	if st.Summary != nil {
		sections = append(sections, view.Pane(t, "Summary", summaryView(t, st), width))
	}
	sections = append(sections, view.Pane(t, "Hosts", hostTable(t, st.Hosts, m.dashCur), width))
	if len(st.Services) > 0 {
		sections = append(sections, view.Pane(t, "Services", serviceTable(t, st.Services, -1), width))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...), dashboardHelp
}

const dashboardHelp = "↑/↓ move · enter open · n new host · x delete · l live"

func summaryView(t view.Theme, st console.DashboardState) string {
	s := st.Summary
	lines := []string{
		view.DataRow(t, "Hosts", statusCountLine(s.Hosts), 12),
		view.DataRow(t, "Containers", statusCountLine(s.Containers), 12),
		view.DataRow(t, "Services", statusCountLine(s.Services), 12),
		view.DataRow(t, "Incidents", fmt.Sprintf("%d active", s.Incidents.Active), 12),
	}
	for _, inc := range s.Incidents.Recent {
		lines = append(lines, "  "+view.SeverityDot(t, inc.Severity)+" "+inc.Title)
	}
	if !st.LastUpdated.IsZero() {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).
			Render("updated "+st.LastUpdated.Format("15:04:05")))
	}
	return strings.Join(lines, "\n")
}

func statusCountLine(c models.StatusCounts) string {
	parts := []string{fmt.Sprintf("%d total", c.Total)}
	for _, status := range []string{"online", "running", "up", "offline", "stopped", "down", "degraded"} {
		if n := c.ByStatus[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, status))
		}
	}
	return strings.Join(parts, ", ")
}

func hostTable(t view.Theme, hosts []models.Host, cursor int) string {
	if len(hosts) == 0 {
		return lipgloss.NewStyle().Foreground(t.Muted).Render("No hosts registered. Press n to add one.")
	}
	var b strings.Builder
	for i, h := range hosts {
		marker := "  "
		if i == cursor {
			marker = lipgloss.NewStyle().Foreground(t.Accent).Render("> ")
		}
		loc := h.Location
		if loc == "" {
			loc = "-"
		}
		b.WriteString(fmt.Sprintf("%s%s %-20s %-12s %-15s %s\n",
			marker, view.StatusBadge(t, string(h.Status)), h.Name, h.HostType, h.IP, loc))
	}
	return strings.TrimRight(b.String(), "\n")
}

func serviceTable(t view.Theme, svcs []models.Service, cursor int) string {
	if len(svcs) == 0 {
		return lipgloss.NewStyle().Foreground(t.Muted).Render("No services monitored.")
	}
	var b strings.Builder
	for i, s := range svcs {
		marker := "  "
		if i == cursor {
			marker = lipgloss.NewStyle().Foreground(t.Accent).Render("> ")
		}
		latency := "-"
		if s.LastResponseTimeMs != nil {
			latency = fmt.Sprintf("%dms", *s.LastResponseTimeMs)
		}
		b.WriteString(fmt.Sprintf("%s%s %-20s %-30s %s\n",
			marker, view.StatusBadge(t, string(s.Status)), s.Name, s.URL, latency))
	}
	return strings.TrimRight(b.String(), "\n")
}

// contentWidth caps panes to the terminal, defaulting before the first
// WindowSizeMsg arrives.
func contentWidth(terminal int) int {
	if terminal <= 0 {
		return 80
	}
	if terminal > 110 {
		return 110
	}
	return terminal
}
