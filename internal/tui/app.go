package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/console"
	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/internal/poll"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
)

// screen identifies a top-level console view.
type screen int

const (
	screenDashboard screen = iota
	screenHostDetail
	screenSmartHome
	screenIncidents
)

func (s screen) title() string {
	switch s {
	case screenDashboard:
		return "Infrastructure"
	case screenHostDetail:
		return "Host"
	case screenSmartHome:
		return "Smart Home"
	case screenIncidents:
		return "Incidents"
	}
	return ""
}

// app is the root bubbletea model. It routes keys to the active screen
// and renders from controller snapshots, so Update never blocks on the
// network.
type app struct {
	opts   Options
	theme  view.Theme
	gate   *poll.Gate
	engine *metrics.Engine

	dash  *console.Dashboard
	smart *console.SmartHome
	inc   *console.Incidents

	// detail is set while the host detail screen is open.
	detail *console.HostDetail

	screen screen
	width  int
	height int
	pulse  bool

	confirm *confirmModal
	form    *form
	picker  *picker
	importM *importModal

	dashCur int
	svcCur  int
	shCur   int
	incCur  int

	quitting bool
}

func newApp(o Options) app {
	gate := &poll.Gate{}
	engine := metrics.New(o.Client)

	dash := console.NewDashboard(o.Client, gate)
	dash.SetRefreshInterval(o.RefreshInterval)

	smart := console.NewSmartHome(o.Client, gate)
	smart.SetRefreshInterval(o.SmartHomeRefreshInterval)

	return app{
		opts:   o,
		theme:  o.Theme,
		gate:   gate,
		engine: engine,
		dash:   dash,
		smart:  smart,
		inc:    console.NewIncidents(o.Client),
	}
}

// Init implements tea.Model.
func (m app) Init() tea.Cmd {
	return tea.Batch(
		do(m.dash.Load),
		do(m.inc.Load),
		// Start opens the event stream alongside the first snapshot; it
		// stays open for the life of the program.
		do(m.smart.Start),
		tick(),
	)
}

// Update implements tea.Model.
func (m app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.FocusMsg:
		m.gate.Show()
		return m, nil

	case tea.BlurMsg:
		m.gate.Hide()
		return m, nil

	case themeMsg:
		m.theme = view.Theme(msg)
		return m, nil

	case tickMsg:
		m.pulse = !m.pulse
		return m, tick()

	case refreshMsg:
		return m, nil

	case discoveryMsg:
		return m.handleDiscovery(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m app) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal layers swallow all input while open.
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.picker != nil {
		return m.updatePicker(msg)
	}
	if m.importM != nil {
		return m.updateImport(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.dash.Close()
		m.smart.Stop()
		return m, tea.Quit

	case "1":
		m.screen = screenDashboard
		return m, nil
	case "2":
		m.screen = screenSmartHome
		return m, nil
	case "3":
		m.screen = screenIncidents
		return m, nil

	case "r":
		return m, m.reloadCurrent()

	case "t":
		return m.cycleTheme()
	}

	switch m.screen {
	case screenDashboard:
		return m.updateDashboard(msg)
	case screenHostDetail:
		return m.updateHostDetail(msg)
	case screenSmartHome:
		return m.updateSmartHome(msg)
	case screenIncidents:
		return m.updateIncidents(msg)
	}
	return m, nil
}

func (m app) reloadCurrent() tea.Cmd {
	switch m.screen {
	case screenDashboard:
		return do(m.dash.Load)
	case screenHostDetail:
		if m.detail != nil {
			return do(m.detail.Load)
		}
	case screenSmartHome:
		return do(m.smart.Load)
	case screenIncidents:
		return do(m.inc.Load)
	}
	return nil
}

// cycleTheme advances through the built-in themes and persists the
// choice. The prefs watcher echoes the change back as a themeMsg, but
// switching locally first keeps the repaint immediate.
func (m app) cycleTheme() (tea.Model, tea.Cmd) {
	next := "catppuccin"
	if m.theme.Name == "catppuccin" {
		next = "lcars"
	}
	m.theme = view.ByName(next)
	if m.opts.Prefs != nil {
		store := m.opts.Prefs
		return m, func() tea.Msg {
			_ = store.SetTheme(next)
			return refreshMsg{}
		}
	}
	return m, nil
}

// openHost switches to the detail screen for one host.
func (m app) openHost(id int64) (tea.Model, tea.Cmd) {
	m.detail = console.NewHostDetail(m.opts.Client, m.engine, id)
	m.screen = screenHostDetail
	m.svcCur = 0
	return m, do(m.detail.Load)
}

// closeHost returns to the dashboard.
func (m app) closeHost() (tea.Model, tea.Cmd) {
	m.detail = nil
	m.screen = screenDashboard
	return m, nil
}

// View implements tea.Model.
func (m app) View() string {
	if m.quitting {
		return ""
	}

	var body, help string
	switch m.screen {
	case screenDashboard:
		body, help = m.viewDashboard()
	case screenHostDetail:
		body, help = m.viewHostDetail()
	case screenSmartHome:
		body, help = m.viewSmartHome()
	case screenIncidents:
		body, help = m.viewIncidents()
	}

	switch {
	case m.confirm != nil:
		body = m.confirm.render(m.theme)
		help = "y confirm · n cancel"
	case m.form != nil:
		body = m.form.render(m.theme)
		help = "tab next field · enter submit · esc cancel"
	case m.picker != nil:
		body = m.picker.render(m.theme)
		help = "↑/↓ choose · enter apply · esc cancel"
	case m.importM != nil:
		body = m.importM.render(m.theme)
		help = "↑/↓ move · space select · enter import · esc close"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		body,
		m.footer(help),
	)
}

func (m app) header() string {
	title := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true).Render("lifehub")

	var tabs []string
	for _, s := range []screen{screenDashboard, screenSmartHome, screenIncidents} {
		st := lipgloss.NewStyle().Foreground(m.theme.Muted)
		if s == m.screen || (s == screenDashboard && m.screen == screenHostDetail) {
			st = lipgloss.NewStyle().Foreground(m.theme.Text).Bold(true)
		}
		tabs = append(tabs, st.Render(s.title()))
	}

	// The badge only appears while auto-refresh is on; the pulse makes
	// it blink between the bright and dim forms.
	live := ""
	if (m.screen == screenDashboard || m.screen == screenHostDetail) && m.dash.Live() {
		live = view.LiveBadge(m.theme, m.pulse)
	}

	return title + "  " + strings.Join(tabs, " · ") + "  " + live
}

func (m app) footer(help string) string {
	fb := m.activeFeedback()
	strip := ""
	if fb.Text != "" {
		strip = view.FeedbackStrip(m.theme, fb.Text, fb.Kind)
	}
	helpLine := lipgloss.NewStyle().Foreground(m.theme.Muted).Render(help + " · r reload · t theme · q quit")
	if strip == "" {
		return helpLine
	}
	return lipgloss.JoinVertical(lipgloss.Left, strip, helpLine)
}

// activeFeedback picks the feedback strip for the visible screen.
func (m app) activeFeedback() console.Feedback {
	switch m.screen {
	case screenDashboard:
		return m.dash.Snapshot().Feedback
	case screenHostDetail:
		if m.detail != nil {
			return m.detail.Snapshot().Feedback
		}
	case screenSmartHome:
		return m.smart.Snapshot().Feedback
	case screenIncidents:
		return m.inc.Snapshot().Feedback
	}
	return console.Feedback{}
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cur, n int) int {
	if n == 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
