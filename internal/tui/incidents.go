package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/console"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// incidentFilters is the filter cycle order.
var incidentFilters = []models.IncidentStatus{
	console.FilterAll,
	models.IncidentActive,
	models.IncidentInvestigating,
	models.IncidentResolved,
}

func (m app) updateIncidents(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.inc.Snapshot()
	inc := m.inc

	switch msg.String() {
	case "up", "k":
		m.incCur = clampCursor(m.incCur-1, len(st.Items))
		return m, nil
	case "down", "j":
		m.incCur = clampCursor(m.incCur+1, len(st.Items))
		return m, nil

	case "f":
		next := nextFilter(st.Filter)
		return m, do(func(ctx context.Context) { inc.SetFilter(ctx, next) })

	case "n":
		m.form = newIncidentForm(inc)
		return m, nil

	case "enter":
		if len(st.Items) == 0 {
			return m, nil
		}
		item := st.Items[clampCursor(m.incCur, len(st.Items))]
		if item.Status == models.IncidentResolved {
			return m, nil
		}
		return m, do(func(ctx context.Context) { inc.Resolve(ctx, item.ID) })

	case "x":
		if len(st.Items) == 0 {
			return m, nil
		}
		item := st.Items[clampCursor(m.incCur, len(st.Items))]
		m.confirm = &confirmModal{
			prompt: fmt.Sprintf("Delete incident %q?", item.Title),
			action: do(func(ctx context.Context) { inc.Delete(ctx, item.ID) }),
		}
		return m, nil
	}
	return m, nil
}

func nextFilter(cur models.IncidentStatus) models.IncidentStatus {
	for i, f := range incidentFilters {
		if f == cur {
			return incidentFilters[(i+1)%len(incidentFilters)]
		}
	}
	return console.FilterAll
}

func newIncidentForm(inc *console.Incidents) *form {
	labels := []string{"Title", "Severity", "Description"}
	return newForm("New incident", labels, func(v []string) tea.Cmd {
		severity := models.Severity(v[1])
		item := models.Incident{
			Title:       v[0],
			Severity:    severity,
			Description: v[2],
			Status:      models.IncidentActive,
			StartedAt:   time.Now().UTC(),
		}
		return do(func(ctx context.Context) { inc.Create(ctx, item) })
	})
}

func (m app) viewIncidents() (string, string) {
	st := m.inc.Snapshot()
	t := m.theme
	width := contentWidth(m.width)

	if st.Loading {
		return view.Pane(t, "Incidents", "Loading...", width), incidentsHelp
	}

	var lines []string

	filter := "all"
	if st.Filter != console.FilterAll {
		filter = string(st.Filter)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("filter: "+filter))

	if st.Err != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).Render(st.Err))
	}
	lines = append(lines, fieldErrorLines(t, st.FieldErrors)...)

	if len(st.Items) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).Render("No incidents."))
	}
	cur := clampCursor(m.incCur, len(st.Items))
	for i, item := range st.Items {
		lines = append(lines, renderIncident(t, item, i == cur))
	}

	return view.Pane(t, "Incidents", strings.Join(lines, "\n"), width), incidentsHelp
}

const incidentsHelp = "↑/↓ move · f filter · n new · enter resolve · x delete"

// fieldErrorLines renders the rejected-form messages in a stable order.
func fieldErrorLines(t view.Theme, errs map[string]string) []string {
	if len(errs) == 0 {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var lines []string
	for _, f := range fields {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).
			Render(fmt.Sprintf("%s: %s", f, errs[f])))
	}
	return lines
}

func renderIncident(t view.Theme, item models.Incident, atCursor bool) string {
	cursor := "  "
	if atCursor {
		cursor = lipgloss.NewStyle().Foreground(t.Accent).Render("> ")
	}
	when := item.StartedAt.Local().Format("Jan 2 15:04")
	if item.Status == models.IncidentResolved && item.ResolvedAt != nil {
		when += " → " + item.ResolvedAt.Local().Format("Jan 2 15:04")
	}
	return fmt.Sprintf("%s%s %s %-36s %s",
		cursor,
		view.SeverityDot(t, item.Severity),
		view.StatusBadge(t, string(item.Status)),
		item.Title,
		lipgloss.NewStyle().Foreground(t.Muted).Render(when))
}
