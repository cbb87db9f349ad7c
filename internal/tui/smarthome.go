package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/console"
	"github.com/DragonRuins/life-hub-sub001/internal/view"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// shRow is one line of the flattened room/device tree. Exactly one of
// room/device semantics applies: header rows carry roomID and a name,
// device rows carry the device.
type shRow struct {
	header    bool
	roomID    int64 // 0 for the Unassigned header
	roomName  string
	collapsed bool
	device    models.Device
}

// flattenSmartHome turns the dashboard snapshot into cursor-addressable
// rows. Collapsed rooms contribute only their header; the Unassigned
// group renders last and only when it has devices.
func flattenSmartHome(st console.SmartHomeState) []shRow {
	var rows []shRow
	for _, room := range st.Dashboard.Rooms {
		collapsed := st.Collapsed[room.ID]
		rows = append(rows, shRow{header: true, roomID: room.ID, roomName: room.Name, collapsed: collapsed})
		if collapsed {
			continue
		}
		for _, d := range room.Devices {
			rows = append(rows, shRow{device: d})
		}
	}
	if len(st.Dashboard.Unassigned) > 0 {
		rows = append(rows, shRow{header: true, roomName: "Unassigned"})
		for _, d := range st.Dashboard.Unassigned {
			rows = append(rows, shRow{device: d})
		}
	}
	return rows
}

func (m app) updateSmartHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.smart.Snapshot()
	rows := flattenSmartHome(st)
	m.shCur = clampCursor(m.shCur, len(rows))

	switch msg.String() {
	case "up", "k":
		m.shCur = clampCursor(m.shCur-1, len(rows))
		return m, nil
	case "down", "j":
		m.shCur = clampCursor(m.shCur+1, len(rows))
		return m, nil

	case "enter":
		if len(rows) == 0 {
			return m, nil
		}
		row := rows[m.shCur]
		if row.header {
			if row.roomID != 0 {
				m.smart.ToggleRoom(row.roomID)
			}
			return m, nil
		}
		if st.EditMode {
			m.smart.ToggleSelect(row.device.ID)
			return m, nil
		}
		dev := row.device
		return m, do(func(ctx context.Context) { m.smart.Control(ctx, dev) })

	case " ":
		if st.EditMode && len(rows) > 0 && !rows[m.shCur].header {
			m.smart.ToggleSelect(rows[m.shCur].device.ID)
		}
		return m, nil

	case "e":
		m.smart.SetEditMode(!st.EditMode)
		return m, nil

	case "f":
		if len(rows) > 0 && !rows[m.shCur].header {
			id := rows[m.shCur].device.ID
			return m, do(func(ctx context.Context) { m.smart.Favorite(ctx, id) })
		}
		return m, nil

	case "i":
		return m, m.loadDiscovery()
	}

	if !st.EditMode {
		return m, nil
	}
	n := len(st.SelectedIDs())

	switch msg.String() {
	case "g":
		if n > 0 {
			m.picker = newCategoryPicker(m.smart)
		}
		return m, nil

	case "v":
		if n > 0 {
			return m, do(func(ctx context.Context) { m.smart.BulkSetVisibility(ctx, true) })
		}
	case "h":
		if n > 0 {
			return m, do(func(ctx context.Context) { m.smart.BulkSetVisibility(ctx, false) })
		}

	case "b":
		if n > 0 {
			m.picker = newRoomPicker(m.smart, st.RoomList)
		}
		return m, nil

	case "x":
		if n > 0 {
			m.confirm = &confirmModal{
				prompt: fmt.Sprintf("Delete %d selected devices?", n),
				action: do(m.smart.BulkDelete),
			}
		}
		return m, nil
	}
	return m, nil
}

func newCategoryPicker(smart *console.SmartHome) *picker {
	p := &picker{title: "Set category"}
	for _, cat := range models.DeviceCategories {
		c := cat
		p.options = append(p.options, pickerOption{
			label: string(c),
			apply: do(func(ctx context.Context) { smart.BulkSetCategory(ctx, c) }),
		})
	}
	return p
}

func newRoomPicker(smart *console.SmartHome, rooms []models.Room) *picker {
	p := &picker{title: "Move to room"}
	for _, room := range rooms {
		id := room.ID
		p.options = append(p.options, pickerOption{
			label: room.Name,
			apply: do(func(ctx context.Context) { smart.BulkMoveToRoom(ctx, &id) }),
		})
	}
	p.options = append(p.options, pickerOption{
		label: "Unassigned",
		apply: do(func(ctx context.Context) { smart.BulkMoveToRoom(ctx, nil) }),
	})
	return p
}

// discoveryMsg delivers the discovery snapshot for the import modal.
type discoveryMsg struct {
	groups map[string][]models.DiscoveredEntity
	err    error
}

func (m app) loadDiscovery() tea.Cmd {
	smart := m.smart
	return func() tea.Msg {
		groups, err := smart.LoadDiscovery(context.Background())
		return discoveryMsg{groups: groups, err: err}
	}
}

func (m app) handleDiscovery(msg discoveryMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// Surface through the modal rather than silently dropping the
		// keypress that asked for it.
		m.importM = &importModal{err: msg.err.Error()}
		return m, nil
	}
	m.importM = newImportModal(msg.groups)
	return m, nil
}

// importRow is one unregistered entity offered for import.
type importRow struct {
	entity models.DiscoveredEntity
}

// importModal lists unregistered entities grouped by domain and imports
// the selection in a single request. Already-registered entities are
// not offered; re-importing one would be skipped server-side anyway.
type importModal struct {
	rows     []importRow
	cursor   int
	selected map[string]bool
	err      string
}

func newImportModal(groups map[string][]models.DiscoveredEntity) *importModal {
	domains := make([]string, 0, len(groups))
	for d := range groups {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	im := &importModal{selected: map[string]bool{}}
	for _, domain := range domains {
		for _, e := range groups[domain] {
			if e.IsRegistered {
				continue
			}
			im.rows = append(im.rows, importRow{entity: e})
		}
	}
	return im
}

func (m app) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	im := m.importM
	switch msg.String() {
	case "esc", "q":
		m.importM = nil
		return m, nil

	case "up", "k":
		im.cursor = clampCursor(im.cursor-1, len(im.rows))
		return m, nil
	case "down", "j":
		im.cursor = clampCursor(im.cursor+1, len(im.rows))
		return m, nil

	case " ":
		if len(im.rows) > 0 {
			id := im.rows[im.cursor].entity.EntityID
			if im.selected[id] {
				delete(im.selected, id)
			} else {
				im.selected[id] = true
			}
		}
		return m, nil

	case "enter":
		var ids []string
		for _, row := range im.rows {
			if im.selected[row.entity.EntityID] {
				ids = append(ids, row.entity.EntityID)
			}
		}
		m.importM = nil
		if len(ids) == 0 {
			return m, nil
		}
		smart := m.smart
		return m, do(func(ctx context.Context) {
			smart.Import(ctx, models.BulkImportRequest{EntityIDs: ids})
		})
	}
	return m, nil
}

func (im *importModal) render(t view.Theme) string {
	if im.err != "" {
		return view.Pane(t, "Import devices",
			lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).Render(im.err), 60)
	}
	if len(im.rows) == 0 {
		return view.Pane(t, "Import devices",
			lipgloss.NewStyle().Foreground(t.Muted).Render("Every discovered entity is already registered."), 60)
	}

	var b strings.Builder
	lastDomain := ""
	for i, row := range im.rows {
		e := row.entity
		if e.Domain != lastDomain {
			b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Render(e.Domain) + "\n")
			lastDomain = e.Domain
		}
		mark := "[ ]"
		if im.selected[e.EntityID] {
			mark = "[x]"
		}
		cursor := "  "
		if i == im.cursor {
			cursor = lipgloss.NewStyle().Foreground(t.Accent).Render("> ")
		}
		name := e.FriendlyName
		if name == "" {
			name = e.EntityID
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", cursor, mark, name))
	}
	return view.Pane(t, "Import devices", strings.TrimRight(b.String(), "\n"), 60)
}

func (m app) viewSmartHome() (string, string) {
	st := m.smart.Snapshot()
	t := m.theme
	width := contentWidth(m.width)
	help := smartHomeHelp
	if st.EditMode {
		help = smartHomeEditHelp
	}

	if st.Loading {
		return view.Pane(t, "Smart Home", "Loading...", width), help
	}
	if st.ShowEmptyState() {
		body := "No devices registered yet.\nPress i to discover and import from your integrations."
		return view.Pane(t, "Smart Home", lipgloss.NewStyle().Foreground(t.Muted).Render(body), width), help
	}

	var lines []string
	if st.Err != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Tone(models.ToneRed)).Render(st.Err))
	}
	if st.EditMode {
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Accent).Bold(true).
			Render(fmt.Sprintf("EDIT · %d selected", len(st.SelectedIDs()))))
	}

	rows := flattenSmartHome(st)
	cur := clampCursor(m.shCur, len(rows))
	for i, row := range rows {
		lines = append(lines, renderSmartHomeRow(t, st, row, i == cur))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(t.Muted).
		Render(fmt.Sprintf("%d devices", st.Dashboard.TotalDevices)))

	return view.Pane(t, "Smart Home", strings.Join(lines, "\n"), width), help
}

const smartHomeHelp = "↑/↓ move · enter control/fold · f favorite · e edit · i import"
const smartHomeEditHelp = "space select · g category · b room · v/h show/hide · x delete · e done"

func renderSmartHomeRow(t view.Theme, st console.SmartHomeState, row shRow, atCursor bool) string {
	cursor := "  "
	if atCursor {
		cursor = lipgloss.NewStyle().Foreground(t.Accent).Render("> ")
	}

	if row.header {
		fold := "▾"
		if row.collapsed {
			fold = "▸"
		}
		return cursor + lipgloss.NewStyle().Foreground(t.Text).Bold(true).Render(fold+" "+row.roomName)
	}

	d := row.device
	mark := ""
	if st.EditMode {
		mark = "[ ] "
		if st.Selected[d.ID] {
			mark = "[x] "
		}
	}
	fav := ""
	if d.IsFavorited {
		fav = " ★"
	}
	hidden := ""
	if !d.IsVisible {
		hidden = lipgloss.NewStyle().Foreground(t.Muted).Render(" (hidden)")
	}
	name := d.FriendlyName
	if name == "" {
		name = d.EntityID
	}
	state := lipgloss.NewStyle().Foreground(t.Muted).Render(d.DisplayState())
	return fmt.Sprintf("%s  %s%-28s %-10s %s%s%s", cursor, mark, name, d.Category, state, fav, hidden)
}
