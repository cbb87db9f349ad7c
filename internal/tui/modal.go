package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DragonRuins/life-hub-sub001/internal/view"
)

// confirmModal gates a destructive action behind an explicit yes. The
// prompt always names what is about to happen, quoting names or counts.
type confirmModal struct {
	prompt string
	action tea.Cmd
}

func (m app) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		cmd := m.confirm.action
		m.confirm = nil
		return m, cmd
	case "n", "N", "esc", "q":
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (c *confirmModal) render(t view.Theme) string {
	body := lipgloss.NewStyle().Foreground(t.Text).Render(c.prompt) + "\n\n" +
		lipgloss.NewStyle().Foreground(t.Muted).Render("y to confirm, n to cancel")
	return view.Pane(t, "Confirm", body, 60)
}

// formField is one labelled text input.
type formField struct {
	label string
	input textinput.Model
}

// form is a vertical stack of text inputs with tab navigation. Submit
// receives the field values in declaration order.
type form struct {
	title  string
	fields []formField
	focus  int
	submit func(values []string) tea.Cmd
}

func newForm(title string, labels []string, submit func(values []string) tea.Cmd) *form {
	f := &form{title: title, submit: submit}
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 200
		if i == 0 {
			in.Focus()
		}
		f.fields = append(f.fields, formField{label: label, input: in})
	}
	return f
}

func (f *form) values() []string {
	vals := make([]string, len(f.fields))
	for i, fld := range f.fields {
		vals[i] = strings.TrimSpace(fld.input.Value())
	}
	return vals
}

func (f *form) setFocus(i int) {
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	f.focus = i
}

func (m app) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "esc":
		m.form = nil
		return m, nil

	case "tab", "down":
		f.setFocus((f.focus + 1) % len(f.fields))
		return m, nil

	case "shift+tab", "up":
		f.setFocus((f.focus + len(f.fields) - 1) % len(f.fields))
		return m, nil

	case "enter":
		cmd := f.submit(f.values())
		m.form = nil
		return m, cmd
	}

	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return m, cmd
}

func (f *form) render(t view.Theme) string {
	var b strings.Builder
	for i, fld := range f.fields {
		label := lipgloss.NewStyle().Foreground(t.Muted).Width(14).Render(fld.label)
		cursor := "  "
		if i == f.focus {
			cursor = lipgloss.NewStyle().Foreground(t.Accent).Render("> ")
		}
		b.WriteString(cursor + label + fld.input.View() + "\n")
	}
	return view.Pane(t, f.title, strings.TrimRight(b.String(), "\n"), 60)
}

// pickerOption is one choice in a picker modal.
type pickerOption struct {
	label string
	apply tea.Cmd
}

// picker is a single-choice list modal used for bulk category, room
// moves, and the incident filter.
type picker struct {
	title   string
	options []pickerOption
	cursor  int
}

func (m app) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.picker
	switch msg.String() {
	case "esc", "q":
		m.picker = nil
		return m, nil
	case "up", "k":
		p.cursor = clampCursor(p.cursor-1, len(p.options))
		return m, nil
	case "down", "j":
		p.cursor = clampCursor(p.cursor+1, len(p.options))
		return m, nil
	case "enter":
		cmd := p.options[p.cursor].apply
		m.picker = nil
		return m, cmd
	}
	return m, nil
}

func (p *picker) render(t view.Theme) string {
	var b strings.Builder
	for i, opt := range p.options {
		if i == p.cursor {
			b.WriteString(lipgloss.NewStyle().Foreground(t.Accent).Render("> "+opt.label) + "\n")
		} else {
			b.WriteString("  " + lipgloss.NewStyle().Foreground(t.Text).Render(opt.label) + "\n")
		}
	}
	return view.Pane(t, p.title, strings.TrimRight(b.String(), "\n"), 40)
}
