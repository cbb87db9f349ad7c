// Package view holds the shared rendering primitives of the console:
// themes, status badges, gauges, and sparkline charts. Every view
// renders through the same theme so status coloring stays consistent.
package view

import (
	"fmt"
	"os"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/DragonRuins/life-hub-sub001/models"
)

// Theme maps semantic tones and chrome roles to terminal colors.
type Theme struct {
	Name string

	Text   lipgloss.Color
	Muted  lipgloss.Color
	Accent lipgloss.Color
	Border lipgloss.Color

	tones map[models.Tone]lipgloss.Color
}

// Tone resolves a semantic tone, falling back to gray for tokens the
// palette does not name.
func (t Theme) Tone(tone models.Tone) lipgloss.Color {
	if c, ok := t.tones[tone]; ok {
		return c
	}
	return t.tones[models.ToneGray]
}

// Catppuccin is the default dark theme, built on the Mocha flavor.
func Catppuccin() Theme {
	m := catppuccin.Mocha
	return Theme{
		Name:   "catppuccin",
		Text:   lipgloss.Color(m.Text().Hex),
		Muted:  lipgloss.Color(m.Overlay0().Hex),
		Accent: lipgloss.Color(m.Mauve().Hex),
		Border: lipgloss.Color(m.Surface1().Hex),
		tones: map[models.Tone]lipgloss.Color{
			models.ToneGreen:  lipgloss.Color(m.Green().Hex),
			models.ToneYellow: lipgloss.Color(m.Yellow().Hex),
			models.ToneRed:    lipgloss.Color(m.Red().Hex),
			models.ToneGray:   lipgloss.Color(m.Overlay0().Hex),
			models.ToneOrange: lipgloss.Color(m.Peach().Hex),
			models.ToneBlue:   lipgloss.Color(m.Blue().Hex),
			models.ToneBright: lipgloss.Color(m.Maroon().Hex),
		},
	}
}

// LCARS is the retro console theme: amber chrome, saturated status
// colors.
func LCARS() Theme {
	return Theme{
		Name:   "lcars",
		Text:   lipgloss.Color("#FFEBCD"),
		Muted:  lipgloss.Color("#7F7A6B"),
		Accent: lipgloss.Color("#FF9C00"),
		Border: lipgloss.Color("#CC6699"),
		tones: map[models.Tone]lipgloss.Color{
			models.ToneGreen:  lipgloss.Color("#33CC99"),
			models.ToneYellow: lipgloss.Color("#FFCC66"),
			models.ToneRed:    lipgloss.Color("#CC4444"),
			models.ToneGray:   lipgloss.Color("#7F7A6B"),
			models.ToneOrange: lipgloss.Color("#FF9C00"),
			models.ToneBlue:   lipgloss.Color("#6699FF"),
			models.ToneBright: lipgloss.Color("#FF3333"),
		},
	}
}

var builtins = map[string]func() Theme{
	"catppuccin": Catppuccin,
	"lcars":      LCARS,
}

// ByName resolves a built-in theme, defaulting to catppuccin for
// unknown names.
func ByName(name string) Theme {
	if f, ok := builtins[name]; ok {
		return f()
	}
	return Catppuccin()
}

// overrideFile is the YAML shape of a user theme file: a base theme
// plus hex replacements for individual roles and tones.
type overrideFile struct {
	Name   string            `yaml:"name"`
	Base   string            `yaml:"base"`
	Text   string            `yaml:"text"`
	Muted  string            `yaml:"muted"`
	Accent string            `yaml:"accent"`
	Border string            `yaml:"border"`
	Tones  map[string]string `yaml:"tones"`
}

// LoadOverride reads a theme override file and applies it on top of its
// base theme. Unknown tone keys are an error so typos do not silently
// fall through to the base palette.
func LoadOverride(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("reading theme file: %w", err)
	}

	var of overrideFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return Theme{}, fmt.Errorf("parsing theme file %s: %w", path, err)
	}

	t := ByName(of.Base)
	if of.Name != "" {
		t.Name = of.Name
	}
	if of.Text != "" {
		t.Text = lipgloss.Color(of.Text)
	}
	if of.Muted != "" {
		t.Muted = lipgloss.Color(of.Muted)
	}
	if of.Accent != "" {
		t.Accent = lipgloss.Color(of.Accent)
	}
	if of.Border != "" {
		t.Border = lipgloss.Color(of.Border)
	}

	tones := make(map[models.Tone]lipgloss.Color, len(t.tones))
	for k, v := range t.tones {
		tones[k] = v
	}
	for key, hex := range of.Tones {
		tone := models.Tone(key)
		if _, ok := tones[tone]; !ok {
			return Theme{}, fmt.Errorf("theme file %s: unknown tone %q", path, key)
		}
		tones[tone] = lipgloss.Color(hex)
	}
	t.tones = tones
	return t, nil
}
