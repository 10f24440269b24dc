package tui

// Color theme. Maps semantic names (cursor, selection, syntax captures) to
// terminal attributes. A theme can be overridden from a YAML file.

import (
	"os"

	"github.com/nsf/termbox-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Theme holds 256-color indices; zero means the terminal default.
type Theme struct {
	Foreground int `yaml:"foreground"`
	Background int `yaml:"background"`

	StatusBarFg int `yaml:"status_bar_fg"`
	StatusBarBg int `yaml:"status_bar_bg"`
	SelectionBg int `yaml:"selection_bg"`
	CursorFg    int `yaml:"cursor_fg"`
	CursorBg    int `yaml:"cursor_bg"`
	PromptFg    int `yaml:"prompt_fg"`
	GutterFg    int `yaml:"gutter_fg"`

	// Syntax capture colors, keyed by capture name.
	Captures map[string]int `yaml:"captures"`
}

// DefaultTheme is a restrained 256-color palette.
func DefaultTheme() *Theme {
	return &Theme{
		StatusBarFg: 235,
		StatusBarBg: 250,
		SelectionBg: 238,
		CursorFg:    235,
		CursorBg:    252,
		PromptFg:    214,
		GutterFg:    243,
		Captures: map[string]int{
			"keyword":  176,
			"string":   108,
			"number":   180,
			"comment":  243,
			"function": 110,
			"type":     115,
			"property": 146,
			"variable": 252,
			"boolean":  180,
			"null":     180,
		},
	}
}

// LoadTheme reads a YAML theme file over the defaults.
func LoadTheme(path string) *Theme {
	theme := DefaultTheme()
	if path == "" {
		return theme
	}
	content, err := os.ReadFile(path)
	if err != nil {
		logrus.Warnf("theme file %s not readable, using defaults: %v", path, err)
		return theme
	}
	if err := yaml.Unmarshal(content, theme); err != nil {
		logrus.Warnf("theme file %s does not parse, using defaults: %v", path, err)
	}
	return theme
}

func attr(color int) termbox.Attribute {
	if color <= 0 {
		return termbox.ColorDefault
	}
	return termbox.Attribute(color + 1)
}

// CaptureAttr maps a tree-sitter capture name to a foreground attribute.
func (t *Theme) CaptureAttr(name string) termbox.Attribute {
	if color, ok := t.Captures[name]; ok {
		return attr(color)
	}
	return attr(t.Foreground)
}
