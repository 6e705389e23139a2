package dashboard

import (
	"sort"
	"strings"
)

// ThemeSelection is the resolved presentation state handed to templates.
type ThemeSelection struct {
	Theme       ColorTheme        `json:"theme"`
	DarkMode    bool              `json:"dark_mode"`
	CompactMode bool              `json:"compact_mode"`
	Tokens      map[string]string `json:"tokens,omitempty"`
}

// NewThemeSelection merges the color theme with the display toggles.
func NewThemeSelection(theme ColorTheme, dark, compact bool) *ThemeSelection {
	tokens := map[string]string{
		"primary-color": theme.Primary,
		"surface-color": "#ffffff",
		"text-color":    "#111827",
		"widget-gap":    "1.5rem",
	}
	if dark {
		tokens["surface-color"] = "#1f2937"
		tokens["text-color"] = "#f9fafb"
	}
	if compact {
		tokens["widget-gap"] = "0.75rem"
	}
	return &ThemeSelection{Theme: theme, DarkMode: dark, CompactMode: compact, Tokens: tokens}
}

// BodyClasses lists the CSS classes toggled by the display modes.
func (theme *ThemeSelection) BodyClasses() []string {
	if theme == nil {
		return nil
	}
	classes := []string{"theme-" + theme.Theme.ID}
	if theme.DarkMode {
		classes = append(classes, "dark-mode")
	}
	if theme.CompactMode {
		classes = append(classes, "compact-mode")
	}
	return classes
}

// CSSVariables normalizes token keys into CSS variable names.
func (theme *ThemeSelection) CSSVariables() map[string]string {
	if theme == nil || len(theme.Tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(theme.Tokens))
	for key, value := range theme.Tokens {
		name := normalizeCSSVariable(key)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

// CSSVariablesInline renders the CSS variable map as a style string with
// stable key order.
func (theme *ThemeSelection) CSSVariablesInline() string {
	vars := theme.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, key := range keys {
		value := vars[key]
		if value == "" {
			continue
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}
