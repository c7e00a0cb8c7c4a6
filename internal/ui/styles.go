package ui

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Paths, identifiers, highlights
// - Muted (gray): Secondary info, hints
// - No colored success/error/warning - use unicode symbols only

var (
	// Accent style for device paths and identifiers
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)
)

// accentColor holds the configured accent, "" when unset.
var accentColor string

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// normalizeAccentColor validates a user-supplied accent color and returns
// the canonical form. ANSI codes 0-255 and hex colors are accepted; "",
// "none", "off" and "default" disable the accent.
func normalizeAccentColor(accent string) (string, bool) {
	accent = strings.TrimSpace(accent)
	switch strings.ToLower(accent) {
	case "", "none", "off", "default":
		return "", false
	}

	if n, err := strconv.Atoi(accent); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}

	if hexColorRe.MatchString(accent) {
		if len(accent) == 4 {
			// Expand #abc to #aabbcc.
			var b strings.Builder
			b.WriteByte('#')
			for _, c := range strings.ToLower(accent[1:]) {
				b.WriteRune(c)
				b.WriteRune(c)
			}
			return b.String(), true
		}
		return strings.ToLower(accent), true
	}

	return "", false
}

// ConfigureTheme applies the configured accent color to the styles.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}
