package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bedrocksmith/bsmith/internal/invocation"
)

// Box drawing characters
const (
	TopLeft     = "╭"
	TopRight    = "╮"
	BottomLeft  = "╰"
	BottomRight = "╯"
	Horizontal  = "─"
	Vertical    = "│"
	LeftT       = "├"
	RightT      = "┤"
	TopT        = "┬"
	BottomT     = "┴"
	Cross       = "┼"
)

// Color palette
const (
	ColorBorder = "240"
	ColorHeader = "252"
	ColorTitle  = "81"
	ColorMuted  = "240"
	ColorHint   = "245"
	ColorBlue   = "39"
	ColorGreen  = "82"
	ColorOrange = "214"
	ColorGray   = "250"
	ColorRed    = "196"
)

// Shared styles
var (
	BorderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder))
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorHeader))
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorTitle))
	MutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorMuted))
	HintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHint))
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed))
	SuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen))
	RoleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorOrange))
	SelectedStyle = lipgloss.NewStyle().Bold(true)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorBorder))
)

var tagStyles = map[invocation.Color]lipgloss.Style{
	invocation.ColorBlue:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBlue)),
	invocation.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
	invocation.ColorOrange: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorOrange)),
	invocation.ColorGray:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	invocation.ColorRed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
}

// TagStyle returns the style of a summary tag color
func TagStyle(c invocation.Color) lipgloss.Style {
	if s, ok := tagStyles[c]; ok {
		return s
	}
	return MutedStyle
}

// RenderTags renders tags separated by spaces, dropping those that do not
// fit in width display cells
func RenderTags(tags []invocation.Tag, width int) string {
	var sb strings.Builder
	used := 0
	for i, t := range tags {
		w := runewidth.StringWidth(t.Label)
		if i > 0 {
			w++
		}
		if used+w > width {
			if i == 0 {
				sb.WriteString(TagStyle(t.Color).Render(runewidth.Truncate(t.Label, width, "...")))
			}
			break
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(TagStyle(t.Color).Render(t.Label))
		used += w
	}
	return sb.String()
}

// padRight pads a string to the specified display width using runewidth
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "...")
	}
	return s + strings.Repeat(" ", width-sw)
}

// wrap breaks text into lines of at most width display cells
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, strings.Split(runewidth.Wrap(para, width), "\n")...)
	}
	return lines
}
