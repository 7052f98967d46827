package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bedrocksmith/bsmith/internal/invocation"
	"github.com/bedrocksmith/bsmith/internal/session"
)

// Column widths
var columnWidths = []int{4, 19, 42, 9, 8, 14, 22}

var tableHeaders = []string{"#", "Time", "Model", "Latency", "Tokens", "Operation", "Status"}

// PrintEventTable prints event summaries in a styled box table
func PrintEventTable(w io.Writer, summaries []session.Summary) {
	var sb strings.Builder

	// Top border
	sb.WriteString(borderLine(TopLeft, TopT, TopRight))

	// Header row
	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range tableHeaders {
		sb.WriteString(HeaderStyle.Render(cell(h, columnWidths[i])))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	// Header separator
	sb.WriteString(borderLine(LeftT, Cross, RightT))

	// Data rows
	for i, sum := range summaries {
		sb.WriteString(BorderStyle.Render(Vertical))
		for col, c := range rowCells(i+1, sum) {
			sb.WriteString(c.style.Render(cell(c.text, columnWidths[col])))
			sb.WriteString(BorderStyle.Render(Vertical))
		}
		sb.WriteString("\n")
	}

	// Bottom border
	sb.WriteString(borderLine(BottomLeft, BottomT, BottomRight))

	fmt.Fprint(w, sb.String())

	printSummary(w, summaries)
}

type styledCell struct {
	text  string
	style lipgloss.Style
}

func rowCells(n int, sum session.Summary) []styledCell {
	cells := []styledCell{
		{strconv.Itoa(n), MutedStyle},
		{shortTimestamp(sum), MutedStyle},
	}

	if sum.Err != nil {
		return append(cells,
			styledCell{"-", MutedStyle},
			styledCell{"-", MutedStyle},
			styledCell{"-", MutedStyle},
			styledCell{"-", MutedStyle},
			styledCell{"malformed record", ErrorStyle},
		)
	}

	md := sum.Metadata
	status := styledCell{"ok", SuccessStyle}
	if sum.ErrorCode != "" {
		status = styledCell{sum.ErrorCode, ErrorStyle}
	}

	return append(cells,
		styledCell{md.ModelID(), TagStyle(invocation.ColorBlue)},
		styledCell{invocation.FormatSeconds(md.LatencyMs()) + " s", TagStyle(invocation.ColorGreen)},
		styledCell{strconv.FormatInt(md.Usage().TotalTokens, 10), TagStyle(invocation.ColorOrange)},
		styledCell{md.Operation(), TagStyle(invocation.ColorGray)},
		status,
	)
}

func borderLine(left, mid, right string) string {
	var sb strings.Builder
	sb.WriteString(BorderStyle.Render(left))
	for i, w := range columnWidths {
		sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
		if i < len(columnWidths)-1 {
			sb.WriteString(BorderStyle.Render(mid))
		}
	}
	sb.WriteString(BorderStyle.Render(right))
	sb.WriteString("\n")
	return sb.String()
}

func cell(text string, width int) string {
	return " " + padRight(text, width) + " "
}

func printSummary(w io.Writer, summaries []session.Summary) {
	var failed, malformed int
	for _, sum := range summaries {
		switch {
		case sum.Err != nil:
			malformed++
		case sum.ErrorCode != "":
			failed++
		}
	}

	var parts []string
	if failed > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	if malformed > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d malformed", malformed)))
	}

	summary := fmt.Sprintf("  %d events", len(summaries))
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	fmt.Fprintln(w, summary)
}

// PrintDetail prints the detail panes of one record
func PrintDetail(w io.Writer, d session.Detail, opts DetailOptions) {
	for _, line := range RenderDetail(d, opts) {
		fmt.Fprintln(w, line)
	}
}
