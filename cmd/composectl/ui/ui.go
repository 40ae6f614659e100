// Package ui holds the terminal styling helpers for composectl's text
// output. JSON output bypasses this package entirely.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette. Muted colors that hold up on dark terminals.
var (
	teal  = lipgloss.Color("73")
	green = lipgloss.Color("76")
	red   = lipgloss.Color("204")
	dim   = lipgloss.Color("243")
	faint = lipgloss.Color("238")
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(teal)
	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	mutedStyle   = lipgloss.NewStyle().Foreground(dim)
	labelStyle   = lipgloss.NewStyle().Foreground(dim)
)

func Accent(s string) string { return accentStyle.Render(s) }
func Muted(s string) string  { return mutedStyle.Render(s) }

// Message helpers return single-line strings without a trailing newline.

func SuccessMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func ErrorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func InfoMsg(format string, a ...any) string {
	return accentStyle.Render("●") + " " + fmt.Sprintf(format, a...)
}

// Pair is one row of KeyValues output. Construct with KV.
type Pair struct {
	key   string
	value string
}

func KV(key, value string) Pair {
	return Pair{key: key, value: value}
}

// KeyValues renders aligned "key: value" lines, one per pair, with a
// trailing newline.
func KeyValues(indent string, pairs ...Pair) string {
	width := 0
	for _, p := range pairs {
		if len(p.key) > width {
			width = len(p.key)
		}
	}

	var sb strings.Builder
	for _, p := range pairs {
		pad := strings.Repeat(" ", width-len(p.key))
		sb.WriteString(indent)
		sb.WriteString(labelStyle.Render(p.key + ":"))
		sb.WriteString(pad + " ")
		sb.WriteString(p.value)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Table renders rows under a header line with rounded borders.
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(teal).
		Bold(true).
		Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}
