package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette is the set of styles used for text output
type Palette struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Header  lipgloss.Style
}

// NewPalette returns the color palette, or plain styles when noColor is set
func NewPalette(noColor bool) Palette {
	if noColor {
		plain := lipgloss.NewStyle()
		return Palette{Title: plain, Label: plain, Muted: plain, Success: plain, Warning: plain, Danger: plain, Header: plain}
	}
	return Palette{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Label:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
	}
}

// Table renders rows under headers. Without color the table uses plain ASCII borders.
func Table(headers []string, rows [][]string, noColor bool) string {
	p := NewPalette(noColor)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.Header.Padding(0, 1)
			}
			return cell
		})

	if noColor {
		t = t.Border(lipgloss.NormalBorder())
	} else {
		t = t.Border(lipgloss.RoundedBorder()).BorderStyle(p.Muted)
	}
	return t.Render()
}

// KeyValues renders label: value lines with aligned values
func KeyValues(pairs [][2]string, noColor bool) string {
	p := NewPalette(noColor)

	width := 0
	for _, kv := range pairs {
		if len(kv[0]) > width {
			width = len(kv[0])
		}
	}

	var b strings.Builder
	for i, kv := range pairs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Label.Render(kv[0] + ":"))
		b.WriteString(strings.Repeat(" ", width-len(kv[0])+1))
		b.WriteString(kv[1])
	}
	return b.String()
}
