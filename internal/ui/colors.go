package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/mtcat/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// statusStyle mirrors the fills of the status workbook.
func (p *Palette) statusStyle(status models.Status) lipgloss.Style {
	switch status {
	case models.StatusNew:
		return p.ok
	case models.StatusUpdated:
		return p.warn
	case models.StatusRemoved:
		return p.err
	default:
		return p.help
	}
}

// RenderCounts formats reconciliation counts as one styled line, e.g. "2 New · 1 Updated · 9 Unchanged · 0 Removed".
func RenderCounts(counts map[models.Status]int) string {
	parts := make([]string, 0, 4)
	for _, status := range []models.Status{models.StatusNew, models.StatusUpdated, models.StatusUnchanged, models.StatusRemoved} {
		parts = append(parts, styles.statusStyle(status).Render(fmt.Sprintf("%d %s", counts[status], status)))
	}
	return strings.Join(parts, " · ")
}

// RenderTitle renders s as a bold heading.
func RenderTitle(s string) string {
	return styles.title.Render(s)
}

// RenderWarning renders s in the warning color.
func RenderWarning(s string) string {
	return styles.warn.Render(s)
}
