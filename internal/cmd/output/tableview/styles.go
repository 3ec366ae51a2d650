package tableview

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/kong/tablectl/internal/theme"
)

func newTableBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1)
}

func newDetailBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Adaptive(theme.ColorAccent)).
		Padding(0, 1)
}

func newStatusBoxStyle(p theme.Palette) lipgloss.Style {
	return lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Adaptive(theme.ColorBorder)).
		Padding(0, 1)
}

// newTableStyles colours the cell grid. Static output has no cursor, so the
// selected row gets no highlight.
func newTableStyles(p theme.Palette, interactive bool) table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Foreground(p.Adaptive(theme.ColorTextPrimary)).
		Background(p.Adaptive(theme.ColorSurface))
	styles.Cell = styles.Cell.
		Foreground(p.Adaptive(theme.ColorTextPrimary))
	styles.Selected = styles.Selected.
		Foreground(p.Adaptive(theme.ColorAccentText)).
		Background(p.Adaptive(theme.ColorAccent))
	if !interactive {
		styles.Selected = lipgloss.NewStyle()
	}
	return styles
}

// barStyles render the pagination bar.
type barStyles struct {
	control   lipgloss.Style
	disabled  lipgloss.Style
	indicator lipgloss.Style
	editing   lipgloss.Style
	empty     lipgloss.Style
}

func newBarStyles(p theme.Palette) barStyles {
	return barStyles{
		control:   p.ForegroundStyle(theme.ColorPrimary).Bold(true),
		disabled:  p.ForegroundStyle(theme.ColorTextMuted),
		indicator: p.ForegroundStyle(theme.ColorTextSecondary),
		editing:   p.ForegroundStyle(theme.ColorAccent).Bold(true),
		empty:     p.ForegroundStyle(theme.ColorTextMuted).Italic(true),
	}
}

// NormalizeSelectedRow ensures that selected rows emitted by the table component
// keep the highlight active across all columns when wrapped by another style.
func NormalizeSelectedRow(content string, selected lipgloss.Style) string {
	const reset = "\x1b[0m"

	prefix := selectionPrefix(selected, reset)
	if prefix == "" || !strings.Contains(content, prefix) {
		return content
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.Contains(line, prefix) {
			continue
		}
		count := strings.Count(line, reset)
		if count <= 1 {
			continue
		}
		line = strings.ReplaceAll(line, reset+prefix, reset)
		lines[i] = strings.Replace(line, reset, reset+prefix, count-1)
	}
	return strings.Join(lines, "\n")
}

func selectionPrefix(style lipgloss.Style, reset string) string {
	rendered := style.Render("")
	if rendered == "" {
		return ""
	}
	idx := strings.LastIndex(rendered, reset)
	if idx == -1 {
		return ""
	}
	return rendered[:idx]
}

// stylizeDetailContent colours "label: value" lines of the row detail pane.
func stylizeDetailContent(content string, palette theme.Palette) string {
	if content == "" || strings.Contains(content, "\x1b[") {
		return content
	}

	labelStyle := palette.ForegroundStyle(theme.ColorTextSecondary)
	valueStyle := palette.ForegroundStyle(theme.ColorTextPrimary)
	accentStyle := palette.ForegroundStyle(theme.ColorInfo)

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			lines[i] = valueStyle.Render(line)
			continue
		}
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		styled := labelStyle.Render(label + ":")
		if value != "" {
			style := valueStyle
			if shouldAccentDetail(label, value) {
				style = accentStyle
			}
			styled += " " + style.Render(value)
		}
		lines[i] = styled
	}
	return strings.Join(lines, "\n")
}

func shouldAccentDetail(label, value string) bool {
	if isIDHeaderKey(normalizeHeaderKey(label)) {
		return true
	}
	low := strings.ToLower(value)
	return strings.Contains(low, "error") || strings.Contains(low, "failed")
}
