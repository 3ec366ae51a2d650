// Package markdown renders Markdown documents for the terminal.
package markdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

var (
	colorRenderer *glamour.TermRenderer
	colorMu       sync.Mutex
)

// Options controls rendering. Plain output carries no escape sequences and
// suits pipes and files.
type Options struct {
	Plain bool
	Width int
}

// Render converts markdown for terminal display. The source is returned
// unchanged when rendering fails.
func Render(markdown string, opts Options) string {
	r, err := renderer(opts)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return tidy(out)
}

func renderer(opts Options) (*glamour.TermRenderer, error) {
	if opts.Plain || opts.Width > 0 {
		return newRenderer(opts)
	}
	colorMu.Lock()
	defer colorMu.Unlock()
	if colorRenderer == nil {
		r, err := newRenderer(opts)
		if err != nil {
			return nil, err
		}
		colorRenderer = r
	}
	return colorRenderer, nil
}

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	var options []glamour.TermRendererOption
	if opts.Plain {
		options = append(options,
			glamour.WithStandardStyle(styles.NoTTYStyle),
			glamour.WithColorProfile(termenv.Ascii),
		)
	} else {
		options = append(options,
			glamour.WithAutoStyle(),
			glamour.WithColorProfile(termenv.TrueColor),
		)
	}
	if opts.Width > 0 {
		options = append(options, glamour.WithWordWrap(opts.Width))
	}
	return glamour.NewTermRenderer(options...)
}

// tidy drops the outer blank margin glamour adds around a document.
func tidy(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Table builds a Markdown table. Pipes and newlines inside cells are
// escaped.
func Table(headers []string, rows [][]string) string {
	var b strings.Builder
	writeRow := func(cells []string) {
		b.WriteString("|")
		for _, c := range cells {
			fmt.Fprintf(&b, " %s |", escapeCell(c))
		}
		b.WriteString("\n")
	}
	writeRow(headers)
	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
