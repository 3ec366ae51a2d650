package tableview

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/kong/tablectl/internal/iostreams"
	applog "github.com/kong/tablectl/internal/log"
	tablepkg "github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/theme"
)

type fdProvider interface {
	Fd() uintptr
}

type config struct {
	title     string
	footer    string
	tableOpts []tablepkg.Option
	filter    tablepkg.Predicate
	page      int
	static    bool
	logger    *slog.Logger
}

// Option configures Render.
type Option func(*config)

// WithTitle sets a title rendered above the table.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithFooter sets the default status line of the interactive view and a
// trailing line of static output.
func WithFooter(msg string) Option {
	return func(c *config) {
		c.footer = msg
	}
}

// WithTableOptions passes options through to the table engine.
func WithTableOptions(opts ...tablepkg.Option) Option {
	return func(c *config) {
		c.tableOpts = append(c.tableOpts, opts...)
	}
}

// WithFilter applies pred before the first page is shown. The interactive
// text filter narrows further within it.
func WithFilter(pred tablepkg.Predicate) Option {
	return func(c *config) {
		c.filter = pred
	}
}

// WithInitialPage opens the view on page.
func WithInitialPage(page int) Option {
	return func(c *config) {
		c.page = page
	}
}

// WithStatic prints a single page even on a terminal.
func WithStatic() Option {
	return func(c *config) {
		c.static = true
	}
}

// WithLogger sets the logger of the view and its table.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Render shows rows in a paginated table. On a terminal it runs an
// interactive program until the user quits, otherwise it prints the
// selected page once.
func Render(streams *iostreams.IOStreams, columns []tablepkg.Column, rows []tablepkg.Row, opts ...Option) error {
	if streams == nil || streams.Out == nil {
		return errors.New("tableview: output stream is not available")
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if len(columns) == 0 {
		return writeStaticMessage(streams.Out, cfg.title, "No data to display.")
	}

	palette := theme.Current()
	termWidth, termHeight, isTTY := resolveTerminal(streams.Out)
	interactive := isTTY && !cfg.static

	title := cfg.title
	if title != "" {
		title = palette.ForegroundStyle(theme.ColorPrimary).Bold(true).Render(title)
	}
	mount := NewMount(MountOptions{
		Palette:     palette,
		Interactive: interactive,
		Title:       title,
		Width:       termWidth,
		Height:      termHeight,
		Reserved:    statusRows + 2,
	})

	tableOpts := append([]tablepkg.Option{tablepkg.WithLogger(cfg.logger)}, cfg.tableOpts...)
	tbl, err := tablepkg.New(mount, rows, columns, tableOpts...)
	if err != nil {
		return err
	}
	defer func() { _ = tbl.Destroy() }()

	if cfg.filter != nil {
		if err := tbl.Filter(cfg.filter); err != nil {
			return err
		}
	}
	if cfg.page > 1 {
		if err := tbl.GoToPage(cfg.page); err != nil {
			return err
		}
	}

	if !interactive {
		sections := []string{mount.View()}
		if cfg.footer != "" {
			sections = append(sections, cfg.footer)
		}
		_, err = fmt.Fprintln(streams.Out, lipgloss.JoinVertical(lipgloss.Left, sections...))
		return err
	}

	model := newBubbleModel(tbl, mount, columns, cfg, palette, termWidth, termHeight)
	defer model.close()

	// the program owns the terminal, keep error records in the log file
	restore := applog.SuspendErrorMirroring()
	defer restore()

	program := tea.NewProgram(model,
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = program.Run()
	return err
}

func writeStaticMessage(out io.Writer, title, message string) error {
	content := message
	if title != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, title, message)
	}
	_, err := fmt.Fprintln(out, content)
	return err
}

// IsTerminal reports whether w writes to a terminal.
func IsTerminal(w io.Writer) bool {
	_, _, isTTY := resolveTerminal(w)
	return isTTY
}

func resolveTerminal(out io.Writer) (width int, height int, isTTY bool) {
	const defaultWidth = 120
	const defaultHeight = 24

	width, height = defaultWidth, defaultHeight

	fd, ok := getFD(out)
	if !ok {
		return width, height, false
	}

	isTTY = isTerminal(fd)

	if w, h, err := term.GetSize(int(fd)); err == nil {
		width, height = w, h
	}

	return width, height, isTTY
}

func getFD(w io.Writer) (uintptr, bool) {
	if fp, ok := w.(fdProvider); ok {
		fd := fp.Fd()
		if fd == ^uintptr(0) {
			return 0, false
		}
		return fd, true
	}
	return 0, false
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
