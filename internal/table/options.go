package table

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

const (
	DefaultRowsPerPage  = 25
	DefaultClassPrefix  = "sortable-table"
	DefaultEmptyMessage = "No data available"
)

// TogglePolicy decides the direction a header click sorts in.
type TogglePolicy int

const (
	// ToggleNewColumnAscending flips the direction when the clicked column is
	// already active and starts a newly selected column ascending.
	ToggleNewColumnAscending TogglePolicy = iota
	// ToggleAlternate alternates the direction on every click, whichever
	// column is clicked.
	ToggleAlternate
)

func (p TogglePolicy) String() string {
	switch p {
	case ToggleNewColumnAscending:
		return "new-column-ascending"
	case ToggleAlternate:
		return "alternate"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseTogglePolicy converts a configuration string into a TogglePolicy.
func ParseTogglePolicy(s string) (TogglePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "new-column-ascending":
		return ToggleNewColumnAscending, nil
	case "alternate":
		return ToggleAlternate, nil
	default:
		return ToggleNewColumnAscending, fmt.Errorf("invalid toggle policy %q, must be one of %v", s,
			[]string{"new-column-ascending", "alternate"})
	}
}

// AddRowPlacement decides where AddRow puts a row in the active view.
type AddRowPlacement int

const (
	// AddRowSorted inserts the row at its stable sorted position.
	AddRowSorted AddRowPlacement = iota
	// AddRowAppend appends the row to the end of the active view and leaves
	// ordering to the next explicit sort or filter.
	AddRowAppend
)

func (p AddRowPlacement) String() string {
	switch p {
	case AddRowSorted:
		return "sorted"
	case AddRowAppend:
		return "append"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseAddRowPlacement converts a configuration string into a placement.
func ParseAddRowPlacement(s string) (AddRowPlacement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sorted":
		return AddRowSorted, nil
	case "append":
		return AddRowAppend, nil
	default:
		return AddRowSorted, fmt.Errorf("invalid add-row placement %q, must be one of %v", s,
			[]string{"sorted", "append"})
	}
}

type config struct {
	rowsPerPage    int
	showPagination bool
	allowSorting   bool
	classPrefix    string
	emptyMessage   string
	initialSort    *SortSpec
	togglePolicy   TogglePolicy
	placement      AddRowPlacement
	locale         language.Tag
	logger         *slog.Logger

	onSort       func(column string, ascending bool)
	onPageChange func(page, totalPages int)
	onRowClick   func(row Row, index int, raw any)
}

func defaultConfig() config {
	return config{
		rowsPerPage:    DefaultRowsPerPage,
		showPagination: true,
		allowSorting:   true,
		classPrefix:    DefaultClassPrefix,
		emptyMessage:   DefaultEmptyMessage,
		locale:         language.English,
	}
}

func (c config) validate() error {
	if c.rowsPerPage <= 0 {
		return &ConfigurationError{
			Field: "rowsPerPage",
			Err:   fmt.Errorf("%w: must be a positive integer, got %d", ErrInvalidOption, c.rowsPerPage),
		}
	}
	return nil
}

// Option configures optional table behaviour.
type Option func(*config)

// WithRowsPerPage sets the page size. Values below one fail construction.
func WithRowsPerPage(n int) Option {
	return func(cfg *config) {
		cfg.rowsPerPage = n
	}
}

// WithPagination toggles pagination. Without it the whole active view is a
// single page.
func WithPagination(enabled bool) Option {
	return func(cfg *config) {
		cfg.showPagination = enabled
	}
}

// WithSorting toggles sorting. When disabled every sort request is ignored.
func WithSorting(enabled bool) Option {
	return func(cfg *config) {
		cfg.allowSorting = enabled
	}
}

// WithClassPrefix sets the prefix adapters use for style class names.
func WithClassPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			cfg.classPrefix = trimmed
		}
	}
}

// WithEmptyMessage sets the text shown when the active view is empty.
func WithEmptyMessage(msg string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(msg) != "" {
			cfg.emptyMessage = msg
		}
	}
}

// WithInitialSort sorts the table during construction. Unknown or
// unsortable columns are ignored.
func WithInitialSort(column string, ascending bool) Option {
	return func(cfg *config) {
		cfg.initialSort = &SortSpec{Column: strings.TrimSpace(column), Ascending: ascending}
	}
}

// WithTogglePolicy selects how header clicks choose a direction.
func WithTogglePolicy(p TogglePolicy) Option {
	return func(cfg *config) {
		cfg.togglePolicy = p
	}
}

// WithAddRowPlacement selects where AddRow puts new rows.
func WithAddRowPlacement(p AddRowPlacement) Option {
	return func(cfg *config) {
		cfg.placement = p
	}
}

// WithLocale selects the collation used for string and boolean columns.
func WithLocale(tag language.Tag) Option {
	return func(cfg *config) {
		cfg.locale = tag
	}
}

// WithLogger injects the logger used for ignored operations and state
// transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// OnSort registers a callback invoked after every completed sort.
func OnSort(fn func(column string, ascending bool)) Option {
	return func(cfg *config) {
		cfg.onSort = fn
	}
}

// OnPageChange registers a callback invoked after every completed page change.
func OnPageChange(fn func(page, totalPages int)) Option {
	return func(cfg *config) {
		cfg.onPageChange = fn
	}
}

// OnRowClick registers a callback invoked when a row is activated. index is
// the row's position within the active (filtered, sorted) view.
func OnRowClick(fn func(row Row, index int, raw any)) Option {
	return func(cfg *config) {
		cfg.onRowClick = fn
	}
}
