// Package source loads rows and column descriptors from files and databases.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kong/tablectl/internal/table"
)

// Kind names the format of a data source.
type Kind string

const (
	KindAuto   Kind = ""
	KindCSV    Kind = "csv"
	KindTSV    Kind = "tsv"
	KindJSON   Kind = "json"
	KindYAML   Kind = "yaml"
	KindArrow  Kind = "arrow"
	KindSQLite Kind = "sqlite"
)

// Kinds lists every explicit source kind.
var Kinds = []Kind{KindCSV, KindTSV, KindJSON, KindYAML, KindArrow, KindSQLite}

// ErrUnknownKind is returned when a source format cannot be determined.
var ErrUnknownKind = errors.New("unknown source format")

var extensions = map[string]Kind{
	".csv":     KindCSV,
	".tsv":     KindTSV,
	".json":    KindJSON,
	".yaml":    KindYAML,
	".yml":     KindYAML,
	".arrow":   KindArrow,
	".ipc":     KindArrow,
	".feather": KindArrow,
	".db":      KindSQLite,
	".sqlite":  KindSQLite,
	".sqlite3": KindSQLite,
}

// ParseKind converts a flag value into a Kind. The empty string and "auto"
// select detection by file extension.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "auto" {
		return KindAuto, nil
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return KindAuto, fmt.Errorf("%w %q, must be one of %v", ErrUnknownKind, s, Kinds)
}

// DetectKind derives the source kind from the file extension of path.
func DetectKind(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if k, ok := extensions[ext]; ok {
		return k, nil
	}
	return KindAuto, fmt.Errorf("%w for %q, use --format to select one", ErrUnknownKind, path)
}

// Options select and shape a data source.
type Options struct {
	// Path is the data file or SQLite database.
	Path string
	// Kind overrides extension based detection.
	Kind Kind
	// Query is the SQL statement run against SQLite sources.
	Query string
	// ColumnSpec is an optional YAML or JSON file describing the columns.
	ColumnSpec string
	Logger     *slog.Logger
}

// Dataset is a loaded source ready to be handed to table.New.
type Dataset struct {
	Name    string
	Kind    Kind
	Columns []table.Column
	Rows    []table.Row
}

// field is a source column before it becomes a descriptor. Typed fields
// carry a type declared by the source itself.
type field struct {
	name  string
	typ   table.ValueType
	typed bool
}

// frame is the raw result of a loader.
type frame struct {
	fields []field
	rows   []table.Row
}

// Load reads the source described by opts.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("a source path is required")
	}

	kind := opts.Kind
	if kind == KindAuto {
		detected, err := DetectKind(opts.Path)
		if err != nil {
			return nil, err
		}
		kind = detected
	}

	f, err := loadFrame(ctx, kind, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s source %q: %w", kind, opts.Path, err)
	}
	logger.Debug("loaded source",
		slog.String("path", opts.Path),
		slog.String("kind", string(kind)),
		slog.Int("columns", len(f.fields)),
		slog.Int("rows", len(f.rows)))

	ds := &Dataset{
		Name: filepath.Base(opts.Path),
		Kind: kind,
		Rows: f.rows,
	}
	ds.Columns = describe(f)

	if opts.ColumnSpec != "" {
		spec, err := ReadSpecFile(opts.ColumnSpec)
		if err != nil {
			return nil, err
		}
		if err := ds.Apply(spec); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func loadFrame(ctx context.Context, kind Kind, opts Options) (*frame, error) {
	if kind == KindSQLite {
		return loadSQLite(ctx, opts.Path, opts.Query)
	}

	file, err := os.Open(opts.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch kind {
	case KindCSV:
		return loadCSV(file, ',')
	case KindTSV:
		return loadCSV(file, '\t')
	case KindJSON, KindYAML:
		return loadDocument(file)
	case KindArrow:
		return loadArrow(file)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}
