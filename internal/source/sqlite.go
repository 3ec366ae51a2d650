package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kong/tablectl/internal/table"

	_ "modernc.org/sqlite"
)

// loadSQLite runs query against the database at path. An empty query selects
// every row of the only table in the database.
func loadSQLite(ctx context.Context, path, query string) (*frame, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if strings.TrimSpace(query) == "" {
		query, err = defaultQuery(ctx, db)
		if err != nil {
			return nil, err
		}
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	f := &frame{rows: []table.Row{}}
	for _, ct := range types {
		typ, typed := sqliteType(ct.DatabaseTypeName())
		f.fields = append(f.fields, field{name: ct.Name(), typ: typ, typed: typed})
	}

	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(table.Row, len(values))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = v
		}
		f.rows = append(f.rows, row)
	}
	return f, rows.Err()
}

func defaultQuery(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(tables) != 1 {
		return "", fmt.Errorf("database has %d tables %v, use --query to select rows", len(tables), tables)
	}
	return fmt.Sprintf(`SELECT * FROM "%s"`, strings.ReplaceAll(tables[0], `"`, `""`)), nil
}

// sqliteType maps a declared column type onto a column type using SQLite's
// affinity rules. Columns without a declared type are inferred.
func sqliteType(decl string) (table.ValueType, bool) {
	decl = strings.ToUpper(strings.TrimSpace(decl))
	switch {
	case decl == "":
		return table.TypeString, false
	case strings.Contains(decl, "BOOL"):
		return table.TypeBoolean, true
	case strings.Contains(decl, "DATE"), strings.Contains(decl, "TIME"):
		return table.TypeDate, true
	case strings.Contains(decl, "INT"),
		strings.Contains(decl, "REAL"),
		strings.Contains(decl, "FLOA"),
		strings.Contains(decl, "DOUB"),
		strings.Contains(decl, "NUM"),
		strings.Contains(decl, "DEC"):
		return table.TypeNumber, true
	default:
		return table.TypeString, true
	}
}
