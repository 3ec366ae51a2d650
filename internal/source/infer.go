package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kong/tablectl/internal/table"
	"github.com/kong/tablectl/internal/util"
)

// inferLimit bounds the number of non-empty cells inspected per column.
const inferLimit = 100

// describe turns the raw fields of f into column descriptors. Untyped
// fields get an inferred type and string cells of number and boolean
// columns are converted in place.
func describe(f *frame) []table.Column {
	columns := make([]table.Column, len(f.fields))
	seen := make(map[string]int, len(f.fields))
	for i, fd := range f.fields {
		typ := fd.typ
		if !fd.typed {
			typ = inferType(f.rows, i)
			convertColumn(f.rows, i, typ)
		}
		col := table.Column{
			Key:   uniqueKey(fd.name, i, seen),
			Label: strings.TrimSpace(fd.name),
			Type:  typ,
		}
		if typ == table.TypeNumber {
			col.Flags |= table.ColumnAlignRight
		}
		if hasNested(f.rows, i) {
			col.Formatter = formatNested
		}
		columns[i] = col
	}
	return columns
}

// uniqueKey slugs name into a column key, numbering duplicates.
func uniqueKey(name string, index int, seen map[string]int) string {
	key := util.GenerateSlug(name)
	if key == "" {
		key = fmt.Sprintf("column-%d", index+1)
	}
	n := seen[key]
	seen[key] = n + 1
	if n > 0 {
		key = fmt.Sprintf("%s-%d", key, n+1)
	}
	return key
}

// inferType inspects the first non-empty cells of the column at index. A
// type is chosen only when every inspected cell agrees with it.
func inferType(rows []table.Row, index int) table.ValueType {
	numbers, dates, bools, total := 0, 0, 0, 0
	for _, row := range rows {
		if total == inferLimit {
			break
		}
		v := row.Value(index)
		if isBlank(v) {
			continue
		}
		total++
		switch kind := kindOf(v); kind {
		case table.TypeNumber:
			numbers++
		case table.TypeDate:
			dates++
		case table.TypeBoolean:
			bools++
		}
	}
	switch {
	case total == 0:
		return table.TypeString
	case numbers == total:
		return table.TypeNumber
	case bools == total:
		return table.TypeBoolean
	case dates == total:
		return table.TypeDate
	default:
		return table.TypeString
	}
}

func kindOf(v any) table.ValueType {
	switch s := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return table.TypeNumber
	case bool:
		return table.TypeBoolean
	case time.Time:
		return table.TypeDate
	case string:
		s = strings.TrimSpace(s)
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return table.TypeNumber
		}
		if _, ok := parseBool(s); ok {
			return table.TypeBoolean
		}
		if table.LooksLikeDate(s) {
			return table.TypeDate
		}
	}
	return table.TypeString
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	default:
		return false, false
	}
}

// convertColumn replaces string cells of number and boolean columns with
// native values. Cells that do not parse are left alone.
func convertColumn(rows []table.Row, index int, typ table.ValueType) {
	if typ != table.TypeNumber && typ != table.TypeBoolean {
		return
	}
	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		s, ok := row[index].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			row[index] = nil
			continue
		}
		switch typ {
		case table.TypeNumber:
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				row[index] = f
			}
		case table.TypeBoolean:
			if b, ok := parseBool(s); ok {
				row[index] = b
			}
		}
	}
}

func isBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	default:
		return false
	}
}

func hasNested(rows []table.Row, index int) bool {
	for _, row := range rows {
		switch row.Value(index).(type) {
		case map[string]any, []any:
			return true
		}
	}
	return false
}

// formatNested renders objects and lists as compact JSON.
func formatNested(value any, _ table.Row) string {
	switch value.(type) {
	case map[string]any, []any:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(b)
	case nil:
		return ""
	default:
		return fmt.Sprint(value)
	}
}
