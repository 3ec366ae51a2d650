package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueType is the declared semantic type of a column. It selects the
// comparator used when the column is sorted.
type ValueType int

const (
	TypeString ValueType = iota
	TypeNumber
	TypeDate
	TypeBoolean
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseValueType converts a configuration string into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "text":
		return TypeString, nil
	case "number", "int", "integer", "float", "numeric":
		return TypeNumber, nil
	case "date", "datetime", "timestamp":
		return TypeDate, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	default:
		return TypeString, fmt.Errorf("invalid column type %q, must be one of %v", s,
			[]string{"string", "number", "date", "boolean"})
	}
}

// ColumnFlags toggle optional column behaviour. The zero value is a
// sortable, left aligned column.
type ColumnFlags int

const (
	// ColumnNoSort disables sorting for the column.
	ColumnNoSort ColumnFlags = 1 << iota
	// ColumnAlignRight right aligns cell content.
	ColumnAlignRight
)

// Formatter produces the display string for a cell.
type Formatter func(value any, row Row) string

// Column describes one positional slot of every row.
type Column struct {
	Key       string
	Label     string
	Type      ValueType
	Flags     ColumnFlags
	Formatter Formatter
	// Width is a presentation hint in cells; zero lets the adapter decide.
	Width int
}

// Sortable reports whether the column accepts sort requests.
func (c Column) Sortable() bool {
	return c.Flags&ColumnNoSort == 0
}

// AlignRight reports whether the adapter should right align the column.
func (c Column) AlignRight() bool {
	return c.Flags&ColumnAlignRight != 0
}

// Title returns the label, falling back to the key.
func (c Column) Title() string {
	if strings.TrimSpace(c.Label) != "" {
		return c.Label
	}
	return c.Key
}

// Format renders the cell at position index of row. A configured
// Formatter is invoked as-is; panics are not recovered.
func (c Column) Format(row Row, index int) string {
	value := row.Value(index)
	if c.Formatter != nil {
		return c.Formatter(value, row)
	}
	return defaultFormat(c.Type, value)
}

func defaultFormat(t ValueType, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		if t == TypeDate && v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return defaultFormat(t, *v)
	default:
		return fmt.Sprint(v)
	}
}

func validateColumns(columns []Column) (map[string]int, error) {
	if len(columns) == 0 {
		return nil, &ConfigurationError{Field: "columns", Err: ErrNoColumns}
	}
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		key := strings.TrimSpace(col.Key)
		if key == "" {
			return nil, &ConfigurationError{
				Field: "columns",
				Err:   fmt.Errorf("%w: column %d has an empty key", ErrInvalidColumn, i),
			}
		}
		if _, exists := index[key]; exists {
			return nil, &ConfigurationError{
				Field: "columns",
				Err:   fmt.Errorf("%w: %q", ErrDuplicateColumn, key),
			}
		}
		index[key] = i
	}
	return index, nil
}
