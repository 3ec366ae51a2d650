// Package predicate compiles filter expressions into row predicates. Each
// row is evaluated as an object keyed by column.
package predicate

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/gojq"
	"github.com/jmespath/go-jmespath"

	"github.com/kong/tablectl/internal/table"
)

// Lang names an expression language.
type Lang string

const (
	LangJQ       Lang = "jq"
	LangJMESPath Lang = "jmespath"
)

// Langs lists the supported expression languages.
var Langs = []Lang{LangJQ, LangJMESPath}

// ParseLang converts a flag value into a Lang. Empty selects jq.
func ParseLang(s string) (Lang, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(LangJQ):
		return LangJQ, nil
	case string(LangJMESPath), "jp":
		return LangJMESPath, nil
	default:
		return LangJQ, fmt.Errorf("invalid filter language %q, must be one of %v", s, Langs)
	}
}

// Compile turns expr into a predicate over rows shaped by columns. A row
// matches when the expression yields a truthy value. Rows the expression
// fails on do not match.
func Compile(lang Lang, expr string, columns []table.Column) (table.Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	cols := append([]table.Column(nil), columns...)

	switch lang {
	case LangJQ, "":
		code, err := JQ(expr)
		if err != nil {
			return nil, err
		}
		return func(row table.Row) bool {
			iter := code.Run(Normalize(row.Object(cols)))
			for {
				v, ok := iter.Next()
				if !ok {
					return false
				}
				if _, isErr := v.(error); isErr {
					return false
				}
				if jqTruthy(v) {
					return true
				}
			}
		}, nil
	case LangJMESPath:
		jp, err := jmespath.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid jmespath expression: %w", err)
		}
		return func(row table.Row) bool {
			v, err := jp.Search(Normalize(row.Object(cols)))
			if err != nil {
				return false
			}
			return jmespathTruthy(v)
		}, nil
	default:
		return nil, fmt.Errorf("invalid filter language %q, must be one of %v", lang, Langs)
	}
}

// Text matches rows where any formatted cell contains query, ignoring case.
func Text(query string, columns []table.Column) table.Predicate {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	cols := append([]table.Column(nil), columns...)
	return func(row table.Row) bool {
		for i, col := range cols {
			if strings.Contains(strings.ToLower(col.Format(row, i)), query) {
				return true
			}
		}
		return false
	}
}

var jqCache sync.Map

// JQ parses and compiles a jq expression, caching the compiled code.
func JQ(expr string) (*gojq.Code, error) {
	if code, ok := jqCache.Load(expr); ok {
		return code.(*gojq.Code), nil
	}
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	jqCache.Store(expr, code)
	return code, nil
}

// Normalize converts cell values into the plain JSON shapes the expression
// engines understand. Numbers become float64 and times RFC 3339 strings.
func Normalize(v any) any {
	switch value := v.(type) {
	case nil, bool, string, float64:
		return value
	case int:
		return float64(value)
	case int8:
		return float64(value)
	case int16:
		return float64(value)
	case int32:
		return float64(value)
	case int64:
		return float64(value)
	case uint:
		return float64(value)
	case uint8:
		return float64(value)
	case uint16:
		return float64(value)
	case uint32:
		return float64(value)
	case uint64:
		return float64(value)
	case float32:
		return float64(value)
	case *big.Int:
		f, _ := new(big.Float).SetInt(value).Float64()
		return f
	case json.Number:
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	case time.Time:
		return value.Format(time.RFC3339)
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, val := range value {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(value))
		for k, val := range value {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(value))
		for i, val := range value {
			out[i] = Normalize(val)
		}
		return out
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

func jqTruthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	default:
		return true
	}
}

func jmespathTruthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case []any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	default:
		return true
	}
}
