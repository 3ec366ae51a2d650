package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kong/tablectl/internal/table"
)

// loadDocument reads a JSON or YAML document. Accepted shapes are a list of
// objects, a list of lists whose first entry is the header, an object with
// "columns" and "rows", or an object wrapping a single such list.
func loadDocument(r io.Reader) (*frame, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return frameFromNode(root)
}

func frameFromNode(n *yaml.Node) (*frame, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		return frameFromSequence(n)
	case yaml.MappingNode:
		columns, rows := mappingValue(n, "columns"), mappingValue(n, "rows")
		if rows != nil {
			return frameFromColumnsAndRows(columns, rows)
		}
		if len(n.Content) == 2 && n.Content[1].Kind == yaml.SequenceNode {
			return frameFromSequence(n.Content[1])
		}
		return nil, errors.New("expected a list of records or an object with a rows list")
	case yaml.AliasNode:
		return frameFromNode(n.Alias)
	default:
		return nil, fmt.Errorf("expected a list of records at line %d", n.Line)
	}
}

func frameFromSequence(seq *yaml.Node) (*frame, error) {
	f := &frame{rows: []table.Row{}}
	if len(seq.Content) == 0 {
		return f, nil
	}

	switch first := seq.Content[0]; first.Kind {
	case yaml.MappingNode:
		index := map[string]int{}
		for _, item := range seq.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: expected an object like the first record", item.Line)
			}
			for i := 0; i+1 < len(item.Content); i += 2 {
				name := item.Content[i].Value
				if _, ok := index[name]; !ok {
					index[name] = len(f.fields)
					f.fields = append(f.fields, field{name: name})
				}
			}
		}
		for _, item := range seq.Content {
			row, err := objectRow(item, index)
			if err != nil {
				return nil, err
			}
			f.rows = append(f.rows, row)
		}
	case yaml.SequenceNode:
		for _, h := range first.Content {
			f.fields = append(f.fields, field{name: h.Value})
		}
		for _, item := range seq.Content[1:] {
			row, err := listRow(item)
			if err != nil {
				return nil, err
			}
			f.rows = append(f.rows, row)
		}
	default:
		return nil, fmt.Errorf("line %d: records must be objects or lists", first.Line)
	}
	return f, nil
}

func frameFromColumnsAndRows(columns, rows *yaml.Node) (*frame, error) {
	if rows.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: rows must be a list", rows.Line)
	}
	if columns == nil {
		return frameFromSequence(rows)
	}
	if columns.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: columns must be a list", columns.Line)
	}

	f := &frame{rows: []table.Row{}}
	index := map[string]int{}
	for _, c := range columns.Content {
		fd, err := columnField(c)
		if err != nil {
			return nil, err
		}
		index[fd.name] = len(f.fields)
		f.fields = append(f.fields, fd)
	}
	for _, item := range rows.Content {
		var (
			row table.Row
			err error
		)
		if item.Kind == yaml.MappingNode {
			row, err = objectRow(item, index)
		} else {
			row, err = listRow(item)
		}
		if err != nil {
			return nil, err
		}
		f.rows = append(f.rows, row)
	}
	return f, nil
}

// columnField reads a column header that is either a plain name or an
// object with key and an optional type.
func columnField(n *yaml.Node) (field, error) {
	if n.Kind == yaml.ScalarNode {
		return field{name: n.Value}, nil
	}
	var header struct {
		Key  string `yaml:"key"`
		Type string `yaml:"type"`
	}
	if err := n.Decode(&header); err != nil {
		return field{}, err
	}
	if header.Key == "" {
		return field{}, fmt.Errorf("line %d: column is missing a key", n.Line)
	}
	fd := field{name: header.Key}
	if header.Type != "" {
		typ, err := table.ParseValueType(header.Type)
		if err != nil {
			return field{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		fd.typ, fd.typed = typ, true
	}
	return fd, nil
}

func objectRow(item *yaml.Node, index map[string]int) (table.Row, error) {
	row := make(table.Row, len(index))
	for i := 0; i+1 < len(item.Content); i += 2 {
		pos, ok := index[item.Content[i].Value]
		if !ok {
			continue
		}
		v, err := scalarValue(item.Content[i+1])
		if err != nil {
			return nil, err
		}
		row[pos] = v
	}
	return row, nil
}

func listRow(item *yaml.Node) (table.Row, error) {
	if item.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of values", item.Line)
	}
	row := make(table.Row, len(item.Content))
	for i, c := range item.Content {
		v, err := scalarValue(c)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

func scalarValue(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: %w", n.Line, err)
	}
	return v, nil
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
