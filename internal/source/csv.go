package source

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/kong/tablectl/internal/table"
)

// loadCSV reads delimited text. The first record is the header; records may
// be shorter or longer than it.
func loadCSV(r io.Reader, comma rune) (*frame, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no header record found")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	f := &frame{fields: make([]field, len(header))}
	for i, name := range header {
		f.fields[i] = field{name: name}
	}

	f.rows = []table.Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(table.Row, len(record))
		for i, v := range record {
			row[i] = v
		}
		f.rows = append(f.rows, row)
	}
	return f, nil
}

func trimBOM(s string) string {
	const bom = "\ufeff"
	if len(s) >= len(bom) && s[:len(bom)] == bom {
		return s[len(bom):]
	}
	return s
}
