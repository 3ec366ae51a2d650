package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/kong/tablectl/internal/table"
)

// loadArrow reads an Arrow IPC file, falling back to the streaming format
// when the file footer is missing.
func loadArrow(r ipc.ReadAtSeeker) (*frame, error) {
	mem := memory.NewGoAllocator()

	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(mem))
	if err == nil {
		defer fr.Close()
		f := newArrowFrame(fr.Schema())
		for i := 0; i < fr.NumRecords(); i++ {
			rec, err := fr.Record(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read record batch %d: %w", i, err)
			}
			f.appendRecord(rec)
		}
		return f, nil
	}

	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return nil, errors.Join(err, serr)
	}
	sr, serr := ipc.NewReader(r, ipc.WithAllocator(mem))
	if serr != nil {
		return nil, fmt.Errorf("not an Arrow IPC file or stream: %w", errors.Join(err, serr))
	}
	defer sr.Release()

	f := newArrowFrame(sr.Schema())
	for sr.Next() {
		f.appendRecord(sr.Record())
	}
	if err := sr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return f, nil
}

func newArrowFrame(schema *arrow.Schema) *frame {
	f := &frame{rows: []table.Row{}}
	for _, fd := range schema.Fields() {
		typ, typed := arrowType(fd.Type)
		f.fields = append(f.fields, field{name: fd.Name, typ: typ, typed: typed})
	}
	return f
}

// appendRecord copies the values of rec into plain Go rows. The record is
// owned by the reader and is not retained.
func (f *frame) appendRecord(rec arrow.Record) {
	cols := rec.Columns()
	for i := 0; i < int(rec.NumRows()); i++ {
		row := make(table.Row, len(cols))
		for j, col := range cols {
			if col.IsNull(i) {
				continue
			}
			row[j] = arrowValue(col.GetOneForMarshal(i))
		}
		f.rows = append(f.rows, row)
	}
}

func arrowValue(v any) any {
	switch s := v.(type) {
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return v
	}
}

// arrowType maps an Arrow data type onto a column type. Nested and binary
// types are left for inference.
func arrowType(dt arrow.DataType) (table.ValueType, bool) {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
		arrow.DECIMAL128, arrow.DECIMAL256:
		return table.TypeNumber, true
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return table.TypeDate, true
	case arrow.BOOL:
		return table.TypeBoolean, true
	case arrow.STRING, arrow.LARGE_STRING:
		return table.TypeString, true
	default:
		return table.TypeString, false
	}
}
