package table

// Row is an ordered sequence of values aligned with the table columns.
// Slot i of every row belongs to column i. Short rows are allowed; missing
// slots read as nil.
type Row []any

// Value returns the value at index or nil when the slot is missing.
func (r Row) Value(index int) any {
	if index < 0 || index >= len(r) {
		return nil
	}
	return r[index]
}

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	return append(Row(nil), r...)
}

// Predicate selects rows. A nil Predicate matches every row.
type Predicate func(Row) bool

// entry pairs a row with a stable identity so removals can be mirrored from
// the master collection into the derived view.
type entry struct {
	id  uint64
	row Row
}

// Object maps the row onto the column keys. Slots without a column are
// dropped and columns without a slot map to nil.
func (r Row) Object(columns []Column) map[string]any {
	obj := make(map[string]any, len(columns))
	for i, col := range columns {
		obj[col.Key] = r.Value(i)
	}
	return obj
}
