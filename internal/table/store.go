package table

// store owns the master row collection and the derived active view. The
// master slice is authoritative; view only ever holds entries of master.
type store struct {
	master []entry
	view   []entry
	nextID uint64
}

func newStore(rows []Row) *store {
	s := &store{}
	s.replace(rows)
	return s
}

func (s *store) wrap(row Row) entry {
	s.nextID++
	return entry{id: s.nextID, row: row.Clone()}
}

// replace swaps the master collection. The caller recomputes the view.
func (s *store) replace(rows []Row) {
	s.master = make([]entry, 0, len(rows))
	for _, row := range rows {
		s.master = append(s.master, s.wrap(row))
	}
}

// append adds row to the end of master and returns its entry.
func (s *store) append(row Row) entry {
	e := s.wrap(row)
	s.master = append(s.master, e)
	return e
}

// remove deletes every master row matching pred and mirrors the removal in
// the view, preserving the order of what remains.
func (s *store) remove(pred Predicate) int {
	if pred == nil {
		return 0
	}
	removed := make(map[uint64]struct{})
	kept := s.master[:0]
	for _, e := range s.master {
		if pred(e.row) {
			removed[e.id] = struct{}{}
			continue
		}
		kept = append(kept, e)
	}
	clear(s.master[len(kept):])
	s.master = kept
	if len(removed) == 0 {
		return 0
	}

	view := make([]entry, 0, len(s.view))
	for _, e := range s.view {
		if _, gone := removed[e.id]; !gone {
			view = append(view, e)
		}
	}
	s.view = view
	return len(removed)
}

func (s *store) release() {
	s.master = nil
	s.view = nil
}
