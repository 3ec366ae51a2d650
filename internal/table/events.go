package table

import "fmt"

// EventKind identifies a notification emitted by a Table.
type EventKind int

const (
	// EventRedraw follows every redraw of the mount.
	EventRedraw EventKind = iota
	// EventSortChanged follows every completed sort.
	EventSortChanged
	// EventPageChanged follows every completed GoToPage.
	EventPageChanged
	// EventRowActivated follows a row click.
	EventRowActivated
	// EventDestroyed is the last event a table emits.
	EventDestroyed
)

func (k EventKind) String() string {
	switch k {
	case EventRedraw:
		return "redraw"
	case EventSortChanged:
		return "sort-changed"
	case EventPageChanged:
		return "page-changed"
	case EventRowActivated:
		return "row-activated"
	case EventDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Event carries the payload of a notification. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind

	// EventSortChanged
	Sort SortSpec

	// EventPageChanged
	Page       int
	TotalPages int

	// EventRowActivated. RowIndex is the position within the active view.
	Row      Row
	RowIndex int
	Raw      any
}

// Listener receives events synchronously, in registration order.
type Listener func(Event)

type subscription struct {
	id       int
	listener Listener
}

type bus struct {
	subs   []subscription
	nextID int
}

// subscribe registers l and returns a function removing it again.
func (b *bus) subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: l})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *bus) emit(e Event) {
	// listeners may unsubscribe while being notified
	subs := append([]subscription(nil), b.subs...)
	for _, s := range subs {
		s.listener(e)
	}
}

func (b *bus) reset() {
	b.subs = nil
}
