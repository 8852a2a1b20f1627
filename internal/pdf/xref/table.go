package xref

import (
	"sort"
)

// EntryType represents the state of a cross-reference entry
type EntryType int

const (
	EntryFree EntryType = iota
	EntryInUse
)

func (t EntryType) String() string {
	switch t {
	case EntryFree:
		return "free"
	case EntryInUse:
		return "in-use"
	default:
		return "unknown"
	}
}

// Entry is one row of a cross-reference subsection
type Entry struct {
	Type       EntryType `json:"type"`
	Offset     int       `json:"offset"`
	Generation int       `json:"generation"`
}

// InUse reports whether the entry points at a live object
func (e Entry) InUse() bool {
	return e.Type == EntryInUse
}

// Subsection is a run of consecutive ids starting at FirstID
type Subsection struct {
	FirstID int
	Entries []Entry
}

// Table maps object ids to their cross-reference entries
type Table struct {
	entries map[int]Entry
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{entries: make(map[int]Entry)}
}

// Merge folds subsections into one table in scan order. When two
// subsections declare the same id, the later one wins.
func Merge(sections ...Subsection) *Table {
	t := NewTable()
	for _, sec := range sections {
		for i, e := range sec.Entries {
			t.entries[sec.FirstID+i] = e
		}
	}
	return t
}

// Set stores an entry, replacing any earlier one for the same id
func (t *Table) Set(id int, e Entry) {
	t.entries[id] = e
}

// Get returns the entry for id, free or not
func (t *Table) Get(id int) (Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// Lookup returns the byte offset of an in-use object. Free and missing ids
// report false.
func (t *Table) Lookup(id int) (int, bool) {
	e, ok := t.entries[id]
	if !ok || !e.InUse() {
		return 0, false
	}
	return e.Offset, true
}

// Len returns the number of entries, free ones included
func (t *Table) Len() int {
	return len(t.entries)
}

// IDs returns every object id in ascending order
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// InUseCount returns the number of live entries
func (t *Table) InUseCount() int {
	n := 0
	for _, e := range t.entries {
		if e.InUse() {
			n++
		}
	}
	return n
}
