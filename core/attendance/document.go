package attendance

import (
	"sort"
	"strings"

	"github.com/rollcallhq/rollcall/core"
)

// DateKey is the attendance map key format: a calendar date as YYYY-MM-DD.
const DateKey = "2006-01-02"

type (
	// DaySheet maps a roster name to its Mark for one date.
	DaySheet map[string]Mark

	// Record maps a date key to that day's sheet. Date keys need not
	// be contiguous; a missing date simply has no bucket.
	Record map[string]DaySheet

	// Document is an account's full attendance state: the ordered
	// roster plus every recorded mark. It is held in memory and
	// persisted as a whole.
	Document struct {
		Roster     []string `json:"roster"`
		Attendance Record   `json:"attendance"`
	}
)

func NewDocument() Document {
	return Document{Roster: []string{}, Attendance: Record{}}
}

// Normalize ensures both containers are non-nil. Run once right after
// deserialization so the mutation methods need no nil checks.
func (doc *Document) Normalize() {
	if doc.Roster == nil {
		doc.Roster = []string{}
	}
	if doc.Attendance == nil {
		doc.Attendance = Record{}
	}
}

func (doc *Document) hasName(name string) bool {
	for _, n := range doc.Roster {
		if n == name {
			return true
		}
	}
	return false
}

// AddNames splits bulk input on line breaks, trims each entry and
// appends the non-empty, non-duplicate ones to the roster in input
// order. It returns the names actually added.
func (doc *Document) AddNames(bulk string) []string {
	doc.Normalize()

	var added []string
	for _, line := range strings.Split(bulk, "\n") {
		name := core.CleanString(line)
		if name == "" || doc.hasName(name) {
			continue
		}
		doc.Roster = append(doc.Roster, name)
		added = append(added, name)
	}
	return added
}

// RemoveName removes a name from the roster and deletes its entry from
// every date bucket. Emptied buckets are left in place.
func (doc *Document) RemoveName(name string) bool {
	doc.Normalize()

	var found bool
	roster := doc.Roster[:0]
	for _, n := range doc.Roster {
		if n == name {
			found = true
			continue
		}
		roster = append(roster, n)
	}
	doc.Roster = roster

	if found {
		for _, sheet := range doc.Attendance {
			delete(sheet, name)
		}
	}
	return found
}

// SetMark upserts the status for name on date, preserving any note
// already recorded for that name/date.
func (doc *Document) SetMark(date, name string, status Status) {
	doc.Normalize()

	sheet, ok := doc.Attendance[date]
	if !ok {
		sheet = DaySheet{}
		doc.Attendance[date] = sheet
	}
	sheet[name] = Mark{Status: status, Note: sheet[name].Note}
}

// SetNote records a note for name on date. A note cannot exist without
// a status: without an existing mark this is a no-op and returns false.
func (doc *Document) SetNote(date, name, note string) bool {
	doc.Normalize()

	sheet, ok := doc.Attendance[date]
	if !ok {
		return false
	}
	mark, ok := sheet[name]
	if !ok {
		return false
	}
	mark.Note = core.CleanString(note)
	sheet[name] = mark
	return true
}

// StatusOf returns the recorded status for name on date, or
// StatusUnmarked when no mark exists.
func (doc *Document) StatusOf(date, name string) Status {
	if mark, ok := doc.Attendance[date][name]; ok {
		return mark.Status
	}
	return StatusUnmarked
}

// NoteOf returns the note for name on date; "" when none.
func (doc *Document) NoteOf(date, name string) string {
	return doc.Attendance[date][name].Note
}

// Dates returns every recorded date key in chronological order
// (YYYY-MM-DD keys sort lexicographically).
func (doc *Document) Dates() []string {
	dates := make([]string, 0, len(doc.Attendance))
	for date := range doc.Attendance {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Clone returns a deep copy, safe to hand off to a save running
// concurrently with further mutations.
func (doc *Document) Clone() Document {
	cp := Document{
		Roster:     make([]string, len(doc.Roster)),
		Attendance: make(Record, len(doc.Attendance)),
	}
	copy(cp.Roster, doc.Roster)
	for date, sheet := range doc.Attendance {
		cpSheet := make(DaySheet, len(sheet))
		for name, mark := range sheet {
			cpSheet[name] = mark
		}
		cp.Attendance[date] = cpSheet
	}
	return cp
}
