package attendance

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Status is a person's attendance state for a single date.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"

	// StatusUnmarked is a derived state: no mark recorded for that
	// name/date. It is never stored.
	StatusUnmarked Status = "unmarked"
)

var errInvalidMark = errors.New("invalid attendance mark")

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Mark is one person's attendance record for one date.
type Mark struct {
	Status Status `json:"status"`
	Note   string `json:"note,omitempty"`
}

// markJSON mirrors the stored object form of a Mark.
type markJSON struct {
	Status Status `json:"status"`
	Note   string `json:"note,omitempty"`
}

// UnmarshalJSON accepts both stored shapes: the legacy bare-string
// form ("present" | "absent") and the current object form
// {status, note?}. Whatever comes in, a Mark is always normalized to
// the object form; callers never see the legacy shape again.
func (m *Mark) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var st Status
		if err := json.Unmarshal(data, &st); err != nil {
			return err
		}
		if !st.Valid() {
			return errors.Wrapf(errInvalidMark, "status %q", st)
		}
		m.Status = st
		m.Note = ""
		return nil
	}

	var obj markJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if !obj.Status.Valid() {
		return errors.Wrapf(errInvalidMark, "status %q", obj.Status)
	}
	m.Status = obj.Status
	m.Note = obj.Note
	return nil
}

func (m Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(markJSON{Status: m.Status, Note: m.Note})
}
