package attendance

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
)

// CSVRows renders the export rows: a header, then one row per roster
// name with a status cell and a note cell per recorded date
// (chronological), followed by total-present, total-absent and the
// attendance percentage (one decimal, "0%" when nothing is marked).
func (doc *Document) CSVRows() [][]string {
	dates := doc.Dates()

	header := make([]string, 0, 1+2*len(dates)+3)
	header = append(header, "Name")
	for _, date := range dates {
		header = append(header, date, date+" Note")
	}
	header = append(header, "Total Present", "Total Absent", "Attendance %")

	rows := make([][]string, 0, 1+len(doc.Roster))
	rows = append(rows, header)

	for _, name := range doc.Roster {
		row := make([]string, 0, len(header))
		row = append(row, name)

		var present, absent int
		for _, date := range dates {
			status := doc.StatusOf(date, name)
			switch status {
			case StatusPresent:
				present++
			case StatusAbsent:
				absent++
			}
			row = append(row, string(status), doc.NoteOf(date, name))
		}

		percentage := "0%"
		if total := present + absent; total > 0 {
			percentage = fmt.Sprintf("%.1f%%", float64(present)/float64(total)*100)
		}
		row = append(row, fmt.Sprint(present), fmt.Sprint(absent), percentage)
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the export to w with standard CSV quoting (embedded
// quotes doubled).
func (doc *Document) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(doc.CSVRows()); err != nil {
		return errors.Wrap(err, "writing csv")
	}
	return nil
}

// ExportFilename names the downloadable export for a given day.
func ExportFilename(t time.Time) string {
	return "attendance-with-notes-" + t.Format(DateKey) + ".csv"
}
