package attendance

import (
	"math"
	"sort"
)

// FilterAll selects every roster member in ChartSeries.
const FilterAll = "all"

type (
	// Stats summarizes one date over the current roster. Unmarked is
	// always Total - Present - Absent; names removed from the roster
	// are excluded even when historical marks remain for them.
	Stats struct {
		Total    int `json:"total"`
		Present  int `json:"present"`
		Absent   int `json:"absent"`
		Unmarked int `json:"unmarked"`
	}

	// MemberStat aggregates one member's attendance across all dates.
	MemberStat struct {
		Name       string `json:"name"`
		Present    int    `json:"present"`
		Absent     int    `json:"absent"`
		Total      int    `json:"total"`
		Percentage int    `json:"percentage"`
	}

	// ChartPoint is one dated sample of a chart series. Total is only
	// set for the aggregate ("all") series.
	ChartPoint struct {
		Date    string `json:"date"`
		Present int    `json:"present"`
		Absent  int    `json:"absent"`
		Total   int    `json:"total,omitempty"`
	}
)

// Stats computes the daily summary for date over the current roster.
func (doc *Document) Stats(date string) Stats {
	st := Stats{Total: len(doc.Roster)}
	for _, name := range doc.Roster {
		switch doc.StatusOf(date, name) {
		case StatusPresent:
			st.Present++
		case StatusAbsent:
			st.Absent++
		}
	}
	st.Unmarked = st.Total - st.Present - st.Absent
	return st
}

// MemberStats computes per-member aggregates over all recorded dates,
// sorted descending by percentage; ties keep roster order.
func (doc *Document) MemberStats() []MemberStat {
	stats := make([]MemberStat, 0, len(doc.Roster))
	for _, name := range doc.Roster {
		ms := MemberStat{Name: name}
		for _, sheet := range doc.Attendance {
			switch sheet[name].Status {
			case StatusPresent:
				ms.Present++
			case StatusAbsent:
				ms.Absent++
			}
		}
		ms.Total = ms.Present + ms.Absent
		if ms.Total > 0 {
			ms.Percentage = int(math.Round(float64(ms.Present) / float64(ms.Total) * 100))
		}
		stats = append(stats, ms)
	}
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Percentage > stats[j].Percentage })
	return stats
}

// ChartSeries produces dated chart points in chronological order.
// With FilterAll each point aggregates the whole roster for that date;
// with a member name it emits one 0|1 point per date where that member
// has a recorded status, skipping unmarked dates.
func (doc *Document) ChartSeries(filter string) []ChartPoint {
	var series []ChartPoint
	for _, date := range doc.Dates() {
		if filter == FilterAll {
			var point ChartPoint
			point.Date = date
			for _, name := range doc.Roster {
				switch doc.StatusOf(date, name) {
				case StatusPresent:
					point.Present++
				case StatusAbsent:
					point.Absent++
				}
			}
			point.Total = point.Present + point.Absent
			series = append(series, point)
			continue
		}

		switch doc.StatusOf(date, filter) {
		case StatusPresent:
			series = append(series, ChartPoint{Date: date, Present: 1})
		case StatusAbsent:
			series = append(series, ChartPoint{Date: date, Absent: 1})
		}
	}
	return series
}
