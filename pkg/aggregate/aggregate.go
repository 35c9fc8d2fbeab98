// Package aggregate derives the dashboard and report views from a flat list
// of audits. Every function is pure and never mutates its input.
package aggregate

import (
	"sort"
	"time"

	"github.com/ams-studio/ams/pkg/models"
)

// DefaultWindow is used when a window size of zero or less is requested.
const DefaultWindow = 5

var monthLabels = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// MonthLabel returns the short Spanish label for m.
func MonthLabel(m time.Month) string {
	return monthLabels[m-1]
}

// MonthCount is one bucket of a monthly trend.
type MonthCount struct {
	Label string
	Year  int
	Month time.Month
	Count int
}

// YearCount is one bucket of the annual volume.
type YearCount struct {
	Year  int
	Count int
}

// Split counts completed and pending audits of one category.
type Split struct {
	Completed int
	Pending   int
}

// Total returns Completed + Pending.
func (s Split) Total() int { return s.Completed + s.Pending }

// Percentages returns completed and pending shares rounded half up, with
// pending = 100 - completed. ok is false when the split is empty.
func (s Split) Percentages() (completed, pending int, ok bool) {
	return shares(s.Completed, s.Total())
}

// CategorySplit holds the completion split of each category.
type CategorySplit struct {
	Internal Split
	AFIP     Split
}

// Of returns the split of one kind.
func (c CategorySplit) Of(k models.Kind) Split {
	if k == models.KindAFIP {
		return c.AFIP
	}
	return c.Internal
}

func shares(part, total int) (int, int, bool) {
	if total <= 0 {
		return 0, 0, false
	}
	p := (200*part + total) / (2 * total)
	return p, 100 - p, true
}

// FilterByCategory keeps AFIP audits when afip is true and internal audits
// otherwise, preserving order.
func FilterByCategory(records []models.Audit, afip bool) []models.Audit {
	out := make([]models.Audit, 0, len(records))
	for _, r := range records {
		if r.IsAFIP() == afip {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange keeps audits whose date falls within [start, end] at day
// granularity. A nil bound is open. With both bounds nil the input is
// returned unchanged; otherwise audits with an invalid date are dropped.
func FilterByDateRange(records []models.Audit, start, end *time.Time) []models.Audit {
	if start == nil && end == nil {
		return records
	}
	var lo, hi int
	if start != nil {
		lo = dayKey(*start)
	}
	if end != nil {
		hi = dayKey(*end)
	}
	out := make([]models.Audit, 0, len(records))
	for _, r := range records {
		if !r.AuditDate.Valid {
			continue
		}
		d := dayKey(r.AuditDate.Time)
		if start != nil && d < lo {
			continue
		}
		if end != nil && d > hi {
			continue
		}
		out = append(out, r)
	}
	return out
}

// dayKey orders calendar days as yyyymmdd in t's own location.
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// SortByRecencyDesc returns a copy sorted by id, highest first. Equal ids
// keep their relative order.
func SortByRecencyDesc(records []models.Audit) []models.Audit {
	out := make([]models.Audit, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// MonthlyTrend counts audits per calendar month for the windowSize months
// ending at now's month, oldest first.
func MonthlyTrend(records []models.Audit, now time.Time, windowSize int) []MonthCount {
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	year, month, _ := now.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(windowSize - 1), 0)

	trend := make([]MonthCount, windowSize)
	index := make(map[int]int, windowSize)
	for i := range trend {
		t := first.AddDate(0, i, 0)
		trend[i] = MonthCount{Label: MonthLabel(t.Month()), Year: t.Year(), Month: t.Month()}
		index[t.Year()*12+int(t.Month())] = i
	}

	for _, r := range records {
		if !r.AuditDate.Valid {
			continue
		}
		if i, ok := index[r.AuditDate.Year()*12+int(r.AuditDate.Month())]; ok {
			trend[i].Count++
		}
	}
	return trend
}

// CategorySplitOf partitions audits by category, then by completion.
// Audits with invalid dates are counted.
func CategorySplitOf(records []models.Audit) CategorySplit {
	var s CategorySplit
	for _, r := range records {
		side := &s.Internal
		if r.IsAFIP() {
			side = &s.AFIP
		}
		if r.IsCompleted() {
			side.Completed++
		} else {
			side.Pending++
		}
	}
	return s
}

// AnnualVolume counts audits per year for the windowSize years ending at
// now's year, oldest first.
func AnnualVolume(records []models.Audit, now time.Time, windowSize int) []YearCount {
	if windowSize <= 0 {
		windowSize = DefaultWindow
	}
	last := now.Year()
	firstYear := last - windowSize + 1
	volume := make([]YearCount, windowSize)
	for i := range volume {
		volume[i].Year = firstYear + i
	}
	for _, r := range records {
		if !r.AuditDate.Valid {
			continue
		}
		if y := r.AuditDate.Year(); y >= firstYear && y <= last {
			volume[y-firstYear].Count++
		}
	}
	return volume
}
