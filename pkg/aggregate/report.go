package aggregate

import (
	"time"

	"github.com/ams-studio/ams/pkg/models"
)

// ReportOptions sizes the report sections. Zero values use the defaults.
type ReportOptions struct {
	TrendMonths int
	Recent      int
}

// Distribution counts audits per category.
type Distribution struct {
	Internal int
	AFIP     int
}

// Total returns Internal + AFIP.
func (d Distribution) Total() int { return d.Internal + d.AFIP }

// Dominant returns the larger category. Ties go to internal.
func (d Distribution) Dominant() models.Kind {
	if d.AFIP > d.Internal {
		return models.KindAFIP
	}
	return models.KindInternal
}

// Percentages returns the internal and AFIP shares. ok is false when empty.
func (d Distribution) Percentages() (internal, afip int, ok bool) {
	return shares(d.Internal, d.Total())
}

// Report summarizes the audits within a date range.
type Report struct {
	Start        *time.Time
	End          *time.Time
	GeneratedAt  time.Time
	Total        int
	Completed    int
	Pending      int
	Trend        []MonthCount
	Distribution Distribution
	Recent       []models.Audit
}

// CompletionPercentages returns completed and pending shares over the whole range.
func (r Report) CompletionPercentages() (completed, pending int, ok bool) {
	return shares(r.Completed, r.Total)
}

// BuildReport filters records to [start, end] and summarizes the result.
func BuildReport(records []models.Audit, start, end *time.Time, now time.Time, opts ReportOptions) Report {
	if opts.Recent <= 0 {
		opts.Recent = DefaultWindow
	}
	filtered := FilterByDateRange(records, start, end)

	r := Report{
		Start:       start,
		End:         end,
		GeneratedAt: now,
		Total:       len(filtered),
		Trend:       MonthlyTrend(filtered, now, opts.TrendMonths),
	}
	for _, a := range filtered {
		if a.IsCompleted() {
			r.Completed++
		} else {
			r.Pending++
		}
		if a.IsAFIP() {
			r.Distribution.AFIP++
		} else {
			r.Distribution.Internal++
		}
	}

	recent := SortByRecencyDesc(filtered)
	if len(recent) > opts.Recent {
		recent = recent[:opts.Recent]
	}
	r.Recent = recent
	return r
}
