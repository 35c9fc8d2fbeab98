package screen

import (
	"context"
	"sync"
	"time"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/models"
)

// Aggregates is everything the dashboard charts show.
type Aggregates struct {
	Total  int
	Trend  []aggregate.MonthCount
	Split  aggregate.CategorySplit
	Volume []aggregate.YearCount
}

// DashboardPresenter receives the dashboard charts.
type DashboardPresenter interface {
	ErrorPresenter
	OnAggregatesChanged(a Aggregates)
}

// Dashboard computes the dashboard charts.
type Dashboard struct {
	data        DataService
	view        DashboardPresenter
	trendMonths int
	volumeYears int
	now         func() time.Time

	mu  sync.Mutex
	gen uint64
}

// NewDashboard creates a Dashboard with the given chart windows.
func NewDashboard(data DataService, view DashboardPresenter, trendMonths, volumeYears int, opts ...Option) *Dashboard {
	o := applyOptions(opts)
	return &Dashboard{
		data:        data,
		view:        view,
		trendMonths: trendMonths,
		volumeYears: volumeYears,
		now:         o.now,
	}
}

// Load fetches all audits and presents the charts. A Load overtaken by a
// later one is dropped. The error, if any, is also passed to OnError.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.mu.Unlock()

	records, err := d.data.ListAudits(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return nil
	}
	if err != nil {
		d.view.OnError(err)
		return err
	}
	d.view.OnAggregatesChanged(Summarize(records, d.now(), d.trendMonths, d.volumeYears))
	return nil
}

// Summarize builds the dashboard aggregates from records.
func Summarize(records []models.Audit, now time.Time, trendMonths, volumeYears int) Aggregates {
	return Aggregates{
		Total:  len(records),
		Trend:  aggregate.MonthlyTrend(records, now, trendMonths),
		Split:  aggregate.CategorySplitOf(records),
		Volume: aggregate.AnnualVolume(records, now, volumeYears),
	}
}
