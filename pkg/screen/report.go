package screen

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ams-studio/ams/pkg/aggregate"
)

// ErrInvalidRange is returned when the start date is after the end date.
var ErrInvalidRange = errors.New("start date is after end date")

// ReportPresenter receives a generated report.
type ReportPresenter interface {
	ErrorPresenter
	OnReportGenerated(r aggregate.Report)
}

// Report generates the date-range report.
type Report struct {
	data DataService
	view ReportPresenter
	opts aggregate.ReportOptions
	now  func() time.Time

	mu sync.Mutex
}

// NewReport creates a Report controller.
func NewReport(data DataService, view ReportPresenter, opts aggregate.ReportOptions, extra ...Option) *Report {
	o := applyOptions(extra)
	return &Report{data: data, view: view, opts: opts, now: o.now}
}

// Generate fetches all audits and summarizes those within [start, end].
// Either bound may be nil.
func (r *Report) Generate(ctx context.Context, start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.view.OnError(ErrInvalidRange)
		return ErrInvalidRange
	}

	records, err := r.data.ListAudits(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.view.OnError(err)
		return err
	}
	r.view.OnReportGenerated(aggregate.BuildReport(records, start, end, r.now(), r.opts))
	return nil
}
