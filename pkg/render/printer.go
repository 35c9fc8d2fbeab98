package render

import (
	"fmt"
	"io"
	"time"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/screen"
)

// Printer is a presenter for every screen. Errors go to Err as a one-line
// banner; screens go to Out.
type Printer struct {
	Out io.Writer
	Err io.Writer
	Now func() time.Time

	last  error
	shown int
	first int64
}

// NewPrinter creates a Printer.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut, Now: time.Now}
}

var (
	_ screen.AuditListPresenter   = (*Printer)(nil)
	_ screen.DashboardPresenter   = (*Printer)(nil)
	_ screen.ReportPresenter      = (*Printer)(nil)
	_ screen.AuditDetailPresenter = (*Printer)(nil)
	_ screen.ProfilePresenter     = (*Printer)(nil)
)

// LastError returns the last error reported through OnError.
func (p *Printer) LastError() error { return p.last }

func (p *Printer) OnError(err error) {
	p.last = err
	fmt.Fprintf(p.Err, "Error: %s\n", Message(err))
}

// OnVisibleSetChanged prints only the rows revealed since the previous call,
// like a list growing under the user's scroll. A shorter list, or one that
// starts with a different audit, is printed from the top.
func (p *Printer) OnVisibleSetChanged(records []models.Audit, hasMore bool) {
	if len(records) == 0 {
		p.shown = 0
		fmt.Fprintln(p.Out, "No audits found.")
		return
	}
	if len(records) < p.shown || records[0].ID != p.first {
		p.shown = 0
	}
	_ = AuditRows(p.Out, records[p.shown:], p.shown == 0)
	p.shown = len(records)
	p.first = records[0].ID
	if !hasMore {
		fmt.Fprintf(p.Out, "-- end of list (%d audits) --\n", len(records))
	}
}

func (p *Printer) OnAggregatesChanged(a screen.Aggregates) {
	_ = Dashboard(p.Out, a)
}

func (p *Printer) OnReportGenerated(r aggregate.Report) {
	_ = Report(p.Out, r)
}

func (p *Printer) OnInputsChanged(auditID int64, kind models.Kind, inputs []models.Input) {
	_ = Inputs(p.Out, auditID, kind, inputs)
}

func (p *Printer) OnProfile(prof models.Profile, c models.Claims) {
	_ = Profile(p.Out, prof, c, p.Now())
}

func (p *Printer) OnLoggedOut() {
	fmt.Fprintln(p.Out, "Logged out.")
}
