// Package render prints screens as plain-text tables.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/auth"
	"github.com/ams-studio/ams/pkg/client"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/screen"
)

// NoData is printed in place of a percentage whose total is zero.
const NoData = "sin datos"

const barWidth = 30

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Percent formats a completed/pending pair, or NoData.
func Percent(first, second int, ok bool) string {
	if !ok {
		return NoData
	}
	return fmt.Sprintf("%d%% / %d%%", first, second)
}

// Message turns an error into the line shown to the user.
func Message(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNetwork):
		return "could not reach the server, try again"
	case errors.Is(err, client.ErrUnauthorized):
		return "session expired, run `ams login`"
	case errors.Is(err, auth.ErrNotLoggedIn):
		return "not logged in, run `ams login`"
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return fmt.Sprintf("server error (%d): %s", apiErr.Status, apiErr.Message)
		}
		return fmt.Sprintf("server error (%d)", apiErr.Status)
	}
	return err.Error()
}

func bar(count, peak int) string {
	if peak <= 0 || count <= 0 {
		return ""
	}
	n := count * barWidth / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

// Dashboard prints the trend, the completion split and the annual volume.
func Dashboard(w io.Writer, a screen.Aggregates) error {
	fmt.Fprintf(w, "Audits: %s\n\n", humanize.Comma(int64(a.Total)))

	maxMonth := 0
	for _, m := range a.Trend {
		maxMonth = max(maxMonth, m.Count)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "MONTH\tAUDITS\t")
	for _, m := range a.Trend {
		fmt.Fprintf(tw, "%s %d\t%d\t%s\n", m.Label, m.Year, m.Count, bar(m.Count, maxMonth))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "CATEGORY\tCOMPLETED\tPENDING\tCOMPLETED / PENDING")
	for _, k := range []models.Kind{models.KindInternal, models.KindAFIP} {
		s := a.Split.Of(k)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", k, s.Completed, s.Pending, Percent(s.Percentages()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	maxYear := 0
	for _, y := range a.Volume {
		maxYear = max(maxYear, y.Count)
	}
	tw = newTable(w)
	fmt.Fprintln(tw, "YEAR\tAUDITS\t")
	for _, y := range a.Volume {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", y.Year, y.Count, bar(y.Count, maxYear))
	}
	return tw.Flush()
}

// AuditRows prints audits as table rows, with a header when header is true.
func AuditRows(w io.Writer, audits []models.Audit, header bool) error {
	tw := newTable(w)
	if header {
		fmt.Fprintln(tw, "ID\tDATE\tTYPE\tSTATUS")
	}
	for _, a := range audits {
		name := a.Type.Name
		if name == "" {
			name = string(a.Kind())
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.AuditDate, name, a.StatusLabel())
	}
	return tw.Flush()
}

// Audits prints a complete audit list.
func Audits(w io.Writer, audits []models.Audit, hasMore bool) error {
	if len(audits) == 0 {
		_, err := fmt.Fprintln(w, "No audits found.")
		return err
	}
	if err := AuditRows(w, audits, true); err != nil {
		return err
	}
	if hasMore {
		_, err := fmt.Fprintln(w, "... more audits below")
		return err
	}
	return nil
}

// Inputs prints the people attached to an audit.
func Inputs(w io.Writer, auditID int64, kind models.Kind, inputs []models.Input) error {
	if len(inputs) == 0 {
		_, err := fmt.Fprintf(w, "No inputs found for %s audit %d.\n", kind, auditID)
		return err
	}
	fmt.Fprintf(w, "%s audit %d: %d inputs\n", kind, auditID, len(inputs))
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCUIL\tFILE\tCLIENT\tBRANCH\tUOC\tADMISSION")
	for _, in := range inputs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			in.ID, in.DisplayName(), orNA(in.CUIL), orNA(in.File),
			in.ClientName(), in.BranchName(), orNA(in.UOC), orNA(in.AdmissionDate))
	}
	return tw.Flush()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func rangeBound(t *time.Time, open string) string {
	if t == nil {
		return open
	}
	return t.Format("02/01/2006")
}

// Report prints a generated report.
func Report(w io.Writer, r aggregate.Report) error {
	fmt.Fprintf(w, "Report %s - %s\n", rangeBound(r.Start, "inicio"), rangeBound(r.End, "hoy"))
	fmt.Fprintf(w, "Total: %d  Completed: %d  Pending: %d  (%s)\n\n",
		r.Total, r.Completed, r.Pending, Percent(r.CompletionPercentages()))

	tw := newTable(w)
	fmt.Fprintln(tw, "MONTH\tAUDITS")
	for _, m := range r.Trend {
		fmt.Fprintf(tw, "%s %d\t%d\n", m.Label, m.Year, m.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	internal, afip, ok := r.Distribution.Percentages()
	fmt.Fprintf(w, "\nDistribution: Interna %d, AFIP %d", r.Distribution.Internal, r.Distribution.AFIP)
	if ok {
		fmt.Fprintf(w, " (%d%% / %d%%, mostly %s)\n", internal, afip, r.Distribution.Dominant())
	} else {
		fmt.Fprintf(w, " (%s)\n", NoData)
	}

	fmt.Fprintln(w, "\nRecent audits:")
	return Audits(w, r.Recent, false)
}

// Profile prints the logged-in user.
func Profile(w io.Writer, p models.Profile, c models.Claims, now time.Time) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", p.FullName)
	fmt.Fprintf(tw, "Email:\t%s\n", p.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", p.Role)
	if exp := c.Expiry(); !exp.IsZero() {
		if c.Expired(now) {
			fmt.Fprintf(tw, "Session:\texpired %s\n", humanize.RelTime(exp, now, "ago", "from now"))
		} else {
			fmt.Fprintf(tw, "Session:\texpires %s\n", humanize.RelTime(exp, now, "ago", "from now"))
		}
	}
	return tw.Flush()
}
