package render

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/auth"
	"github.com/ams-studio/ams/pkg/client"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/screen"
)

func sampleAudits(n int) []models.Audit {
	out := make([]models.Audit, n)
	for i := range out {
		out[i] = models.Audit{
			ID:        int64(n - i),
			AuditDate: models.NewAuditDate(2024, time.March, 1+i),
			Type:      models.AuditType{ID: 1, Name: "Interna"},
		}
	}
	return out
}

func TestPercent(t *testing.T) {
	assert.Equal(t, NoData, Percent(0, 0, false))
	assert.Equal(t, "67% / 33%", Percent(67, 33, true))
}

func TestMessage(t *testing.T) {
	cases := map[string]error{
		"could not reach the server, try again": fmt.Errorf("wrapped: %w", &client.NetworkError{Method: "GET", Path: "audit", Err: errors.New("dial")}),
		"session expired, run `ams login`":      &client.AuthError{Status: 401},
		"not logged in, run `ams login`":        auth.ErrNotLoggedIn,
		"server error (500): db down":           &client.APIError{Status: 500, Message: "db down"},
		"server error (404)":                    &client.APIError{Status: 404},
		"plain":                                 errors.New("plain"),
	}
	for want, err := range cases {
		assert.Equal(t, want, Message(err))
	}
}

func TestDashboardEmpty(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, screen.Summarize(nil, now, 5, 5)))

	out := buf.String()
	for _, label := range []string{"Nov 2024", "Dic 2024", "Ene 2025", "Feb 2025", "Mar 2025"} {
		assert.Contains(t, out, label)
	}
	assert.Equal(t, 2, strings.Count(out, NoData), "both categories show no data")
	assert.Contains(t, out, "2021")
}

func TestDashboardCounts(t *testing.T) {
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	audits := sampleAudits(3)
	audits[0].Audited = &models.AuditStatus{ID: models.StatusCompleted}
	var buf bytes.Buffer
	require.NoError(t, Dashboard(&buf, screen.Summarize(audits, now, 5, 5)))

	out := buf.String()
	assert.Contains(t, out, "Audits: 3")
	assert.Contains(t, out, "33% / 67%")
	assert.Contains(t, out, strings.Repeat("#", barWidth))
}

func TestAudits(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Audits(&buf, nil, false))
	assert.Equal(t, "No audits found.\n", buf.String())

	buf.Reset()
	require.NoError(t, Audits(&buf, sampleAudits(2), true))
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "01/03/2024")
	assert.Contains(t, out, "SIN AUDITAR")
	assert.Contains(t, out, "more audits below")
}

func TestInputs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Inputs(&buf, 4, models.KindAFIP, nil))
	assert.Equal(t, "No inputs found for AFIP audit 4.\n", buf.String())

	buf.Reset()
	inputs := []models.Input{{ID: 1, Name: "Juan", LastName: "Pérez", CUIL: "20-1-3", Client: &models.Client{Name: "ACME"}}}
	require.NoError(t, Inputs(&buf, 4, models.KindInternal, inputs))
	out := buf.String()
	assert.Contains(t, out, "Pérez, Juan")
	assert.Contains(t, out, "ACME")
	assert.Contains(t, out, "N/A")
}

func TestReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rep := aggregate.BuildReport(sampleAudits(7), &start, nil, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), aggregate.ReportOptions{})
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, rep))
	out := buf.String()
	assert.Contains(t, out, "Report 01/01/2024 - hoy")
	assert.Contains(t, out, "Total: 7")
	assert.Contains(t, out, "mostly Interna")

	buf.Reset()
	require.NoError(t, Report(&buf, aggregate.BuildReport(nil, nil, nil, time.Now(), aggregate.ReportOptions{})))
	assert.Contains(t, buf.String(), NoData)
	assert.Contains(t, buf.String(), "No audits found.")
}

func TestProfile(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	p := models.Profile{FullName: "Ana Gómez", Email: "ana@example.com", Role: "Auditor"}
	require.NoError(t, Profile(&buf, p, models.Claims{ExpiresAt: now.Add(2 * time.Hour).Unix()}, now))
	out := buf.String()
	assert.Contains(t, out, "Ana Gómez")
	assert.Contains(t, out, "Auditor")
	assert.Contains(t, out, "expires 2 hours from now")

	buf.Reset()
	require.NoError(t, Profile(&buf, p, models.Claims{}, now))
	assert.NotContains(t, buf.String(), "Session")
}

func TestPrinterIncrementalRows(t *testing.T) {
	var out, errOut bytes.Buffer
	pr := NewPrinter(&out, &errOut)
	audits := sampleAudits(12)

	pr.OnVisibleSetChanged(audits[:10], true)
	first := out.String()
	assert.Equal(t, 1, strings.Count(first, "STATUS"))
	assert.Equal(t, 11, strings.Count(first, "\n"))

	pr.OnVisibleSetChanged(audits, false)
	rest := strings.TrimPrefix(out.String(), first)
	assert.NotContains(t, rest, "STATUS", "header is printed once")
	assert.Contains(t, rest, "end of list (12 audits)")

	pr.OnError(&client.AuthError{Status: 403})
	assert.Equal(t, "Error: session expired, run `ams login`\n", errOut.String())
	assert.ErrorIs(t, pr.LastError(), client.ErrUnauthorized)
}

func TestPrinterRestartsOnNewList(t *testing.T) {
	var out, errOut bytes.Buffer
	pr := NewPrinter(&out, &errOut)

	pr.OnVisibleSetChanged(sampleAudits(2), true)
	first := out.String()

	afip := []models.Audit{
		{ID: 300, AuditDate: models.NewAuditDate(2024, time.May, 3), Type: models.AuditType{ID: models.CategoryAFIP, Name: "AFIP"}},
		{ID: 200, AuditDate: models.NewAuditDate(2024, time.May, 2), Type: models.AuditType{ID: models.CategoryAFIP, Name: "AFIP"}},
		{ID: 100, AuditDate: models.NewAuditDate(2024, time.May, 1), Type: models.AuditType{ID: models.CategoryAFIP, Name: "AFIP"}},
	}
	pr.OnVisibleSetChanged(afip, false)
	rest := strings.TrimPrefix(out.String(), first)

	assert.Equal(t, 1, strings.Count(rest, "STATUS"), "a new list gets its own header")
	for _, id := range []string{"300", "200", "100"} {
		assert.Contains(t, rest, id)
	}
	assert.Contains(t, rest, "end of list (3 audits)")
}
