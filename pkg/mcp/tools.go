package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ams-studio/ams/pkg/aggregate"
	"github.com/ams-studio/ams/pkg/auth"
	"github.com/ams-studio/ams/pkg/models"
	"github.com/ams-studio/ams/pkg/render"
	"github.com/ams-studio/ams/pkg/screen"
)

type auditsArgs struct {
	AFIP     bool `json:"afip"`
	Pages    int  `json:"pages"`
	PageSize int  `json:"page_size"`
}

type reportArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type inputsArgs struct {
	AuditID int64 `json:"audit_id"`
	AFIP    bool  `json:"afip"`
}

type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"ams_dashboard": guarded(handleDashboard),
	"ams_audits":    guarded(handleAudits),
	"ams_report":    guarded(handleReport),
	"ams_inputs":    guarded(handleInputs),
	"ams_profile":   guarded(handleProfile),
}

var dateRangeProperties = map[string]any{
	"from": map[string]any{
		"type":        "string",
		"description": "First day in YYYY-MM-DD format (optional)",
	},
	"to": map[string]any{
		"type":        "string",
		"description": "Last day in YYYY-MM-DD format, inclusive (optional)",
	},
}

var allTools = []ToolDefinition{
	{
		Name:        "ams_dashboard",
		Description: "Show the audit dashboard: monthly trend, completion split per category and annual volume.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "ams_audits",
		Description: "List audits of one category, most recent first, revealing the requested number of pages.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"afip": map[string]any{
					"type":        "boolean",
					"description": "List AFIP audits instead of internal ones",
				},
				"pages": map[string]any{
					"type":        "integer",
					"description": "Pages to reveal (default 1)",
				},
				"page_size": map[string]any{
					"type":        "integer",
					"description": "Audits per page (default from config)",
				},
			},
		},
	},
	{
		Name:        "ams_report",
		Description: "Summarize audits within an optional date range: totals, completion, trend, category distribution and latest audits.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": dateRangeProperties,
		},
	},
	{
		Name:        "ams_inputs",
		Description: "Show the people attached to an audit.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"audit_id"},
			"properties": map[string]any{
				"audit_id": map[string]any{
					"type":        "integer",
					"description": "The audit ID",
				},
				"afip": map[string]any{
					"type":        "boolean",
					"description": "The audit is an AFIP audit",
				},
			},
		},
	},
	{
		Name:        "ams_profile",
		Description: "Show the logged-in user and session expiry.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

// guarded rejects the call unless a valid session is stored.
func guarded(h toolHandler) toolHandler {
	return func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult {
		if err := s.guard.Require(ctx); err != nil {
			return errorResult(render.Message(err))
		}
		return h(ctx, s, args)
	}
}

// capture runs fn against a Printer and turns its output into a result.
func (s *Server) capture(fn func(p *render.Printer) error) ToolCallResult {
	var out, errOut strings.Builder
	p := render.NewPrinter(&out, &errOut)
	p.Now = s.now
	if err := fn(p); err != nil {
		return errorResult(render.Message(err))
	}
	return textResult(out.String())
}

func handleDashboard(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return s.capture(func(p *render.Printer) error {
		d := screen.NewDashboard(s.data, p, s.cfg.Dashboard.TrendMonths, s.cfg.Dashboard.VolumeYears, screen.WithClock(s.now))
		return d.Load(ctx)
	})
}

func handleAudits(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args auditsArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Pages <= 0 {
		args.Pages = 1
	}
	if args.PageSize <= 0 {
		args.PageSize = s.cfg.List.PageSize
	}
	return s.capture(func(p *render.Printer) error {
		l := screen.NewAuditList(s.data, p, args.PageSize, s.cfg.List.ScrollThreshold, s.log)
		l.ShowPages(ctx, args.AFIP, args.Pages)
		return p.LastError()
	})
}

func handleReport(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args reportArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	from, err := parseDay(args.From)
	if err != nil {
		return errorResult("Invalid from date (use YYYY-MM-DD): " + err.Error())
	}
	to, err := parseDay(args.To)
	if err != nil {
		return errorResult("Invalid to date (use YYYY-MM-DD): " + err.Error())
	}
	return s.capture(func(p *render.Printer) error {
		r := screen.NewReport(s.data, p, aggregate.ReportOptions{
			TrendMonths: aggregate.DefaultWindow,
			Recent:      s.cfg.Report.Recent,
		}, screen.WithClock(s.now))
		return r.Generate(ctx, from, to)
	})
}

func handleInputs(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args inputsArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.AuditID <= 0 {
		return errorResult("audit_id is required")
	}
	return s.capture(func(p *render.Printer) error {
		return screen.NewAuditDetail(s.data, p).Load(ctx, args.AuditID, models.KindOf(args.AFIP))
	})
}

func handleProfile(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return s.capture(func(p *render.Printer) error {
		return screen.NewProfile(s.store, auth.NewService(nil, s.store, s.log), nil, p).Load(ctx)
	})
}

// parseDay parses an optional YYYY-MM-DD date; "" yields nil.
func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
